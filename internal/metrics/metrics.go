// Package metrics exposes the service's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestFailures counts ingest runs that produced no records.
	IngestFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgpt_ingest_failures_total",
		Help: "Number of ingest runs that failed and returned an empty result.",
	})

	// MemoryDeleteFailures counts vector store deletes that reported a fault.
	MemoryDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgpt_memory_delete_failures_total",
		Help: "Number of memory delete operations that failed.",
	})

	// ProviderRequests counts calls to the model provider by outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgpt_provider_requests_total",
		Help: "Number of completion requests sent to the model provider.",
	}, []string{"outcome"})

	// ChunksPersisted counts chunks written to the vector store during ingest.
	ChunksPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgpt_chunks_persisted_total",
		Help: "Number of document chunks persisted to the vector store.",
	})
)
