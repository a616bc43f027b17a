package models

// MemoryRecord is one embedded chunk persisted in a memory collection.
// Metadata, when present, is an opaque JSON object string.
type MemoryRecord struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
	Text       string `json:"text"`
	Metadata   string `json:"metadata,omitempty"`
}

// SearchMatch is a similarity hit returned by the memory store.
type SearchMatch struct {
	Key   string  `json:"key"`
	Text  string  `json:"text"`
	Score float32 `json:"relevanceScore"`
}

// QueryRequest asks a question against one memory collection.
type QueryRequest struct {
	Collection        string  `json:"collection"`
	Query             string  `json:"query"`
	MaxTokens         int     `json:"maxTokens"`
	Limit             int     `json:"limit"`
	MinRelevanceScore float64 `json:"minRelevanceScore"`
}

// ApplyDefaults fills zero-valued tuning fields with the service defaults.
func (q *QueryRequest) ApplyDefaults() {
	if q.MaxTokens == 0 {
		q.MaxTokens = DefaultMaxTokens
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.MinRelevanceScore == 0 {
		q.MinRelevanceScore = DefaultMinRelevanceScore
	}
}

// Usage is the token accounting reported by the completion provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the answer to a query. Usage is nil when the provider
// reported no token accounting.
type Completion struct {
	Query string `json:"query"`
	Text  string `json:"text"`
	Usage *Usage `json:"usage,omitempty"`
}

// SummarizeRequest describes one chunk-wise summarization run.
type SummarizeRequest struct {
	Prompt      string  `json:"prompt"`
	Content     string  `json:"content"`
	ChunkSize   int     `json:"chunk_size"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// ChunkSummary pairs one piece of source content with its summary.
type ChunkSummary struct {
	Content string `json:"content"`
	Summary string `json:"summary"`
}

// CompletionResponse is the result of a summarization run.
type CompletionResponse struct {
	Content   string         `json:"content"`
	Summaries []ChunkSummary `json:"summaries"`
}

// IngestResult reports the records persisted for one ingested location.
type IngestResult struct {
	URL           string         `json:"url"`
	MemoryRecords []MemoryRecord `json:"memoryRecords"`
}
