package models

const (
	// DocsCollection holds one metadata record per ingested document.
	DocsCollection = "docs"
	// BlobCollection holds the chunked memory records of ingested documents.
	BlobCollection = "blob"

	// IngestChunkSize is the chunk budget applied to ingested documents.
	IngestChunkSize = 512

	// SummaryPlaceholder marks where text is substituted into a summary prompt.
	SummaryPlaceholder = "<TEXT>"

	DefaultMaxTokens         = 1000
	DefaultLimit             = 3
	DefaultMinRelevanceScore = 0.77
)

var (
	QueryPromptTemplate = `Use only the following pieces of context to answer the question at the end. If the context does not contain the answer, say that you do not know.
<context>
{{$data}}
</context>
Question: {{$input}}
Answer:`
)
