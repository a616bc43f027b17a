package rag

import (
	"context"
	"fmt"
	"strings"

	"doc-gpt/internal/chunker"
	"doc-gpt/internal/llmservice"
	"doc-gpt/internal/models"
)

// Summarize runs the prompt over the request content chunk by chunk.
// Multiple chunk summaries are combined with one final call, so content
// that splits into n chunks costs n+1 provider calls.
func (r *RAG) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.CompletionResponse, error) {
	if err := validateSummarize(req); err != nil {
		return nil, err
	}

	summaries := []models.ChunkSummary{}

	// no content, run the prompt as it is
	if strings.TrimSpace(req.Content) == "" {
		answer, err := r.summarizeCall(ctx, req, req.Prompt)
		if err != nil {
			return nil, err
		}
		return &models.CompletionResponse{Content: answer, Summaries: summaries}, nil
	}

	chunks := chunker.Chunk(req.Content, req.ChunkSize)
	if len(chunks) == 1 {
		answer, err := r.summarizeCall(ctx, req, renderPrompt(req.Prompt, chunks[0]))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ChunkSummary{Content: req.Content, Summary: answer})
		return &models.CompletionResponse{Content: answer, Summaries: summaries}, nil
	}

	var combined strings.Builder
	for _, chunk := range chunks {
		answer, err := r.summarizeCall(ctx, req, renderPrompt(req.Prompt, chunk))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ChunkSummary{Content: chunk, Summary: answer})
		combined.WriteString(answer + "\n\n")
	}

	answer, err := r.summarizeCall(ctx, req, renderPrompt(req.Prompt, combined.String()))
	if err != nil {
		return nil, err
	}
	return &models.CompletionResponse{Content: answer, Summaries: summaries}, nil
}

func (r *RAG) summarizeCall(ctx context.Context, req models.SummarizeRequest, prompt string) (string, error) {
	result, err := r.engine.Complete(ctx, llmservice.CompletionRequest{
		Template:    prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}
	return result.Text, nil
}

// renderPrompt fills the content placeholder. A prompt without the
// placeholder is sent unchanged.
func renderPrompt(prompt, content string) string {
	return strings.ReplaceAll(prompt, models.SummaryPlaceholder, content)
}

func validateSummarize(req models.SummarizeRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("%w: prompt must not be empty", models.ErrValidation)
	}
	if req.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", models.ErrValidation)
	}
	if req.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive", models.ErrValidation)
	}
	if req.Temperature <= 0 {
		return fmt.Errorf("%w: temperature must be positive", models.ErrValidation)
	}
	return nil
}
