package embedding

import (
	"time"

	"context"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

// Generator feeds chunk batches to an Embedder. A failed batch never drops
// chunks: every input comes back, failed ones with an empty vector, so the
// store write downstream is never blocked by embedding availability.
type Generator struct {
	embedder  Embedder
	batchSize int
	delay     time.Duration
	logger    *logger_i.Logger
}

func NewGenerator(embedder Embedder) *Generator {
	return &Generator{
		embedder:  embedder,
		batchSize: config.EmbeddingBatchSize,
		delay:     config.EmbeddingBatchDelay,
		logger:    logger_i.NewLogger("Embedding Generator"),
	}
}

// Embed returns exactly one EmbeddedChunk per input, same order.
func (g *Generator) Embed(ctx context.Context, chunks []string) []docModel.EmbeddedChunk {
	results := make([]docModel.EmbeddedChunk, 0, len(chunks))

	if g.embedder == nil {
		g.logger.Error("No embedder configured, returning empty embeddings for all chunks", "count", len(chunks))
		for _, c := range chunks {
			results = append(results, docModel.EmbeddedChunk{Text: c})
		}
		return results
	}

	for start := 0; start < len(chunks); start += g.batchSize {
		end := start + g.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := g.embedder.EmbedBatch(ctx, batch)
		if err != nil || len(vectors) != len(batch) {
			g.logger.Error("Embedding batch failed, keeping chunks with empty vectors",
				"batchStart", start, "batchEnd", end, "error", err)
			for _, c := range batch {
				results = append(results, docModel.EmbeddedChunk{Text: c})
			}
		} else {
			for i, c := range batch {
				results = append(results, docModel.EmbeddedChunk{Text: c, Embedding: vectors[i]})
			}
		}

		//pause between batches to stay under the provider rate limit,
		//skipped after the final one
		if end < len(chunks) {
			select {
			case <-time.After(g.delay):
			case <-ctx.Done():
				g.logger.Warn("Embedding cancelled mid-run, remaining chunks get empty vectors", "done", end, "total", len(chunks))
				for _, c := range chunks[end:] {
					results = append(results, docModel.EmbeddedChunk{Text: c})
				}
				return results
			}
		}
	}
	return results
}
