package embedding

import "context"

type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
