package vectorDB

import (
	"context"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

type DataProcessor interface {
	Search(ctx context.Context, collectionName string, vectorVal []float32) ([]docModel.SearchResult, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	// CreateCollection Ingest document call
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, doc docModel.Document, chunks []docModel.EmbeddedChunk) error

	// DeleteDocument removes every indexed chunk of the document
	DeleteDocument(ctx context.Context, collectionName string, docId string) error
}
