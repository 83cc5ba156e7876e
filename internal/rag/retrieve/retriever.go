package retrieve

import (
	"context"
	"strings"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
	"github.com/akolanti/DocsAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

// Searcher is the query-side view of the search index.
type Searcher interface {
	Search(ctx context.Context, query string, collectionId string) (docModel.SearchResponse, error)
}

type retriever struct {
	embedder embedding.Embedder
	db       vectorDB.DataProcessor
	logger   *logger_i.Logger
}

func NewRetriever(embedder embedding.Embedder, db vectorDB.DataProcessor) Searcher {
	return &retriever{
		embedder: embedder,
		db:       db,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

// Search embeds the query and asks the index for the top passages. The query
// vector rides along on the response so the answer cache can reuse it.
func (r *retriever) Search(ctx context.Context, query string, collectionId string) (docModel.SearchResponse, error) {
	vector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		r.logger.Error("Query embedding failed", "error", err)
		return docModel.SearchResponse{}, err
	}

	results, err := r.db.Search(ctx, collectionId, vector)
	if err != nil {
		return docModel.SearchResponse{QueryVector: vector}, err
	}

	texts := make([]string, 0, len(results))
	for _, res := range results {
		texts = append(texts, res.Text)
	}

	return docModel.SearchResponse{
		ResultCount:    len(results),
		RawContextText: strings.Join(texts, "\n\n"),
		Results:        results,
		QueryVector:    vector,
	}, nil
}
