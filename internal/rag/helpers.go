package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/metrics"
	"github.com/akolanti/DocsAPI/internal/rag/synthesize"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

func (s *service) methodLogger(ctx context.Context) *logger_i.Logger {
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return s.logger.With("traceId", traceId)
	}
	return s.logger
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

// executeSearchStep never fails the query. A broken index means zero results
// and the synthesizer handles zero results on its own.
func (s *service) executeSearchStep(ctx context.Context, log *logger_i.Logger, query string, collection string) (docModel.SearchResponse, string) {
	log.Debug("Query", "Current Step", "retrieval")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	search, err := s.retriever.Search(ctx, query, collection)
	if err != nil {
		log.Error("Retrieval failed, degrading to empty results", "error", err)
		return docModel.SearchResponse{Results: []docModel.SearchResult{}}, "Search was unavailable, the answer is not grounded in any document."
	}
	return search, ""
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, queryVector []float32) (string, bool) {
	if len(queryVector) == 0 {
		return "", false
	}
	log.Debug("Query", "Current Step", "cache lookup")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, queryVector)
	return ans, found
}

func (s *service) executeAssembleStep(ctx context.Context, log *logger_i.Logger, search docModel.SearchResponse) ([]docModel.Source, string) {
	log.Debug("Query", "Current Step", "context assembly")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("context_assembly", time.Since(start)) }()

	return s.assembler.Assemble(ctx, search)
}

func (s *service) loadHistory(ctx context.Context, log *logger_i.Logger, chatId string) []docModel.ConversationTurn {
	if chatId == "" || s.convStore == nil {
		return nil
	}

	turns, err := s.convStore.GetRecentTurns(ctx, chatId, config.MaxHistoryTurns)
	if err != nil {
		log.Error("Failed to load conversation history", "chatId", chatId, "error", err)
		return nil
	}
	return turns
}

func (s *service) executeSynthesisStep(ctx context.Context, log *logger_i.Logger, req QueryRequest, promptContext string, resultCount int, recentTurns []docModel.ConversationTurn) (synthesize.Result, error) {
	log.Debug("Query", "Current Step", "answer synthesis")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.synthesizer.Synthesize(ctx, req.Query, promptContext, resultCount, recentTurns, req.WantThoughts)
}
