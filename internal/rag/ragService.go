package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/DocsAPI/internal/adapter/utils"
	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/metrics"
	"github.com/akolanti/DocsAPI/internal/rag/assemble"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
	"github.com/akolanti/DocsAPI/internal/rag/ingest"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
	"github.com/akolanti/DocsAPI/internal/rag/retrieve"
	"github.com/akolanti/DocsAPI/internal/rag/synthesize"
	"github.com/akolanti/DocsAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

// Service is the one surface handlers and workers talk to. They never see the
// vector index, the stores or the LLM clients behind it.
type Service interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Query(ctx context.Context, req QueryRequest) (QueryResult, error)
	GetDocument(ctx context.Context, id string) *docModel.Document
	GetDocumentContent(ctx context.Context, id string) (string, error)
	DeleteDocument(ctx context.Context, id string) bool
}

type QueryRequest struct {
	Query        string
	Collection   string
	ChatId       string
	WantThoughts bool
}

type QueryResult struct {
	Answer      string
	Thoughts    []string
	Sources     []docModel.Source
	ResultCount int
	Notes       string
	Cached      bool
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	retriever   retrieve.Searcher
	assembler   *assemble.Assembler
	synthesizer *synthesize.Synthesizer
	generator   *embedding.Generator
	docStore    docModel.DocumentStore
	convStore   docModel.ConversationStore
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

type ServiceConfig struct {
	VectorDB    vectorDB.DataProcessor
	Retriever   retrieve.Searcher
	Assembler   *assemble.Assembler
	Synthesizer *synthesize.Synthesizer
	Generator   *embedding.Generator
	DocStore    docModel.DocumentStore
	ConvStore   docModel.ConversationStore
	LLM         llm.Provider
}

// NewService constructor
func NewService(cfg ServiceConfig) Service {
	return &service{
		vectorDB:    cfg.VectorDB,
		retriever:   cfg.Retriever,
		assembler:   cfg.Assembler,
		synthesizer: cfg.Synthesizer,
		generator:   cfg.Generator,
		docStore:    cfg.DocStore,
		convStore:   cfg.ConvStore,
		llmProvider: cfg.LLM,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// Query answers one question over the indexed documents. Retrieval failures
// degrade to the no-information answer instead of erroring, the Notes field
// says so.
func (s *service) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	inMethodLogger := s.methodLogger(ctx)

	if strings.TrimSpace(req.Query) == "" {
		return QueryResult{}, errors.New("query must not be empty")
	}

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	collection := req.Collection
	if collection == "" {
		collection = config.DefaultCollectionName
	}

	// Retrieval
	search, notes := s.executeSearchStep(processContext, inMethodLogger, req.Query, collection)

	// Cache Check
	if cached, found := s.executeCacheCheckStep(processContext, inMethodLogger, search.QueryVector); found {
		metrics.CountAnswerCacheHit()
		metrics.CountRagQuery("cache_hit")
		return QueryResult{
			Answer:      cached,
			Sources:     []docModel.Source{},
			ResultCount: search.ResultCount,
			Notes:       notes,
			Cached:      true,
		}, nil
	}

	// Context Assembly
	sources, promptContext := s.executeAssembleStep(processContext, inMethodLogger, search)

	// Conversation history
	recentTurns := s.loadHistory(processContext, inMethodLogger, req.ChatId)

	// Answer Synthesis
	answer, err := s.executeSynthesisStep(processContext, inMethodLogger, req, promptContext, search.ResultCount, recentTurns)
	if err != nil {
		metrics.CountRagQuery("error")
		return QueryResult{}, err
	}

	s.finishInBackground(ctx, req, search, answer.Answer)

	metrics.CountRagQuery("ok")
	return QueryResult{
		Answer:      answer.Answer,
		Thoughts:    answer.Thoughts,
		Sources:     sources,
		ResultCount: search.ResultCount,
		Notes:       notes,
	}, nil
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, ingest.Dependencies{
		Generator: s.generator,
		VectorDB:  s.vectorDB,
		DocStore:  s.docStore,
		LLM:       s.llmProvider,
	})
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("ingest Document Failed"), "INGESTION_FAILURE", true)
	}
	return j
}

func (s *service) GetDocument(ctx context.Context, id string) *docModel.Document {
	return s.docStore.GetDocument(ctx, id)
}

// GetDocumentContent returns readable text for a stored document. Stored
// binary payloads are run through the extractors and the result is cached
// back so the next read skips the parse.
func (s *service) GetDocumentContent(ctx context.Context, id string) (string, error) {
	content := s.docStore.GetFullDocumentContent(ctx, id)
	if content == nil {
		return "", errors.New("document not found")
	}

	kind := ingest.DetectContentKind([]byte(*content))
	if kind == docModel.TXT {
		return *content, nil
	}

	text, err := ingest.ExtractFromContent([]byte(*content), kind)
	if err != nil {
		s.logger.Error("Stored binary content failed extraction", "id", id, "error", err)
		doc := s.docStore.GetDocument(ctx, id)
		if doc != nil && doc.Content != "" {
			return doc.Content, nil
		}
		return "", errors.New("document content is not readable")
	}

	s.docStore.CacheExtractedContent(ctx, id, text)
	return text, nil
}

// DeleteDocument removes the document from the store and its chunks from the
// search index. Once the store delete went through the document is gone from
// the caller's view, an index cleanup failure is logged and does not turn the
// result into a not-found.
func (s *service) DeleteDocument(ctx context.Context, id string) bool {
	deleted := s.docStore.DeleteDocument(ctx, id)
	if !deleted {
		return false
	}
	if err := s.vectorDB.DeleteDocument(ctx, config.DefaultCollectionName, id); err != nil {
		s.logger.Error("Failed to delete indexed chunks", "id", id, "error", err)
	}
	return true
}

// finishInBackground saves the answer to the semantic cache and appends the
// exchange to the conversation, off the request path.
func (s *service) finishInBackground(ctx context.Context, req QueryRequest, search docModel.SearchResponse, answer string) {
	vector := search.QueryVector
	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.BackendCallTimeout)
		defer cancel()

		if len(vector) > 0 && answer != synthesize.NoInformationAnswer {
			if err := s.vectorDB.SaveToCache(bgCtx, utils.GetNewUUID(), vector, answer); err != nil {
				s.logger.Error("Failed to save to cache")
			}
		}

		if req.ChatId != "" && s.convStore != nil {
			err := s.convStore.AppendTurns(bgCtx, req.ChatId,
				docModel.ConversationTurn{Role: docModel.RoleUser, Content: req.Query},
				docModel.ConversationTurn{Role: docModel.RoleAssistant, Content: answer},
			)
			if err != nil {
				s.logger.Error("Failed to append conversation turns", "chatId", req.ChatId, "error", err)
			}
		}
	}()
}
