package ingest

import (
	"context"
	"os"
	"time"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/metrics"
	"github.com/akolanti/DocsAPI/internal/rag/chunker"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
	"github.com/akolanti/DocsAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion ")

// Dependencies are the backends one ingestion run writes to. LLM may be nil,
// the summary then falls back to a content preview.
type Dependencies struct {
	Generator *embedding.Generator
	VectorDB  vectorDB.DataProcessor
	DocStore  docModel.DocumentStore
	LLM       llm.Provider
}

// ProcessDocumentIngestion runs one document through extract, chunk, embed,
// summarize, store and index. The job comes back with either a completed
// Document on its payload or an error status, never both. The uploaded temp
// file is removed on every exit path.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, deps Dependencies) jobModel.Job {
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		logger.With("traceId", traceId)
	}

	docName := job.JobPayload.FileName
	docPath := job.JobPayload.SourcePath

	defer func() {
		if docPath == "" {
			return
		}
		if err := os.Remove(docPath); err != nil {
			logger.Error("Error removing uploaded file", "path", docPath, "error", err)
		}
	}()

	logger.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobModel.IngestInit
	collection := job.JobPayload.Collection
	if collection == "" {
		collection = config.DefaultCollectionName
	}
	err := deps.VectorDB.CreateCollection(ctx, collection)
	if err != nil {
		logger.Error("Error creating collection", "error", err)
		return failJob(job, "Error preparing search index")
	}

	job.CurrentStep = jobModel.TextExtraction
	docType, fullText, err := resolveContent(job.JobPayload)
	if err != nil {
		logger.Error("Error extracting document content", "error", err)
		metrics.CountDocumentIngested(string(docType), "error")
		return failJob(job, "Error extracting document content")
	}
	logger.Debug("Processing document", "type", docType, "characters", len(fullText))

	job.CurrentStep = jobModel.Chunking
	start := time.Now()
	chunks := chunker.Chunk(fullText, config.DefaultMaxChunkSize, config.DefaultChunkOverlap)
	metrics.CaptureExecutionMetrics("chunking", time.Since(start))
	logger.Debug("Processing document", "Number of chunks: ", len(chunks))

	job.CurrentStep = jobModel.EmbeddingAPICall
	start = time.Now()
	embedded := deps.Generator.Embed(ctx, chunks)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))

	job.CurrentStep = jobModel.Summarizing
	start = time.Now()
	summary := summarize(ctx, deps.LLM, fullText)
	metrics.CaptureExecutionMetrics("summarizing", time.Since(start))

	doc := docModel.Document{
		Id:         job.Id,
		FileName:   docName,
		SourceType: docType,
		Summary:    summary,
		WordCount:  countWords(fullText),
		TokenCount: estimateTokens(fullText),
		IngestedAt: time.Now(),
	}

	job.CurrentStep = jobModel.StoreWrite
	start = time.Now()
	stored := deps.DocStore.StoreDocumentWithEmbeddings(ctx, doc, fullText, embedded)
	metrics.CaptureExecutionMetrics("document_store", time.Since(start))
	if stored == nil {
		logger.Error("Error persisting document", "id", doc.Id)
		metrics.CountDocumentIngested(string(docType), "error")
		return failJob(job, "Error persisting document")
	}

	job.CurrentStep = jobModel.IndexUpsert
	start = time.Now()
	err = deps.VectorDB.UpsertBatch(ctx, collection, *stored, embedded)
	metrics.CaptureExecutionMetrics("index_upsert", time.Since(start))
	if err != nil {
		logger.Error("Error upserting document chunks", "error", err)
		metrics.CountDocumentIngested(string(docType), "error")
		return failJob(job, "Error indexing document")
	}

	metrics.CountDocumentIngested(string(docType), "ok")
	job.JobPayload.Document = stored
	job.JobPayload.RawText = ""
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

// resolveContent picks between the raw text path and file extraction.
func resolveContent(payload jobModel.JobPayload) (docModel.DocType, string, error) {
	if payload.RawText != "" {
		return docModel.TXT, payload.RawText, nil
	}

	docType := getDocType(payload.SourcePath)
	if docType == docModel.ERR {
		return docType, "", errUnsupportedType
	}
	text, err := extractText(payload.SourcePath, docType)
	if err != nil {
		return docType, "", err
	}
	return docType, text, nil
}

func failJob(job jobModel.Job, message string) jobModel.Job {
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{Code: 500, Message: message}
	job.EndTime = time.Now()
	return job
}
