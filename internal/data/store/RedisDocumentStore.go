package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/data/redisStore"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	st := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if st == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  st,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func docKey(id string) string {
	return "doc:" + id
}

func chunkKey(id string, index int) string {
	return fmt.Sprintf("doc:%s:chunk:%d", id, index)
}

func extractedKey(id string) string {
	return "doc:" + id + ":extracted"
}

// StoreDocumentWithEmbeddings persists the document. Chunked storage kicks in
// when there is more than one chunk or the full text is over the threshold,
// the metadata then carries a preview and the chunks live under their own
// keys. Returns nil on any write failure, with already-written keys removed.
func (s *RedisDocumentStore) StoreDocumentWithEmbeddings(ctx context.Context, doc docModel.Document, fullText string, chunks []docModel.EmbeddedChunk) *docModel.Document {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", doc.Id)

	doc.Chunked = len(chunks) > 1 || len(fullText) > config.ChunkedStorageThreshold
	doc.TotalChunks = len(chunks)

	var written []string
	if doc.Chunked {
		doc.Content = previewText(fullText)
		for i, chunk := range chunks {
			record := docModel.DocChunk{
				DocId:     doc.Id,
				Index:     i,
				Chunk:     chunk.Text,
				Embedding: chunk.Embedding,
			}
			data, err := json.Marshal(record)
			if err != nil {
				log.Error("Error marshalling chunk", "index", i, "error", err)
				s.cleanup(ctx, written)
				return nil
			}
			key := chunkKey(doc.Id, i)
			if err := s.store.Set(ctx, key, data, config.RedisDocumentStoreTTL); err != nil {
				log.Error("Error writing chunk", "index", i, "error", err)
				s.cleanup(ctx, written)
				return nil
			}
			written = append(written, key)
		}
	} else {
		doc.Content = fullText
	}

	data, err := json.Marshal(doc)
	if err != nil {
		log.Error("Error marshalling document", "error", err)
		s.cleanup(ctx, written)
		return nil
	}
	if err := s.store.Set(ctx, docKey(doc.Id), data, config.RedisDocumentStoreTTL); err != nil {
		log.Error("Error writing document", "error", err)
		s.cleanup(ctx, written)
		return nil
	}

	log.Debug("Saved document", "chunked", doc.Chunked, "totalChunks", doc.TotalChunks)
	return &doc
}

// GetDocument reads the metadata record, retrying a couple of times to absorb
// transient store latency before reporting not-found.
func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) *docModel.Document {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", id)

	val, ok := s.getWithRetry(ctx, docKey(id))
	if !ok {
		log.Debug("Document not found")
		return nil
	}

	var doc docModel.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		log.Error("Error unmarshalling document", "error", err)
		return nil
	}
	return &doc
}

// GetFullDocumentContent reconstructs the text of a chunked document by
// concatenating its chunks in index order. A previously cache-filled
// extraction wins over reconstruction. Nil when any chunk is unreadable, the
// caller falls back to the stored preview.
func (s *RedisDocumentStore) GetFullDocumentContent(ctx context.Context, id string) *string {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", id)

	if cached, err := s.store.Get(ctx, extractedKey(id)); err == nil && cached != "" {
		return &cached
	}

	doc := s.GetDocument(ctx, id)
	if doc == nil {
		return nil
	}
	if !doc.Chunked {
		return &doc.Content
	}

	var builder strings.Builder
	for i := 0; i < doc.TotalChunks; i++ {
		val, ok := s.getWithRetry(ctx, chunkKey(id, i))
		if !ok {
			log.Error("Chunk missing during reconstruction", "index", i)
			return nil
		}
		var chunk docModel.DocChunk
		if err := json.Unmarshal([]byte(val), &chunk); err != nil {
			log.Error("Error unmarshalling chunk", "index", i, "error", err)
			return nil
		}
		builder.WriteString(chunk.Chunk)
	}
	content := builder.String()
	return &content
}

// DeleteDocument removes the metadata and every chunk in one DEL so a reader
// never observes a half-deleted document.
func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, id string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc Id", id)

	doc := s.GetDocument(ctx, id)
	if doc == nil {
		return false
	}

	keys := []string{docKey(id), extractedKey(id)}
	for i := 0; i < doc.TotalChunks; i++ {
		keys = append(keys, chunkKey(id, i))
	}

	if err := s.store.Del(ctx, keys...); err != nil {
		log.Error("Error deleting document", "error", err)
		return false
	}
	log.Debug("Document deleted", "keys", len(keys))
	return true
}

// CacheExtractedContent writes extracted plain text back so the next content
// read skips the binary parse. Best effort.
func (s *RedisDocumentStore) CacheExtractedContent(ctx context.Context, id string, text string) {
	if err := s.store.Set(ctx, extractedKey(id), text, config.RedisDocumentStoreTTL); err != nil {
		s.logger.Error("Cache-fill of extracted content failed", "doc Id", id, "error", err)
	}
}

func (s *RedisDocumentStore) getWithRetry(ctx context.Context, key string) (string, bool) {
	for attempt := 0; ; attempt++ {
		val, err := s.store.Get(ctx, key)
		if err == nil {
			return val, true
		}
		if attempt >= config.DocumentReadRetries {
			return "", false
		}
		select {
		case <-time.After(config.DocumentReadBackoff):
		case <-ctx.Done():
			return "", false
		}
	}
}

func (s *RedisDocumentStore) cleanup(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.store.Del(ctx, keys...); err != nil {
		s.logger.Error("Error cleaning up partial write", "error", err)
	}
}

func previewText(text string) string {
	if len(text) > config.ContentPreviewLength {
		return text[:config.ContentPreviewLength]
	}
	return text
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}
