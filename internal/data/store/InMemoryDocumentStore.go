package store

import (
	"context"
	"strings"
	"sync"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

// InMemoryDocumentStore keeps documents in process memory. Used when Redis is
// unreachable so local runs still work end to end.
type InMemoryDocumentStore struct {
	lock      *sync.RWMutex
	docs      map[string]docModel.Document
	chunks    map[string][]string
	extracted map[string]string
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		lock:      new(sync.RWMutex),
		docs:      make(map[string]docModel.Document),
		chunks:    make(map[string][]string),
		extracted: make(map[string]string),
	}
}

func (store *InMemoryDocumentStore) StoreDocumentWithEmbeddings(ctx context.Context, doc docModel.Document, fullText string, chunks []docModel.EmbeddedChunk) *docModel.Document {
	store.lock.Lock()
	defer store.lock.Unlock()

	doc.Chunked = len(chunks) > 1 || len(fullText) > config.ChunkedStorageThreshold
	doc.TotalChunks = len(chunks)

	if doc.Chunked {
		doc.Content = previewText(fullText)
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		store.chunks[doc.Id] = texts
	} else {
		doc.Content = fullText
	}

	store.docs[doc.Id] = doc
	inMemLogger.Info(doc.Id, " : Saved document to store")
	return &doc
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) *docModel.Document {
	store.lock.RLock()
	defer store.lock.RUnlock()
	doc, found := store.docs[id]
	if !found {
		return nil
	}
	return &doc
}

func (store *InMemoryDocumentStore) GetFullDocumentContent(ctx context.Context, id string) *string {
	store.lock.RLock()
	defer store.lock.RUnlock()

	if cached, ok := store.extracted[id]; ok {
		return &cached
	}

	doc, found := store.docs[id]
	if !found {
		return nil
	}
	if !doc.Chunked {
		return &doc.Content
	}

	texts, ok := store.chunks[id]
	if !ok {
		return nil
	}
	content := strings.Join(texts, "")
	return &content
}

func (store *InMemoryDocumentStore) DeleteDocument(ctx context.Context, id string) bool {
	store.lock.Lock()
	defer store.lock.Unlock()
	if _, found := store.docs[id]; !found {
		return false
	}
	delete(store.docs, id)
	delete(store.chunks, id)
	delete(store.extracted, id)
	return true
}

func (store *InMemoryDocumentStore) CacheExtractedContent(ctx context.Context, id string, text string) {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.extracted[id] = text
}
