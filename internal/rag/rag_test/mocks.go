package rag_test

import (
	"context"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch           func(ctx context.Context, collection string, vectorVal []float32) ([]docModel.SearchResult, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, doc docModel.Document, chunks []docModel.EmbeddedChunk) error
	OnDeleteDocument   func(ctx context.Context, name string, docId string) error
}

func (m *MockVectorDB) Search(ctx context.Context, collection string, v []float32) ([]docModel.SearchResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, collection, v)
	}
	return []docModel.SearchResult{{DocumentId: "doc-1", FileName: "default.txt", Text: "default context"}}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, doc docModel.Document, chunks []docModel.EmbeddedChunk) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, doc, chunks)
	}
	return nil
}

func (m *MockVectorDB) DeleteDocument(ctx context.Context, name string, docId string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, name, docId)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch   func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnChatCompletion func(ctx context.Context, messages []docModel.ConversationTurn, temperature float64, maxTokens int64) (string, error)
}

func (m *MockLLM) ChatCompletion(ctx context.Context, messages []docModel.ConversationTurn, temperature float64, maxTokens int64) (string, error) {
	if m.OnChatCompletion != nil {
		return m.OnChatCompletion(ctx, messages, temperature, maxTokens)
	}
	return "mocked llm response", nil
}

// MockDocStore implements docModel.DocumentStore
type MockDocStore struct {
	Docs    map[string]*docModel.Document
	Content map[string]string
	Cached  map[string]string
	Deleted []string
}

func NewMockDocStore() *MockDocStore {
	return &MockDocStore{
		Docs:    make(map[string]*docModel.Document),
		Content: make(map[string]string),
		Cached:  make(map[string]string),
	}
}

func (m *MockDocStore) StoreDocumentWithEmbeddings(ctx context.Context, doc docModel.Document, fullText string, chunks []docModel.EmbeddedChunk) *docModel.Document {
	doc.TotalChunks = len(chunks)
	m.Docs[doc.Id] = &doc
	m.Content[doc.Id] = fullText
	return &doc
}

func (m *MockDocStore) GetDocument(ctx context.Context, id string) *docModel.Document {
	return m.Docs[id]
}

func (m *MockDocStore) GetFullDocumentContent(ctx context.Context, id string) *string {
	content, ok := m.Content[id]
	if !ok {
		return nil
	}
	return &content
}

func (m *MockDocStore) DeleteDocument(ctx context.Context, id string) bool {
	if _, ok := m.Docs[id]; !ok {
		return false
	}
	delete(m.Docs, id)
	delete(m.Content, id)
	m.Deleted = append(m.Deleted, id)
	return true
}

func (m *MockDocStore) CacheExtractedContent(ctx context.Context, id string, text string) {
	m.Cached[id] = text
}

// MockConvStore implements docModel.ConversationStore
type MockConvStore struct {
	Turns map[string][]docModel.ConversationTurn
}

func NewMockConvStore() *MockConvStore {
	return &MockConvStore{Turns: make(map[string][]docModel.ConversationTurn)}
}

func (m *MockConvStore) ValidateChatId(ctx context.Context, id string) bool {
	_, ok := m.Turns[id]
	return ok
}

func (m *MockConvStore) InitNewChat(ctx context.Context, id string) error {
	m.Turns[id] = []docModel.ConversationTurn{}
	return nil
}

func (m *MockConvStore) AppendTurns(ctx context.Context, id string, turns ...docModel.ConversationTurn) error {
	m.Turns[id] = append(m.Turns[id], turns...)
	return nil
}

func (m *MockConvStore) GetRecentTurns(ctx context.Context, id string, limit int) ([]docModel.ConversationTurn, error) {
	turns := m.Turns[id]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}
