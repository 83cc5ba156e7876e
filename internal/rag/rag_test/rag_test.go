package rag_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/rag"
	"github.com/akolanti/DocsAPI/internal/rag/assemble"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
	"github.com/akolanti/DocsAPI/internal/rag/retrieve"
	"github.com/akolanti/DocsAPI/internal/rag/synthesize"
)

func newTestService(mEmbed *MockEmbedder, mVec *MockVectorDB, mLLM *MockLLM, docs *MockDocStore, conv *MockConvStore) rag.Service {
	return rag.NewService(rag.ServiceConfig{
		VectorDB:    mVec,
		Retriever:   retrieve.NewRetriever(mEmbed, mVec),
		Assembler:   assemble.New(nil),
		Synthesizer: synthesize.New(mLLM),
		Generator:   embedding.NewGenerator(mEmbed),
		DocStore:    docs,
		ConvStore:   conv,
		LLM:         mLLM,
	})
}

func testContext() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		request        rag.QueryRequest
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		wantErr        bool
		wantAnswer     string
		wantCached     bool
		wantNotes      bool
		wantSources    int
		wantThoughtLen int
	}{
		{
			name:    "Success_Full_Flow",
			request: rag.QueryRequest{Query: "what is in the report"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnChatCompletion = func(ctx context.Context, m []docModel.ConversationTurn, temp float64, max int64) (string, error) {
					return "final answer", nil
				}
			},
			wantAnswer:  "final answer",
			wantSources: 1,
		},
		{
			name:    "Success_Cache_Hit",
			request: rag.QueryRequest{Query: "what is in the report"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnChatCompletion = func(ctx context.Context, m []docModel.ConversationTurn, temp float64, max int64) (string, error) {
					return "", errors.New("llm must not be called on a cache hit")
				}
			},
			wantAnswer: "cached answer",
			wantCached: true,
		},
		{
			name:    "Degraded_Search_Unavailable",
			request: rag.QueryRequest{Query: "what is in the report"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, collection string, emb []float32) ([]docModel.SearchResult, error) {
					return nil, errors.New("db timeout")
				}
				l.OnChatCompletion = func(ctx context.Context, m []docModel.ConversationTurn, temp float64, max int64) (string, error) {
					return "", errors.New("llm must not be called without results")
				}
			},
			wantAnswer: synthesize.NoInformationAnswer,
			wantNotes:  true,
		},
		{
			name:    "No_Results_Short_Circuit",
			request: rag.QueryRequest{Query: "unknown topic"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, collection string, emb []float32) ([]docModel.SearchResult, error) {
					return []docModel.SearchResult{}, nil
				}
				l.OnChatCompletion = func(ctx context.Context, m []docModel.ConversationTurn, temp float64, max int64) (string, error) {
					return "", errors.New("llm must not be called without results")
				}
			},
			wantAnswer: synthesize.NoInformationAnswer,
		},
		{
			name:       "Failure_Empty_Query",
			request:    rag.QueryRequest{Query: "   "},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {},
			wantErr:    true,
		},
		{
			name:    "Failure_LLM_Generation",
			request: rag.QueryRequest{Query: "what is in the report"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnChatCompletion = func(ctx context.Context, m []docModel.ConversationTurn, temp float64, max int64) (string, error) {
					return "", errors.New("provider down")
				}
			},
			wantErr: true,
		},
		{
			name:    "Thoughts_Structured_Response",
			request: rag.QueryRequest{Query: "what is in the report", WantThoughts: true},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnChatCompletion = func(ctx context.Context, m []docModel.ConversationTurn, temp float64, max int64) (string, error) {
					return `{"answer": "structured answer", "thoughts": ["looked at source 1", "cross checked"]}`, nil
				}
			},
			wantAnswer:     "structured answer",
			wantSources:    1,
			wantThoughtLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := newTestService(mEmbed, mVec, mLLM, NewMockDocStore(), NewMockConvStore())

			result, err := s.Query(testContext(), tt.request)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Answer != tt.wantAnswer {
				t.Errorf("Answer got %q, want %q", result.Answer, tt.wantAnswer)
			}
			if result.Cached != tt.wantCached {
				t.Errorf("Cached got %v, want %v", result.Cached, tt.wantCached)
			}
			if tt.wantNotes && result.Notes == "" {
				t.Error("expected Notes explaining degraded retrieval")
			}
			if len(result.Sources) != tt.wantSources {
				t.Errorf("Sources got %d, want %d", len(result.Sources), tt.wantSources)
			}
			if tt.wantThoughtLen != 0 && len(result.Thoughts) != tt.wantThoughtLen {
				t.Errorf("Thoughts got %d, want %d", len(result.Thoughts), tt.wantThoughtLen)
			}
		})
	}
}

func TestQueryUsesConversationHistory(t *testing.T) {
	mEmbed := &MockEmbedder{}
	mVec := &MockVectorDB{}
	conv := NewMockConvStore()
	conv.Turns["chat-1"] = []docModel.ConversationTurn{
		{Role: docModel.RoleUser, Content: "earlier question"},
		{Role: docModel.RoleAssistant, Content: "earlier answer"},
	}

	var sawHistory bool
	mLLM := &MockLLM{
		OnChatCompletion: func(ctx context.Context, messages []docModel.ConversationTurn, temp float64, max int64) (string, error) {
			for _, m := range messages {
				if m.Content == "earlier question" {
					sawHistory = true
				}
			}
			return "answer", nil
		},
	}

	s := newTestService(mEmbed, mVec, mLLM, NewMockDocStore(), conv)

	_, err := s.Query(testContext(), rag.QueryRequest{Query: "follow up", ChatId: "chat-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawHistory {
		t.Error("expected earlier conversation turns in the llm messages")
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(v *MockVectorDB)
		expectedStatus jobModel.JobStatus
	}{
		{
			name:           "Ingestion_Success",
			setupMocks:     func(v *MockVectorDB) {},
			expectedStatus: jobModel.JobStatusComplete,
		},
		{
			name: "Failure_Collection_Creation",
			setupMocks: func(v *MockVectorDB) {
				v.OnCreateCollection = func(ctx context.Context, name string) error {
					return errors.New("connection refused")
				}
			},
			expectedStatus: jobModel.JobStatusError,
		},
		{
			name: "Failure_Batch_Upsert",
			setupMocks: func(v *MockVectorDB) {
				v.OnUpsertBatch = func(ctx context.Context, coll string, doc docModel.Document, chunks []docModel.EmbeddedChunk) error {
					return errors.New("disk full")
				}
			},
			expectedStatus: jobModel.JobStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mVec := &MockVectorDB{}
			tt.setupMocks(mVec)

			s := newTestService(&MockEmbedder{}, mVec, &MockLLM{}, NewMockDocStore(), NewMockConvStore())

			job := jobModel.Job{
				Id: "ingest-job-1",
				JobPayload: jobModel.JobPayload{
					FileName: "notes.txt",
					RawText:  "test content for ingestion",
				},
			}

			result := s.IngestDocument(testContext(), job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStatus == jobModel.JobStatusError && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, http.StatusInternalServerError)
			}
		})
	}
}

func TestGetDocumentContent(t *testing.T) {
	docs := NewMockDocStore()
	docs.Docs["doc-1"] = &docModel.Document{Id: "doc-1", Content: "stored preview"}
	docs.Content["doc-1"] = "plain readable text"

	s := newTestService(&MockEmbedder{}, &MockVectorDB{}, &MockLLM{}, docs, NewMockConvStore())

	content, err := s.GetDocumentContent(testContext(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "plain readable text" {
		t.Errorf("got %q", content)
	}

	if _, err := s.GetDocumentContent(testContext(), "missing"); err == nil {
		t.Error("expected an error for a missing document")
	}
}

func TestGetDocumentContentBinaryFallback(t *testing.T) {
	docs := NewMockDocStore()
	docs.Docs["doc-2"] = &docModel.Document{Id: "doc-2", Content: "summary preview"}
	// A pdf header with no valid body fails extraction
	docs.Content["doc-2"] = "%PDF-1.7 not actually a pdf"

	s := newTestService(&MockEmbedder{}, &MockVectorDB{}, &MockLLM{}, docs, NewMockConvStore())

	content, err := s.GetDocumentContent(testContext(), "doc-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, "summary preview") {
		t.Errorf("expected the stored preview fallback, got %q", content)
	}
}

func TestDeleteDocument(t *testing.T) {
	docs := NewMockDocStore()
	docs.Docs["doc-1"] = &docModel.Document{Id: "doc-1"}

	var deletedFromIndex string
	mVec := &MockVectorDB{
		OnDeleteDocument: func(ctx context.Context, name string, docId string) error {
			deletedFromIndex = docId
			return nil
		},
	}

	s := newTestService(&MockEmbedder{}, mVec, &MockLLM{}, docs, NewMockConvStore())

	if !s.DeleteDocument(testContext(), "doc-1") {
		t.Fatal("expected delete to succeed")
	}
	if deletedFromIndex != "doc-1" {
		t.Errorf("index delete got %q", deletedFromIndex)
	}

	if s.DeleteDocument(testContext(), "doc-1") {
		t.Error("second delete should report false")
	}
}

func TestDeleteDocumentIndexCleanupFailure(t *testing.T) {
	docs := NewMockDocStore()
	docs.Docs["doc-1"] = &docModel.Document{Id: "doc-1"}

	mVec := &MockVectorDB{
		OnDeleteDocument: func(ctx context.Context, name string, docId string) error {
			return errors.New("index offline")
		},
	}

	s := newTestService(&MockEmbedder{}, mVec, &MockLLM{}, docs, NewMockConvStore())

	//the store delete already went through, a broken index must not make
	//the caller believe the document never existed
	if !s.DeleteDocument(testContext(), "doc-1") {
		t.Fatal("delete must succeed when only the index cleanup fails")
	}
	if _, ok := docs.Docs["doc-1"]; ok {
		t.Error("document should be gone from the store")
	}
}
