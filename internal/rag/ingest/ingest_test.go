package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
)

type fakeVectorDB struct {
	createErr  error
	upsertErr  error
	upsertDocs []docModel.Document
}

func (f *fakeVectorDB) Search(ctx context.Context, collection string, vector []float32) ([]docModel.SearchResult, error) {
	return nil, nil
}

func (f *fakeVectorDB) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	return "", false, nil
}

func (f *fakeVectorDB) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	return nil
}

func (f *fakeVectorDB) CreateCollection(ctx context.Context, collection string) error {
	return f.createErr
}

func (f *fakeVectorDB) UpsertBatch(ctx context.Context, collection string, doc docModel.Document, chunks []docModel.EmbeddedChunk) error {
	f.upsertDocs = append(f.upsertDocs, doc)
	return f.upsertErr
}

func (f *fakeVectorDB) DeleteDocument(ctx context.Context, collection string, docId string) error {
	return nil
}

type fakeDocStore struct {
	failWrite bool
	stored    *docModel.Document
	fullText  string
}

func (f *fakeDocStore) StoreDocumentWithEmbeddings(ctx context.Context, doc docModel.Document, fullText string, chunks []docModel.EmbeddedChunk) *docModel.Document {
	if f.failWrite {
		return nil
	}
	doc.TotalChunks = len(chunks)
	f.stored = &doc
	f.fullText = fullText
	return &doc
}

func (f *fakeDocStore) GetDocument(ctx context.Context, id string) *docModel.Document {
	return f.stored
}

func (f *fakeDocStore) GetFullDocumentContent(ctx context.Context, id string) *string {
	return &f.fullText
}

func (f *fakeDocStore) DeleteDocument(ctx context.Context, id string) bool {
	return true
}

func (f *fakeDocStore) CacheExtractedContent(ctx context.Context, id string, text string) {}

func newRawTextJob(text string) jobModel.Job {
	return jobModel.Job{
		Id:     "job-1",
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			FileName: "notes.txt",
			RawText:  text,
		},
	}
}

func TestProcessDocumentIngestionRawText(t *testing.T) {
	db := &fakeVectorDB{}
	store := &fakeDocStore{}
	deps := Dependencies{
		Generator: embedding.NewGenerator(nil),
		VectorDB:  db,
		DocStore:  store,
	}

	result := ProcessDocumentIngestion(context.Background(), newRawTextJob("The quick brown fox jumps over the lazy dog."), deps)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("expected complete status, got %s (%s)", result.Status, result.Error.Message)
	}
	if result.JobPayload.Document == nil {
		t.Fatal("expected a document on the completed payload")
	}
	doc := result.JobPayload.Document
	if doc.SourceType != docModel.TXT {
		t.Errorf("expected TXT source type, got %s", doc.SourceType)
	}
	if doc.WordCount != 9 {
		t.Errorf("expected 9 words, got %d", doc.WordCount)
	}
	if store.fullText == "" {
		t.Error("expected full text handed to the document store")
	}
	if len(db.upsertDocs) != 1 {
		t.Fatalf("expected one index upsert, got %d", len(db.upsertDocs))
	}
}

func TestProcessDocumentIngestionCollectionFailure(t *testing.T) {
	db := &fakeVectorDB{createErr: errors.New("qdrant down")}
	deps := Dependencies{
		Generator: embedding.NewGenerator(nil),
		VectorDB:  db,
		DocStore:  &fakeDocStore{},
	}

	result := ProcessDocumentIngestion(context.Background(), newRawTextJob("anything"), deps)

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if result.Error.Message == "" {
		t.Error("expected an error message on the job")
	}
	if result.JobPayload.Document != nil {
		t.Error("failed job should not carry a document")
	}
}

func TestProcessDocumentIngestionStoreFailure(t *testing.T) {
	deps := Dependencies{
		Generator: embedding.NewGenerator(nil),
		VectorDB:  &fakeVectorDB{},
		DocStore:  &fakeDocStore{failWrite: true},
	}

	result := ProcessDocumentIngestion(context.Background(), newRawTextJob("anything"), deps)

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if result.CurrentStep != jobModel.Error {
		t.Errorf("expected Error step, got %s", result.CurrentStep)
	}
}

func TestGetDocType(t *testing.T) {
	cases := []struct {
		path string
		want docModel.DocType
	}{
		{"report.pdf", docModel.PDF},
		{"REPORT.PDF", docModel.PDF},
		{"letter.docx", docModel.DOCX},
		{"old.rtf", docModel.DOCX},
		{"notes.txt", docModel.TXT},
		{"readme.md", docModel.TXT},
		{"archive.zip", docModel.ERR},
		{"noextension", docModel.ERR},
	}
	for _, tc := range cases {
		if got := getDocType(tc.path); got != tc.want {
			t.Errorf("getDocType(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestDetectContentKind(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want docModel.DocType
	}{
		{"pdf header", []byte("%PDF-1.7 rest of file"), docModel.PDF},
		{"pdf header after leading bytes", []byte("\xef\xbb\xbfjunk %PDF-1.4 body"), docModel.PDF},
		{"docx content types", []byte("PK\x03\x04 stuff [Content_Types] more"), docModel.DOCX},
		{"docx main part", []byte("PK\x03\x04 word/document.xml"), docModel.DOCX},
		{"docx main part without zip prefix", []byte("some bytes word/document.xml trailer"), docModel.DOCX},
		{"zip prefix alone", []byte("PK\x03\x04 random archive"), docModel.DOCX},
		{"plain text", []byte("just some words"), docModel.TXT},
		{"empty", nil, docModel.TXT},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectContentKind(tc.data); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens("abcd"); got != 1 {
		t.Errorf("expected 1 token for four chars, got %d", got)
	}
	if got := estimateTokens("abcde"); got != 2 {
		t.Errorf("expected rounding up, got %d", got)
	}
	if got := estimateTokens(""); got != 0 {
		t.Errorf("expected 0 for empty text, got %d", got)
	}
}

func TestSummarizeWithoutProvider(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}
	got := summarize(context.Background(), nil, string(long))
	if len(got) != 500 {
		t.Errorf("expected preview capped at 500 chars, got %d", len(got))
	}
}
