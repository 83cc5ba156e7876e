package docModel

import (
	"context"
	"time"
)

type DocType string

var (
	PDF  DocType = "pdf"
	DOCX DocType = "docx"
	TXT  DocType = "txt"
	ERR  DocType = "error"
)

// Document metadata as stored. When Chunked is set the full text is NOT kept
// on this struct - Content holds a preview and the real text lives in the
// chunk records, reconstructible by concatenating them in index order.
type Document struct {
	Id          string    `json:"id"`
	FileName    string    `json:"file_name"`
	SourceType  DocType   `json:"source_type"`
	Summary     string    `json:"summary,omitempty"`
	WordCount   int       `json:"word_count"`
	TokenCount  int       `json:"token_count"`
	Chunked     bool      `json:"chunked"`
	TotalChunks int       `json:"total_chunks"`
	Content     string    `json:"content,omitempty"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocChunk is one retrievable unit of a chunked document. An empty Embedding
// means the embedding call failed for this chunk, the text is still kept.
type DocChunk struct {
	DocId     string    `json:"doc_id"`
	Index     int       `json:"index"`
	Chunk     string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// EmbeddedChunk pairs a chunk text with its vector, in input order.
type EmbeddedChunk struct {
	Text      string
	Embedding []float32
}

// SourceMetadata keeps the fields the assembler checks explicitly plus an
// open bag for anything else the index returns.
type SourceMetadata struct {
	Page    int               `json:"page,omitempty"`
	Section string            `json:"section,omitempty"`
	Title   string            `json:"title,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// SearchResult is a raw passage from the search index. Score is nil when the
// index did not report one.
type SearchResult struct {
	DocumentId string         `json:"document_id"`
	FileName   string         `json:"file_name"`
	Score      *float64       `json:"score,omitempty"`
	Text       string         `json:"text"`
	Metadata   SourceMetadata `json:"metadata"`
}

type PageImage struct {
	PageNumber int    `json:"page_number"`
	ImageURL   string `json:"image_url"`
}

// Source is a SearchResult enriched at query time, never persisted.
type Source struct {
	SearchResult
	KeyPhrases []string    `json:"key_phrases,omitempty"`
	Sections   []string    `json:"sections,omitempty"`
	Narrative  []string    `json:"narrative,omitempty"`
	PageImages []PageImage `json:"page_images,omitempty"`
}

type SearchResponse struct {
	ResultCount    int            `json:"result_count"`
	RawContextText string         `json:"raw_context_text"`
	Results        []SearchResult `json:"results"`

	// QueryVector carries the embedding used for the search so the answer
	// cache can reuse it, it never leaves the process.
	QueryVector []float32 `json:"-"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type DocumentStore interface {
	StoreDocumentWithEmbeddings(ctx context.Context, doc Document, fullText string, chunks []EmbeddedChunk) *Document
	GetDocument(ctx context.Context, id string) *Document
	GetFullDocumentContent(ctx context.Context, id string) *string
	DeleteDocument(ctx context.Context, id string) bool
	CacheExtractedContent(ctx context.Context, id string, text string)
}

type ConversationStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	InitNewChat(ctx context.Context, id string) error
	AppendTurns(ctx context.Context, id string, turns ...ConversationTurn) error
	GetRecentTurns(ctx context.Context, id string, limit int) ([]ConversationTurn, error)
}
