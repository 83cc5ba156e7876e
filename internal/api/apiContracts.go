package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status   string            `json:"status"`
	Step     string            `json:"step,omitempty"`
	Document *DocumentResponse `json:"document,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	Id          string    `json:"id"`
	FileName    string    `json:"file_name"`
	SourceType  string    `json:"source_type" example:"pdf"`
	Summary     string    `json:"summary,omitempty"`
	WordCount   int       `json:"word_count"`
	TokenCount  int       `json:"token_count"`
	Chunked     bool      `json:"chunked"`
	TotalChunks int       `json:"total_chunks"`
	IngestedAt  time.Time `json:"ingested_at"`
}

type SourceResponse struct {
	DocumentId string   `json:"document_id"`
	FileName   string   `json:"file_name,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Text       string   `json:"text,omitempty"`
	KeyPhrases []string `json:"key_phrases,omitempty"`
	Sections   []string `json:"sections,omitempty"`
	Narrative  []string `json:"narrative,omitempty"`
}

type RagResponse struct {
	Query       string           `json:"query"`
	Answer      string           `json:"answer"`
	Thoughts    []string         `json:"thoughts,omitempty"`
	Sources     []SourceResponse `json:"sources"`
	ResultCount int              `json:"result_count"`
	Notes       string           `json:"notes,omitempty"`
	Cached      bool             `json:"cached,omitempty"`
	ChatId      string           `json:"chat_id,omitempty"`
}

type DocumentContentResponse struct {
	Id      string `json:"id"`
	Content string `json:"content"`
}

// requests---------------------

type AnalyzeRequest struct {
	Text       string `json:"text" validate:"required"`
	FileName   string `json:"file_name,omitempty"`
	Collection string `json:"collection,omitempty"`
}

type RagRequest struct {
	Query           string `json:"query" validate:"required"`
	CollectionId    string `json:"collection_id,omitempty"`
	ChatId          string `json:"chat_id,omitempty"`
	IncludeThoughts bool   `json:"include_thoughts,omitempty"`
}
