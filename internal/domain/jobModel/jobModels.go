package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	TextExtraction   InternalStatus = "TextExtraction"
	Chunking         InternalStatus = "Chunking"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	Summarizing      InternalStatus = "Summarizing"
	StoreWrite       InternalStatus = "StoreWrite"
	IndexUpsert      InternalStatus = "IndexUpsert"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"
)

// Job tracks one document analysis run from upload to indexed document.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	FileName string `json:"file_name,omitempty"`
	//SourcePath points at the uploaded temp file, empty for raw text requests
	SourcePath string `json:"source_path,omitempty"`
	RawText    string `json:"raw_text,omitempty"`
	Collection string `json:"collection,omitempty"`

	//filled in when the run completes
	Document *docModel.Document `json:"document,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
