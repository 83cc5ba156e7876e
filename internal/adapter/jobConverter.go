package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DocsAPI/internal/api"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/rag"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:   string(job.Status),
		Step:     string(job.CurrentStep),
		Document: ToDocumentResponse(job.JobPayload.Document),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToDocumentResponse(doc *docModel.Document) *api.DocumentResponse {
	if doc == nil {
		return nil
	}
	return &api.DocumentResponse{
		Id:          doc.Id,
		FileName:    doc.FileName,
		SourceType:  string(doc.SourceType),
		Summary:     doc.Summary,
		WordCount:   doc.WordCount,
		TokenCount:  doc.TokenCount,
		Chunked:     doc.Chunked,
		TotalChunks: doc.TotalChunks,
		IngestedAt:  doc.IngestedAt,
	}
}

func ToRagResponse(query string, chatId string, result rag.QueryResult) api.RagResponse {
	sources := make([]api.SourceResponse, 0, len(result.Sources))
	for _, s := range result.Sources {
		sources = append(sources, api.SourceResponse{
			DocumentId: s.DocumentId,
			FileName:   s.FileName,
			Score:      s.Score,
			Text:       s.Text,
			KeyPhrases: s.KeyPhrases,
			Sections:   s.Sections,
			Narrative:  s.Narrative,
		})
	}

	return api.RagResponse{
		Query:       query,
		Answer:      result.Answer,
		Thoughts:    result.Thoughts,
		Sources:     sources,
		ResultCount: result.ResultCount,
		Notes:       result.Notes,
		Cached:      result.Cached,
		ChatId:      chatId,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
