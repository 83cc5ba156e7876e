package mcpserver

import (
	"context"
	"errors"

	"github.com/akolanti/DocsAPI/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RagQueryInput is the input schema for the rag_query tool.
type RagQueryInput struct {
	Query           string `json:"query" jsonschema:"the question to answer from the indexed documents"`
	Collection      string `json:"collection,omitempty" jsonschema:"document collection to search (default collection when empty)"`
	IncludeThoughts bool   `json:"include_thoughts,omitempty" jsonschema:"include the model's reasoning steps in the output"`
}

// RagQueryOutput is the output schema for the rag_query tool.
type RagQueryOutput struct {
	Answer      string            `json:"answer"`
	Thoughts    []string          `json:"thoughts,omitempty"`
	Sources     []RagSourceOutput `json:"sources"`
	ResultCount int               `json:"result_count"`
	Notes       string            `json:"notes,omitempty"`
}

// RagSourceOutput is one cited source of an answer.
type RagSourceOutput struct {
	DocumentID string   `json:"document_id"`
	FileName   string   `json:"file_name,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	KeyPhrases []string `json:"key_phrases,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	DocumentID     string `json:"document_id" jsonschema:"the id of an ingested document"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"also return the full readable text"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	SourceType string `json:"source_type"`
	Summary    string `json:"summary,omitempty"`
	WordCount  int    `json:"word_count"`
	TokenCount int    `json:"token_count"`
	Content    string `json:"content,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rag_query",
		Description: "Answer a question using the ingested documents, with cited sources",
	}, s.handleRagQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch metadata and optionally the full text of an ingested document",
	}, s.handleGetDocument)
}

func (s *Server) handleRagQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RagQueryInput,
) (*mcp.CallToolResult, RagQueryOutput, error) {
	result, err := s.rag.Query(ctx, rag.QueryRequest{
		Query:        input.Query,
		Collection:   input.Collection,
		WantThoughts: input.IncludeThoughts,
	})
	if err != nil {
		s.logger.Error("rag_query tool failed", "error", err)
		return nil, RagQueryOutput{}, err
	}

	output := RagQueryOutput{
		Answer:      result.Answer,
		Thoughts:    result.Thoughts,
		Sources:     make([]RagSourceOutput, len(result.Sources)),
		ResultCount: result.ResultCount,
		Notes:       result.Notes,
	}
	for i, source := range result.Sources {
		output.Sources[i] = RagSourceOutput{
			DocumentID: source.DocumentId,
			FileName:   source.FileName,
			Score:      source.Score,
			KeyPhrases: source.KeyPhrases,
		}
	}
	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	doc := s.rag.GetDocument(ctx, input.DocumentID)
	if doc == nil {
		return nil, GetDocumentOutput{}, errors.New("document not found")
	}

	output := GetDocumentOutput{
		ID:         doc.Id,
		FileName:   doc.FileName,
		SourceType: string(doc.SourceType),
		Summary:    doc.Summary,
		WordCount:  doc.WordCount,
		TokenCount: doc.TokenCount,
	}

	if input.IncludeContent {
		content, err := s.rag.GetDocumentContent(ctx, input.DocumentID)
		if err != nil {
			s.logger.Error("get_document content read failed", "id", input.DocumentID, "error", err)
		} else {
			output.Content = content
		}
	}
	return nil, output, nil
}
