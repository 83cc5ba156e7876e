package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
)

var errUnsupportedType = errors.New("unsupported document type")

const summaryInstruction = "Summarize the following document in two or three sentences. " +
	"Mention what kind of document it is and its main subject. Reply with the summary only."

// summarizeInputLimit keeps the summary prompt from blowing the context
// window on large documents.
const summarizeInputLimit = 24000

func getDocType(docPath string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docModel.PDF
	case ".docx", ".odt", ".rtf":
		return docModel.DOCX
	case ".txt", ".md":
		return docModel.TXT
	default:
		return docModel.ERR
	}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// estimateTokens approximates at four characters per token, close enough for
// reporting without a tokenizer dependency.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// summarize asks the model for a short summary. Any failure falls back to a
// truncated content preview so ingestion never blocks on the LLM.
func summarize(ctx context.Context, provider llm.Provider, text string) string {
	if provider == nil {
		return previewOf(text)
	}

	input := text
	if len(input) > summarizeInputLimit {
		input = input[:summarizeInputLimit]
	}

	callCtx, cancel := context.WithTimeout(ctx, config.BackendCallTimeout)
	defer cancel()

	messages := []docModel.ConversationTurn{
		{Role: docModel.RoleSystem, Content: summaryInstruction},
		{Role: docModel.RoleUser, Content: input},
	}
	summary, err := provider.ChatCompletion(callCtx, messages, config.ModelTemperature, config.SynthesizerMaxTokens)
	if err != nil || strings.TrimSpace(summary) == "" {
		logger.Error("Summary generation failed, using preview", "error", err)
		return previewOf(text)
	}
	return strings.TrimSpace(summary)
}

func previewOf(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > config.ContentPreviewLength {
		return text[:config.ContentPreviewLength]
	}
	return text
}
