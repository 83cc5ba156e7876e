package ingest

import (
	"bytes"
	"fmt"
	"os"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

var (
	pdfMagic         = []byte("%PDF")
	pdfHeader        = []byte("%PDF-")
	zipMagic         = []byte("PK")
	docxContentTypes = []byte("[Content_Types]")
	docxMainPart     = []byte("word/document.xml")
)

// DetectContentKind sniffs stored bytes for the binary formats we ingest.
// The header markers count anywhere in the payload, not just at the front,
// since stored content may carry leading bytes before the real header.
// Anything unrecognised is treated as plain text.
func DetectContentKind(data []byte) docModel.DocType {
	if bytes.HasPrefix(data, pdfMagic) || bytes.Contains(data, pdfHeader) {
		return docModel.PDF
	}
	if bytes.HasPrefix(data, zipMagic) ||
		bytes.Contains(data, docxContentTypes) || bytes.Contains(data, docxMainPart) {
		return docModel.DOCX
	}
	return docModel.TXT
}

// ExtractFromContent runs the file extractors over in-memory bytes. The
// parsers only take paths, so the bytes go through a temp file that is
// removed before returning.
func ExtractFromContent(data []byte, kind docModel.DocType) (string, error) {
	if kind != docModel.PDF && kind != docModel.DOCX {
		return string(data), nil
	}

	tmp, err := os.CreateTemp("", "docsapi-*."+string(kind))
	if err != nil {
		return "", fmt.Errorf("failed to stage content: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to stage content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to stage content: %w", err)
	}

	return extractText(tmpPath, kind)
}
