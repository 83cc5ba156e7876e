package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func extractPDF(path string) (string, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file")
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			logger.Error("Error parsing page content", "page", i, "Error", err)
			continue
		}

		pages = append(pages, content)
	}
	if len(pages) == 0 {
		return "", errors.New("no extractable pages")
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractDocxTxt reads a .odt, .docx, .rtf or plaintext file and returns the
// content as a string
func extractDocxTxt(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc")
		return "", fmt.Errorf("failed to extract docx: %w", err)
	}
	return text, nil
}

func extractText(path string, contentType docModel.DocType) (string, error) {
	switch contentType {
	case docModel.PDF:
		return extractPDF(path)
	case docModel.DOCX, docModel.TXT:
		return extractDocxTxt(path)
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// protectExtract guards against pdf pages that hang the parser
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}
