package assemble

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/docdetail"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

var (
	headingLine    = regexp.MustCompile(`^[A-Z][^:\n]{1,80}:$`)
	signalKeywords = regexp.MustCompile(`(?i)\b(important|key|significant|result|conclusion|finding)\b`)
	sentenceSplit  = regexp.MustCompile(`(?U)[^.!?]+[.!?]`)
)

type Assembler struct {
	detail docdetail.Fetcher
	logger *logger_i.Logger
}

func New(detail docdetail.Fetcher) *Assembler {
	return &Assembler{
		detail: detail,
		logger: logger_i.NewLogger("Context Assembler"),
	}
}

// Assemble enriches every raw search result into a citable source and builds
// the single prompt-context block the synthesizer consumes. The output always
// has exactly one source per input result, in the same order - a failing
// detail fetch degrades that one source, never its siblings.
func (a *Assembler) Assemble(ctx context.Context, search docModel.SearchResponse) ([]docModel.Source, string) {
	sources := make([]docModel.Source, len(search.Results))

	var wg sync.WaitGroup
	for i, result := range search.Results {
		wg.Add(1)
		go func(i int, result docModel.SearchResult) {
			defer wg.Done()
			sources[i] = a.enrichSource(ctx, result)
		}(i, result)
	}
	wg.Wait()

	return sources, buildPromptContext(search.RawContextText, sources)
}

func (a *Assembler) enrichSource(ctx context.Context, result docModel.SearchResult) docModel.Source {
	source := docModel.Source{
		SearchResult: result,
		KeyPhrases:   extractKeyPhrases(result.Text),
		Sections:     extractSections(result.Text),
	}

	if result.Score != nil {
		source.Narrative = append(source.Narrative, fmt.Sprintf("Matched %s with relevance %.2f", displayName(result), *result.Score))
	} else {
		source.Narrative = append(source.Narrative, fmt.Sprintf("Matched %s (relevance unavailable)", displayName(result)))
	}

	if result.DocumentId == "" || a.detail == nil {
		return source
	}

	detail, err := a.detail.GetDocument(ctx, result.DocumentId)
	if err != nil {
		a.logger.Warn("Detail fetch failed for source", "documentId", result.DocumentId, "error", err)
		source.Narrative = append(source.Narrative, fmt.Sprintf("Extended document detail unavailable: %v", err))
		return source
	}

	source.PageImages = detail.Pages
	if detail.Title != "" {
		source.Metadata.Title = detail.Title
	}
	if detail.FileName != "" && source.FileName == "" {
		source.FileName = detail.FileName
	}
	if detail.Metadata != nil {
		if detail.Metadata.Page != 0 {
			source.Metadata.Page = detail.Metadata.Page
		}
		if detail.Metadata.Section != "" {
			source.Metadata.Section = detail.Metadata.Section
		}
		for k, v := range detail.Metadata.Extra {
			if source.Metadata.Extra == nil {
				source.Metadata.Extra = make(map[string]string)
			}
			source.Metadata.Extra[k] = v
		}
	}
	source.Narrative = append(source.Narrative, fmt.Sprintf("Document detail loaded (%d page images)", len(detail.Pages)))
	return source
}

// extractKeyPhrases pulls heading-style lines plus sentences carrying signal
// keywords, capped at MaxKeyPhrases.
func extractKeyPhrases(text string) []string {
	var phrases []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if headingLine.MatchString(trimmed) {
			phrases = append(phrases, trimmed)
			if len(phrases) >= config.MaxKeyPhrases {
				return phrases
			}
		}
	}

	for _, sentence := range sentenceSplit.FindAllString(text, -1) {
		trimmed := strings.TrimSpace(sentence)
		if signalKeywords.MatchString(trimmed) {
			phrases = append(phrases, trimmed)
			if len(phrases) >= config.MaxKeyPhrases {
				return phrases
			}
		}
	}
	return phrases
}

// extractSections splits by blank-line paragraphs, then single newlines, then
// 3-sentence runs, whichever first yields more than one section. Capped at
// MaxExtractedSections.
func extractSections(text string) []string {
	sections := nonEmpty(strings.Split(text, "\n\n"))
	if len(sections) <= 1 {
		sections = nonEmpty(strings.Split(text, "\n"))
	}
	if len(sections) <= 1 {
		sentences := sentenceSplit.FindAllString(text, -1)
		sections = nil
		for start := 0; start < len(sentences); start += 3 {
			end := start + 3
			if end > len(sentences) {
				end = len(sentences)
			}
			run := strings.TrimSpace(strings.Join(sentences[start:end], " "))
			if run != "" {
				sections = append(sections, run)
			}
		}
		if len(sections) == 0 {
			trimmed := strings.TrimSpace(text)
			if trimmed != "" {
				sections = []string{trimmed}
			}
		}
	}

	if len(sections) > config.MaxExtractedSections {
		sections = sections[:config.MaxExtractedSections]
	}
	return sections
}

func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func buildPromptContext(rawContext string, sources []docModel.Source) string {
	var sb strings.Builder

	sb.WriteString("Original search context:\n")
	sb.WriteString(rawContext)
	sb.WriteString("\n")

	for i, source := range sources {
		sb.WriteString(fmt.Sprintf("\nSource %d: %s\n", i+1, displayName(source.SearchResult)))
		if source.Metadata.Title != "" {
			sb.WriteString("Title: " + source.Metadata.Title + "\n")
		}
		if source.Metadata.Page != 0 {
			sb.WriteString(fmt.Sprintf("Page: %d\n", source.Metadata.Page))
		}
		sb.WriteString(source.Text)
		sb.WriteString("\n")
		if len(source.KeyPhrases) > 0 {
			sb.WriteString("Key phrases: " + strings.Join(source.KeyPhrases, "; ") + "\n")
		}
	}
	return sb.String()
}

func displayName(result docModel.SearchResult) string {
	if result.FileName != "" {
		return result.FileName
	}
	if result.DocumentId != "" {
		return result.DocumentId
	}
	return "unnamed source"
}
