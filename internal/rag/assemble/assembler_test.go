package assemble

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/docdetail"
)

type mockFetcher struct {
	onGet func(ctx context.Context, id string) (*docdetail.Detail, error)
}

func (m *mockFetcher) GetDocument(ctx context.Context, id string) (*docdetail.Detail, error) {
	if m.onGet != nil {
		return m.onGet(ctx, id)
	}
	return &docdetail.Detail{}, nil
}

func searchResponse(texts ...string) docModel.SearchResponse {
	results := make([]docModel.SearchResult, len(texts))
	for i, t := range texts {
		score := 0.9
		results[i] = docModel.SearchResult{
			DocumentId: "doc-" + string(rune('a'+i)),
			FileName:   "file-" + string(rune('a'+i)) + ".pdf",
			Score:      &score,
			Text:       t,
		}
	}
	return docModel.SearchResponse{
		ResultCount:    len(results),
		RawContextText: strings.Join(texts, "\n\n"),
		Results:        results,
	}
}

func TestAssemble_LengthPreservedWhenAllFetchesFail(t *testing.T) {
	a := New(&mockFetcher{onGet: func(ctx context.Context, id string) (*docdetail.Detail, error) {
		return nil, errors.New("detail service down")
	}})

	resp := searchResponse("text one.", "text two.", "text three.")
	sources, promptContext := a.Assemble(context.Background(), resp)

	if len(sources) != len(resp.Results) {
		t.Fatalf("got %d sources, want %d", len(sources), len(resp.Results))
	}
	for i, s := range sources {
		if s.DocumentId != resp.Results[i].DocumentId {
			t.Errorf("source %d out of order: %s", i, s.DocumentId)
		}
		found := false
		for _, n := range s.Narrative {
			if strings.Contains(n, "detail unavailable") {
				found = true
			}
		}
		if !found {
			t.Errorf("source %d missing the failure narrative: %v", i, s.Narrative)
		}
	}
	if !strings.Contains(promptContext, "Source 3: file-c.pdf") {
		t.Error("prompt context should number every source by name")
	}
}

func TestAssemble_DetailMerge(t *testing.T) {
	a := New(&mockFetcher{onGet: func(ctx context.Context, id string) (*docdetail.Detail, error) {
		return &docdetail.Detail{
			Title: "Annual Report",
			Pages: []docModel.PageImage{{PageNumber: 1, ImageURL: "http://img/1"}},
			Metadata: &docModel.SourceMetadata{Page: 4, Section: "Results"},
		}, nil
	}})

	sources, promptContext := a.Assemble(context.Background(), searchResponse("some text."))

	if sources[0].Metadata.Title != "Annual Report" {
		t.Errorf("title not merged: %q", sources[0].Metadata.Title)
	}
	if sources[0].Metadata.Page != 4 || sources[0].Metadata.Section != "Results" {
		t.Errorf("metadata not merged: %+v", sources[0].Metadata)
	}
	if len(sources[0].PageImages) != 1 {
		t.Errorf("page images not merged")
	}
	if !strings.Contains(promptContext, "Title: Annual Report") {
		t.Error("prompt context should carry the merged title")
	}
}

func TestExtractKeyPhrases(t *testing.T) {
	text := "Executive Summary:\nRevenue grew fast. The key finding is margin pressure. Nothing else matters here. An important result was recorded."

	phrases := extractKeyPhrases(text)

	if len(phrases) == 0 {
		t.Fatal("expected key phrases")
	}
	if phrases[0] != "Executive Summary:" {
		t.Errorf("heading line should come first, got %q", phrases[0])
	}
	joined := strings.Join(phrases, " | ")
	if !strings.Contains(joined, "key finding") {
		t.Errorf("signal sentence missing: %s", joined)
	}
	if len(phrases) > 5 {
		t.Errorf("phrases must be capped at 5, got %d", len(phrases))
	}
}

func TestExtractSections(t *testing.T) {
	t.Run("paragraphs", func(t *testing.T) {
		got := extractSections("para one.\n\npara two.\n\npara three.")
		if len(got) != 3 {
			t.Errorf("got %d sections, want 3: %v", len(got), got)
		}
	})

	t.Run("newline_fallback", func(t *testing.T) {
		got := extractSections("line one.\nline two.")
		if len(got) != 2 {
			t.Errorf("got %d sections, want 2: %v", len(got), got)
		}
	})

	t.Run("sentence_runs", func(t *testing.T) {
		got := extractSections("One. Two. Three. Four. Five.")
		if len(got) != 2 {
			t.Errorf("got %d sections, want 2 runs of 3: %v", len(got), got)
		}
	})

	t.Run("cap_at_five", func(t *testing.T) {
		got := extractSections(strings.Repeat("para.\n\n", 10))
		if len(got) != 5 {
			t.Errorf("got %d sections, want the cap of 5", len(got))
		}
	})
}
