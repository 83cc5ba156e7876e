package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/akolanti/DocsAPI/internal/config"
)

func reconstruct(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		sb.WriteString(c[overlap:])
	}
	return sb.String()
}

func TestChunk_Reconstruction(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
		overlap int
	}{
		{"plain_prose", strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100), 1000, 200},
		{"no_sentence_breaks", strings.Repeat("x", 5000), 500, 100},
		{"short_text", "Just one small sentence.", 1000, 200},
		{"tiny_chunks", strings.Repeat("Word soup without end ", 300), 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(tt.text, tt.maxSize, tt.overlap)

			if len(chunks) == 0 {
				t.Fatal("expected at least one chunk")
			}
			for i, c := range chunks {
				if c == "" {
					t.Errorf("chunk %d is empty", i)
				}
				if len(c) > tt.maxSize+config.BoundarySearchWindow {
					t.Errorf("chunk %d length %d exceeds maxSize+window", i, len(c))
				}
			}

			if got := reconstruct(chunks, tt.overlap); got != tt.text {
				t.Errorf("reconstruction mismatch: got %d chars, want %d", len(got), len(tt.text))
			}
		})
	}
}

func TestChunk_SentenceBoundaries(t *testing.T) {
	chunks := Chunk("Sentence one. Sentence two. Sentence three.", 20, 5)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if chunks[0] != "Sentence one. Sentence two." {
		t.Errorf("first chunk did not extend to the sentence break: %q", chunks[0])
	}

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "three.") {
		t.Errorf("last chunk must end at the text end, got %q", last)
	}

	for i, c := range chunks {
		if len(c) > 20+config.BoundarySearchWindow {
			t.Errorf("chunk %d too long: %d", i, len(c))
		}
	}
}

func TestChunk_DegenerateInputs(t *testing.T) {
	if got := Chunk("", 1000, 200); got != nil {
		t.Errorf("empty input should yield no chunks, got %v", got)
	}

	//tiny sizes are honored, an oversized overlap is clamped to size/2
	chunks := Chunk(strings.Repeat("a", 300), 10, 5000)
	if len(chunks) == 0 {
		t.Fatal("clamped settings should still produce chunks")
	}
	for _, c := range chunks {
		if len(c) > 10+config.BoundarySearchWindow {
			t.Errorf("clamped chunk too long: %d", len(c))
		}
	}

	//a non-positive size falls back to the default instead of looping
	fallback := Chunk(strings.Repeat("b", 300), 0, 0)
	if len(fallback) != 1 {
		t.Errorf("expected one default-sized chunk, got %d", len(fallback))
	}
}

func TestChunk_MultibyteSafety(t *testing.T) {
	text := strings.Repeat("héllo wörld ünïcode prosa. ", 40)
	chunks := Chunk(text, 100, 20)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d contains a split rune: %q", i, c)
		}
	}
	if last := chunks[len(chunks)-1]; !strings.HasSuffix(text, last) {
		t.Error("last chunk must close out the text")
	}
}

func TestChunk_Termination(t *testing.T) {
	//pathological: text shorter than the overlap window
	text := strings.Repeat("ab", 60)
	chunks := Chunk(text, 100, 50)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if last := chunks[len(chunks)-1]; !strings.HasSuffix(text, last) {
		t.Error("last chunk must close out the text")
	}

	stride := 1000 - 200
	upper := 2 * ((len(text) + stride - 1) / stride)
	if big := Chunk(text, 1000, 200); len(big) > upper {
		t.Errorf("chunk count %d exceeds the iteration bound %d", len(big), upper)
	}
}

func TestFixedSlices(t *testing.T) {
	text := strings.Repeat("z", config.MaxChunkSize*2+10)
	chunks := fixedSlices(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 fixed slices, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Error("fixed slices must cover the text exactly")
	}
}
