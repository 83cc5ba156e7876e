package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type scriptedEmbedder struct {
	calls     int
	failCalls map[int]bool //1-based call numbers that should error
}

func (s *scriptedEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (s *scriptedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.failCalls[s.calls] {
		return nil, errors.New("api unreachable")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i)}
	}
	return vectors, nil
}

func makeChunks(n int) []string {
	chunks := make([]string, n)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk %d", i)
	}
	return chunks
}

func TestEmbed_OneToOne(t *testing.T) {
	g := NewGenerator(&scriptedEmbedder{})
	chunks := makeChunks(43)

	out := g.Embed(context.Background(), chunks)

	if len(out) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(out), len(chunks))
	}
	for i, r := range out {
		if r.Text != chunks[i] {
			t.Errorf("result %d out of order: %q", i, r.Text)
		}
		if len(r.Embedding) == 0 {
			t.Errorf("result %d unexpectedly has an empty vector", i)
		}
	}
}

func TestEmbed_PartialBatchFailure(t *testing.T) {
	//25 chunks, batch size 20: call 2 (last 5 chunks) fails
	g := NewGenerator(&scriptedEmbedder{failCalls: map[int]bool{2: true}})
	chunks := makeChunks(25)

	out := g.Embed(context.Background(), chunks)

	if len(out) != 25 {
		t.Fatalf("got %d results, want 25", len(out))
	}
	for i := 0; i < 20; i++ {
		if len(out[i].Embedding) == 0 {
			t.Errorf("chunk %d from the healthy batch should have a vector", i)
		}
	}
	for i := 20; i < 25; i++ {
		if len(out[i].Embedding) != 0 {
			t.Errorf("chunk %d from the failed batch should have an empty vector", i)
		}
		if out[i].Text != chunks[i] {
			t.Errorf("chunk %d text lost on failure", i)
		}
	}
}

func TestEmbed_NoEmbedderConfigured(t *testing.T) {
	g := NewGenerator(nil)
	chunks := makeChunks(7)

	out := g.Embed(context.Background(), chunks)

	if len(out) != 7 {
		t.Fatalf("got %d results, want 7", len(out))
	}
	for i, r := range out {
		if len(r.Embedding) != 0 {
			t.Errorf("result %d should be an empty-vector fallback", i)
		}
		if r.Text != chunks[i] {
			t.Errorf("result %d text mismatch", i)
		}
	}
}

func TestEmbed_AllBatchesFail(t *testing.T) {
	g := NewGenerator(&scriptedEmbedder{failCalls: map[int]bool{1: true, 2: true, 3: true}})
	chunks := makeChunks(50)

	out := g.Embed(context.Background(), chunks)

	if len(out) != 50 {
		t.Fatalf("got %d results, want 50", len(out))
	}
	for i, r := range out {
		if len(r.Embedding) != 0 {
			t.Errorf("result %d should be empty after total failure", i)
		}
	}
}
