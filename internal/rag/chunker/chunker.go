package chunker

import (
	"regexp"
	"unicode/utf8"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

//splits raw text into overlapping retrievable units. Boundaries prefer clean
//sentence breaks: the scan may extend a chunk past maxSize by up to
//BoundarySearchWindow chars. That overshoot is bounded and intentional.

var sentenceBoundary = regexp.MustCompile(`[.!?]\s`)

var logger = logger_i.NewLogger("Chunker")

// Chunk returns ordered overlapping segments of text. Empty input yields an
// empty list. Any internal failure degrades to fixed-size slices rather than
// an error so ingestion is never blocked by a pathological document.
func Chunk(text string, maxSize int, overlap int) (chunks []string) {
	if text == "" {
		logger.Warn("Chunk called with empty input")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Chunking failed, falling back to fixed slices", "panic", r)
			chunks = fixedSlices(text)
		}
	}()

	return chunk(text, maxSize, overlap)
}

func chunk(text string, maxSize int, overlap int) []string {
	//small sizes are honored as requested, only nonsense is corrected: a
	//non-positive size falls back to the default and the ceiling stays hard
	if maxSize <= 0 {
		maxSize = config.DefaultMaxChunkSize
	}
	if maxSize > config.MaxChunkSize {
		maxSize = config.MaxChunkSize
	}
	overlap = clamp(overlap, 0, maxSize/2)

	stride := maxSize - overlap
	maxIterations := 2 * ((len(text) + stride - 1) / stride)

	var chunks []string
	start := 0
	for i := 0; i < maxIterations && start < len(text); i++ {
		boundary := nextRuneStart(text, start+maxSize)
		if boundary > len(text) {
			boundary = len(text)
		}

		//look past the cut for the first sentence terminator, only worth it
		//when a real tail remains
		if boundary < len(text) && len(text)-boundary >= config.MinTailForBoundary {
			searchEnd := boundary + config.BoundarySearchWindow
			if searchEnd > len(text) {
				searchEnd = len(text)
			}
			if loc := sentenceBoundary.FindStringIndex(text[boundary:searchEnd]); loc != nil {
				boundary = boundary + loc[0] + 1 //just after the punctuation
			}
		}

		chunks = append(chunks, text[start:boundary])
		if boundary >= len(text) {
			break
		}

		next := nextRuneStart(text, boundary-overlap)
		if next <= start || next < 0 || next >= len(text) {
			//no forward progress possible, bail instead of looping forever
			logger.Warn("Chunker stalled", "start", start, "next", next)
			break
		}
		start = next
	}
	return chunks
}

// fixedSlices is the degraded path: non-overlapping slices capped at the
// MaxChunkSize limit. If even the slicing goes wrong, hand back whatever fits
// into a single maximal chunk.
func fixedSlices(text string) (chunks []string) {
	defer func() {
		if r := recover(); r != nil {
			end := len(text)
			if end > config.MaxChunkSize {
				end = config.MaxChunkSize
			}
			chunks = []string{text[:end]}
		}
	}()

	start := 0
	for start < len(text) {
		end := nextRuneStart(text, start+config.MaxChunkSize)
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		start = end
	}
	return chunks
}

// nextRuneStart moves i forward to the nearest rune start so a cut never
// lands inside a multi-byte character.
func nextRuneStart(text string, i int) int {
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

func clamp(v int, low int, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
