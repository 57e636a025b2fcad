// Package segmenter splits extracted source text into bounded chunks for
// vector ingestion. Three strategies are provided: a fixed-size sliding
// window with overlap, paragraph packing, and sentence packing.
package segmenter

import (
	"strings"

	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
)

// boundaryFraction is the tail share of a window scanned for a sentence end
// before falling back to a whitespace cut.
const boundaryFraction = 5

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n", ".\t", "!\t", "?\t"}

// Segment slices text into ordered chunks of at most chunkSize characters,
// with consecutive chunks sharing up to overlap characters. Cuts prefer a
// sentence end in the last fifth of the window, then the nearest whitespace,
// then an exact cut at chunkSize.
func Segment(text string, chunkSize, overlap int) ([]string, error) {
	if err := validate(text, chunkSize, overlap); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if len(text) <= chunkSize {
		return []string{trimmed}, nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		if len(text)-start <= chunkSize {
			if c := strings.TrimSpace(text[start:]); c != "" {
				chunks = append(chunks, c)
			}
			break
		}

		end := cutPoint(text, start, start+chunkSize)
		if c := strings.TrimSpace(text[start:end]); c != "" {
			chunks = append(chunks, c)
		}

		next := end - overlap
		if next <= start {
			// A very early boundary cut could otherwise stall the window.
			next = end
		}
		start = next
	}
	return chunks, nil
}

// SegmentByParagraphs packs consecutive paragraphs into chunks of at most
// maxChunkSize characters. A single paragraph longer than maxChunkSize is
// reduced via the fixed-size strategy instead of failing.
func SegmentByParagraphs(text string, maxChunkSize int) ([]string, error) {
	if err := validate(text, maxChunkSize, 0); err != nil {
		return nil, err
	}
	return packUnits(splitParagraphs(text), "\n\n", maxChunkSize)
}

// SegmentBySentences packs consecutive sentences into chunks of at most
// maxChunkSize characters, reducing oversized sentences the same way.
func SegmentBySentences(text string, maxChunkSize int) ([]string, error) {
	if err := validate(text, maxChunkSize, 0); err != nil {
		return nil, err
	}
	return packUnits(splitSentences(text), " ", maxChunkSize)
}

func validate(text string, chunkSize, overlap int) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation(apperr.Field("text", "empty_text", "cannot segment empty text"))
	}
	if chunkSize <= 0 {
		return apperr.Validation(apperr.Field("chunk_size", "non_positive", "chunk size must be greater than zero"))
	}
	if overlap < 0 {
		return apperr.Validation(apperr.Field("overlap", "negative", "overlap must not be negative"))
	}
	if overlap >= chunkSize {
		return apperr.Validation(apperr.Field("overlap", "too_large", "overlap must be smaller than chunk size"))
	}
	return nil
}

// cutPoint picks where to end the window [start, limit). Sentence ends are
// only honored in the tail fifth of the window; whitespace anywhere after
// start is the fallback before a hard cut.
func cutPoint(text string, start, limit int) int {
	window := text[start:limit]
	tailStart := len(window) - len(window)/boundaryFraction

	best := -1
	for _, ender := range sentenceEnders {
		if i := strings.LastIndex(window, ender); i >= tailStart && i > best {
			best = i
		}
	}
	if best >= 0 {
		return start + best + 1
	}

	for i := len(window) - 1; i > 0; i-- {
		if window[i] == ' ' || window[i] == '\n' || window[i] == '\t' {
			return start + i
		}
	}
	return limit
}

func packUnits(units []string, sep string, maxChunkSize int) ([]string, error) {
	var chunks []string
	var acc strings.Builder

	flush := func() {
		if c := strings.TrimSpace(acc.String()); c != "" {
			chunks = append(chunks, c)
		}
		acc.Reset()
	}

	for _, unit := range units {
		unit = strings.TrimSpace(unit)
		if unit == "" {
			continue
		}

		if len(unit) > maxChunkSize {
			flush()
			// Oversized unit: reduce with the fixed-size strategy and a
			// tighter overlap rather than erroring out.
			sub, err := Segment(unit, maxChunkSize, maxChunkSize/10)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, sub...)
			continue
		}

		if acc.Len() > 0 && acc.Len()+len(sep)+len(unit) > maxChunkSize {
			flush()
		}
		if acc.Len() > 0 {
			acc.WriteString(sep)
		}
		acc.WriteString(unit)
	}
	flush()

	if len(chunks) == 0 {
		return nil, apperr.Validation(apperr.Field("text", "empty_text", "cannot segment empty text"))
	}
	return chunks, nil
}

func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(normalized, "\n\n")
}

func splitSentences(text string) []string {
	var sentences []string
	remainder := strings.TrimSpace(text)
	for remainder != "" {
		cut := -1
		for _, ender := range []string{". ", "! ", "? "} {
			if i := strings.Index(remainder, ender); i >= 0 && (cut < 0 || i < cut) {
				cut = i
			}
		}
		if cut < 0 {
			sentences = append(sentences, remainder)
			break
		}
		sentences = append(sentences, strings.TrimSpace(remainder[:cut+1]))
		remainder = strings.TrimSpace(remainder[cut+1:])
	}
	return sentences
}
