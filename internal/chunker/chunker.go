// Package chunker splits flattened document text into overlapping,
// sentence-boundary-aware chunks with page attribution.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/docbuddy/docbuddy/internal/document"
)

const (
	// BoundaryScanWindow is how far the chunker scans backward from a raw
	// chunk end looking for a sentence boundary. Bounding the scan caps
	// worst-case chunk-size drift; very long sentences get a hard cut.
	BoundaryScanWindow = 120

	// minChunkFraction is the minimum fraction of the target chunk size a
	// snapped chunk must retain. Snapping below this keeps too little text
	// to be a useful retrieval unit, so the raw offset is used instead.
	minChunkFraction = 0.4
)

// sentenceBoundary matches a sentence-terminal character followed by
// whitespace. Newline covers paragraph breaks and the inter-page separator.
var sentenceBoundary = regexp.MustCompile(`[.!?\n]\s+`)

// Chunk is a bounded, page-attributed excerpt of a document: the unit of
// retrieval. Text is the whitespace-trimmed substring of the flattened
// text spanning [StartPos, EndPos).
type Chunk struct {
	Text     string `json:"text"`
	Document string `json:"document"`
	Page     int    `json:"page"`
	StartPos int    `json:"start_pos"`
	EndPos   int    `json:"end_pos"`
}

// Chunker produces overlapping chunks of a target size.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker with the given target chunk size and overlap,
// both in characters. Overlap must be non-negative and less than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks the flattened text of a document. Consecutive chunk spans
// overlap by the configured overlap except where boundary snapping moved
// an end. Cut offsets are clamped to rune starts so multi-byte text is
// never split mid-rune. Whitespace-only chunks are dropped; their span
// still counts as covered. Each chunk's page is the page of its span
// midpoint.
func (c *Chunker) Split(text string, pm *document.PageMap, docName string) []Chunk {
	var chunks []Chunk
	n := len(text)
	start := 0

	for start < n {
		end := start + c.size
		if end < n {
			end = c.snapToBoundary(text, start, end)
			end = floorRune(text, end)
			if end <= start {
				_, w := utf8.DecodeRuneInString(text[start:])
				end = start + w
			}
		} else {
			end = n
		}

		trimmed := strings.TrimSpace(text[start:end])
		if trimmed != "" {
			mid := start + (end-start)/2
			chunks = append(chunks, Chunk{
				Text:     trimmed,
				Document: docName,
				Page:     pm.PageOf(mid),
				StartPos: start,
				EndPos:   end,
			})
		}

		if end >= n {
			break
		}
		next := floorRune(text, end-c.overlap)
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// floorRune moves a byte offset back to the nearest rune start so a cut
// cannot split a multi-byte rune.
func floorRune(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// snapToBoundary moves a raw chunk end back to just after the nearest
// preceding sentence boundary within the scan window. It keeps the raw
// end when no boundary is found, when the snapped chunk would retain
// less than minChunkFraction of the target size, or when snapping would
// stall forward progress.
func (c *Chunker) snapToBoundary(text string, start, rawEnd int) int {
	searchStart := rawEnd - BoundaryScanWindow
	if searchStart < start {
		searchStart = start
	}
	// Include one character past rawEnd so a terminator sitting exactly
	// at the end still matches with its trailing whitespace.
	windowEnd := rawEnd + 1
	if windowEnd > len(text) {
		windowEnd = len(text)
	}

	matches := sentenceBoundary.FindAllStringIndex(text[searchStart:windowEnd], -1)
	if len(matches) == 0 {
		return rawEnd
	}

	snapped := searchStart + matches[len(matches)-1][1]
	if float64(snapped-start) <= float64(c.size)*minChunkFraction {
		return rawEnd
	}
	if snapped-c.overlap <= start {
		return rawEnd
	}
	return snapped
}
