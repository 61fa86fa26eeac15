// Package retrieval assembles ranked search results into a bounded
// context string with per-chunk source citations.
package retrieval

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docbuddy/docbuddy/internal/index"
)

const (
	// Separator joins successive chunks in the assembled context.
	Separator = "\n\n---\n\n"

	// TruncationMarker is appended where the context budget cut a chunk
	// short. Truncation is policy, not an error.
	TruncationMarker = "..."

	// SnippetMaxLength caps the citation snippet shown to the caller.
	SnippetMaxLength = 800
)

// Citation identifies where a piece of assembled context came from,
// exposed for user-facing attribution. Text is the original untruncated
// chunk text capped at SnippetMaxLength; RelevanceScore is the cosine
// similarity, in [-1, 1].
type Citation struct {
	Document       string  `json:"document"`
	Page           int     `json:"page"`
	Text           string  `json:"text"`
	RelevanceScore float32 `json:"relevance_score"`
}

// Assembler turns ranked search results into a length-bounded context
// string for a downstream answer generator.
type Assembler struct {
	maxContextLength int
}

// NewAssembler creates an assembler with the given context character
// budget. The budget must be validated positive by configuration; a
// non-positive value here is normalized to 1.
func NewAssembler(maxContextLength int) *Assembler {
	if maxContextLength < 1 {
		maxContextLength = 1
	}
	return &Assembler{maxContextLength: maxContextLength}
}

// Assemble concatenates each result's chunk text, prefixed with a
// "[document - Page N]" label, in ranked order joined by Separator. The
// last chunk crossing the budget is cut to the remaining space with
// TruncationMarker appended; later results are dropped entirely. Every
// chunk that contributed any characters gets a citation. Empty results
// produce ("", nil), the designated "no relevant content found" signal.
func (a *Assembler) Assemble(results []index.SearchResult) (string, []Citation) {
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	var citations []Citation

	for _, r := range results {
		sep := ""
		if b.Len() > 0 {
			sep = Separator
		}
		remaining := a.maxContextLength - b.Len() - len(sep)
		if remaining <= 0 {
			break
		}

		piece := fmt.Sprintf("[%s - Page %d]\n%s", r.Chunk.Document, r.Chunk.Page, r.Chunk.Text)
		truncated := len(piece) > remaining
		if truncated {
			piece = piece[:floorRune(piece, remaining)]
			if remaining > len(TruncationMarker) {
				piece += TruncationMarker
			}
		}

		b.WriteString(sep)
		b.WriteString(piece)
		citations = append(citations, citationFor(r))

		if truncated {
			break
		}
	}

	return b.String(), citations
}

// citationFor derives a citation from a search result, carrying the
// original untruncated snippet.
func citationFor(r index.SearchResult) Citation {
	text := r.Chunk.Text
	if len(text) > SnippetMaxLength {
		text = text[:floorRune(text, SnippetMaxLength)]
	}
	return Citation{
		Document:       r.Chunk.Document,
		Page:           r.Chunk.Page,
		Text:           text,
		RelevanceScore: r.Score,
	}
}

// floorRune moves a byte offset back to the nearest rune start so a cut
// cannot split a multi-byte rune.
func floorRune(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
