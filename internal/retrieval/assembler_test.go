package retrieval

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docbuddy/docbuddy/internal/chunker"
	"github.com/docbuddy/docbuddy/internal/index"
)

func result(doc string, page int, text string, score float32) index.SearchResult {
	return index.SearchResult{
		Chunk: chunker.Chunk{Text: text, Document: doc, Page: page},
		Score: score,
	}
}

func TestAssemble_Empty(t *testing.T) {
	a := NewAssembler(3000)
	ctx, citations := a.Assemble(nil)
	if ctx != "" {
		t.Errorf("Assemble(nil) context = %q, want empty", ctx)
	}
	if citations != nil {
		t.Errorf("Assemble(nil) citations = %v, want nil", citations)
	}
}

func TestAssemble_Format(t *testing.T) {
	a := NewAssembler(3000)
	results := []index.SearchResult{
		result("notes.pdf", 1, "Machine learning is a subset of AI.", 0.9),
		result("notes.pdf", 2, "Deep learning uses many layers.", 0.7),
	}

	ctx, citations := a.Assemble(results)

	want := "[notes.pdf - Page 1]\nMachine learning is a subset of AI." +
		"\n\n---\n\n" +
		"[notes.pdf - Page 2]\nDeep learning uses many layers."
	if ctx != want {
		t.Errorf("Assemble() context = %q, want %q", ctx, want)
	}

	if len(citations) != 2 {
		t.Fatalf("Assemble() = %d citations, want 2", len(citations))
	}
	if citations[0].Document != "notes.pdf" || citations[0].Page != 1 {
		t.Errorf("citation 0 = %+v", citations[0])
	}
	if citations[0].RelevanceScore != 0.9 {
		t.Errorf("citation 0 relevance = %v, want 0.9", citations[0].RelevanceScore)
	}
	if citations[1].Text != "Deep learning uses many layers." {
		t.Errorf("citation 1 text = %q", citations[1].Text)
	}
}

func TestAssemble_BudgetInvariant(t *testing.T) {
	results := []index.SearchResult{
		result("a.pdf", 1, strings.Repeat("alpha beta. ", 30), 0.9),
		result("a.pdf", 2, strings.Repeat("gamma delta. ", 30), 0.8),
		result("a.pdf", 3, strings.Repeat("epsilon zeta. ", 30), 0.7),
	}

	for _, budget := range []int{1, 5, 20, 50, 100, 400, 10000} {
		t.Run(fmt.Sprintf("budget_%d", budget), func(t *testing.T) {
			ctx, _ := NewAssembler(budget).Assemble(results)
			if len(ctx) > budget+len(TruncationMarker) {
				t.Errorf("len(context) = %d exceeds budget %d plus marker", len(ctx), budget)
			}
		})
	}
}

func TestAssemble_TruncatesLastCrossingChunk(t *testing.T) {
	results := []index.SearchResult{
		result("a.pdf", 1, "First chunk text that fits fine.", 0.9),
		result("a.pdf", 2, strings.Repeat("overflowing text ", 50), 0.8),
		result("a.pdf", 3, "Never reached.", 0.7),
	}

	// Enough for the first piece and part of the second.
	budget := 100
	ctx, citations := NewAssembler(budget).Assemble(results)

	if !strings.HasSuffix(ctx, TruncationMarker) {
		t.Errorf("context should end with the truncation marker, got %q", ctx[len(ctx)-10:])
	}
	if strings.Contains(ctx, "Never reached") {
		t.Error("results past the exhausted budget must be dropped from the context")
	}
	if len(citations) != 2 {
		t.Fatalf("citations = %d, want 2 (truncated chunk still cited)", len(citations))
	}
	// The truncated chunk's citation carries the untruncated snippet.
	if citations[1].Text != results[1].Chunk.Text {
		t.Errorf("truncated chunk citation text = %q, want the full snippet", citations[1].Text)
	}
}

func TestAssemble_DeterministicFixture(t *testing.T) {
	// Ranked results for the query "What is machine learning?".
	results := []index.SearchResult{
		result("doc", 1, "Machine learning is a subset of AI.", 0.95),
		result("doc", 2, "Deep learning uses many layers.", 0.62),
	}

	ctx, citations := NewAssembler(20).Assemble(results)

	if len(ctx) > 20+len(TruncationMarker) {
		t.Errorf("len(context) = %d, want <= 20 plus marker", len(ctx))
	}
	if len(citations) != 1 {
		t.Fatalf("citations = %d, want exactly 1 for the top chunk", len(citations))
	}
	if citations[0].Text != "Machine learning is a subset of AI." {
		t.Errorf("citation text = %q, want the full untruncated snippet", citations[0].Text)
	}
	if citations[0].Page != 1 {
		t.Errorf("citation page = %d, want 1", citations[0].Page)
	}
}

func TestAssemble_TinyBudgetNoMarker(t *testing.T) {
	// With 3 or fewer characters of space there is no room for a marker.
	results := []index.SearchResult{result("d", 1, "Some chunk.", 0.5)}

	ctx, citations := NewAssembler(2).Assemble(results)
	if len(ctx) != 2 {
		t.Errorf("len(context) = %d, want 2", len(ctx))
	}
	if strings.Contains(ctx, TruncationMarker) {
		t.Error("marker should be omitted when remaining space is smaller than it")
	}
	if len(citations) != 1 {
		t.Errorf("citations = %d, want 1", len(citations))
	}
}

func TestAssemble_SnippetCap(t *testing.T) {
	long := strings.Repeat("x", SnippetMaxLength+200)
	results := []index.SearchResult{result("d", 1, long, 0.5)}

	_, citations := NewAssembler(5000).Assemble(results)
	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(citations))
	}
	if len(citations[0].Text) != SnippetMaxLength {
		t.Errorf("snippet length = %d, want cap %d", len(citations[0].Text), SnippetMaxLength)
	}
}

func TestAssemble_MultibyteBoundaries(t *testing.T) {
	// The budget cut lands inside a two-byte rune; the truncated context
	// must still be valid UTF-8 and within the budget.
	results := []index.SearchResult{result("d", 1, strings.Repeat("é", 40), 0.9)}

	ctx, citations := NewAssembler(30).Assemble(results)
	if !utf8.ValidString(ctx) {
		t.Errorf("truncated context is not valid UTF-8: %q", ctx)
	}
	if len(ctx) > 30+len(TruncationMarker) {
		t.Errorf("len(context) = %d, want <= 30 plus marker", len(ctx))
	}
	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(citations))
	}

	// Same for the snippet cap.
	long := strings.Repeat("ü", SnippetMaxLength)
	_, citations = NewAssembler(5000).Assemble([]index.SearchResult{result("d", 1, long, 0.5)})
	if !utf8.ValidString(citations[0].Text) {
		t.Errorf("capped snippet is not valid UTF-8")
	}
	if len(citations[0].Text) > SnippetMaxLength {
		t.Errorf("snippet length = %d, want <= cap %d", len(citations[0].Text), SnippetMaxLength)
	}
}

func TestNewAssembler_NormalizesBudget(t *testing.T) {
	a := NewAssembler(0)
	if a.maxContextLength != 1 {
		t.Errorf("maxContextLength = %d, want 1", a.maxContextLength)
	}
}
