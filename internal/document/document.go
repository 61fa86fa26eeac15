// Package document models an ingested document and its page structure.
package document

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyDocument indicates the document contains no usable text.
// Callers should abort ingestion rather than build an index from it.
var ErrEmptyDocument = errors.New("document contains no extractable text")

// PageSeparator joins consecutive page texts in the flattened document.
const PageSeparator = "\n\n"

// Document is an ingested source document: a name and its page texts in
// reading order. It is immutable once constructed.
type Document struct {
	Name  string
	Pages []string
}

// New creates a document from per-page texts.
func New(name string, pages []string) *Document {
	return &Document{Name: name, Pages: pages}
}

// PageMap maps character offsets in the flattened text to 1-based page
// numbers. It is built once by Flatten and never mutated.
type PageMap struct {
	// starts[i] is the flattened-text offset of the first character of
	// page i+1. Separator offsets fall before the next start and are
	// therefore attributed to the preceding page.
	starts []int
	length int
}

// PageOf returns the page number for a flattened-text offset.
// Out-of-range offsets are clamped; an empty map returns page 1.
func (pm *PageMap) PageOf(offset int) int {
	if pm == nil || len(pm.starts) == 0 {
		return 1
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= pm.length {
		offset = pm.length - 1
	}
	// Last page whose start is <= offset.
	i := sort.Search(len(pm.starts), func(i int) bool {
		return pm.starts[i] > offset
	})
	if i == 0 {
		return 1
	}
	return i
}

// Len returns the length of the flattened text the map covers.
func (pm *PageMap) Len() int {
	if pm == nil {
		return 0
	}
	return pm.length
}

// PageCount returns the number of pages in the map.
func (pm *PageMap) PageCount() int {
	if pm == nil {
		return 0
	}
	return len(pm.starts)
}

// Flatten concatenates the page texts in order, joined by PageSeparator,
// and builds the offset-to-page map for the result. Returns
// ErrEmptyDocument if the flattened text is empty or whitespace-only.
func (d *Document) Flatten() (string, *PageMap, error) {
	text := strings.Join(d.Pages, PageSeparator)
	if strings.TrimSpace(text) == "" {
		return "", &PageMap{}, ErrEmptyDocument
	}

	pm := &PageMap{
		starts: make([]int, len(d.Pages)),
		length: len(text),
	}
	pos := 0
	for i, page := range d.Pages {
		pm.starts[i] = pos
		pos += len(page) + len(PageSeparator)
	}
	return text, pm, nil
}
