// Package pdf extracts per-page text from source documents.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docbuddy/docbuddy/internal/document"
)

// ExtractPages extracts the plain text of every page of a PDF, in
// order. Pages that yield no text (scans, empty pages) produce empty
// strings so later pages keep their correct page numbers.
func ExtractPages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Extraction failures on single pages are not fatal; the
			// page just contributes no text.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return pages, nil
}

// ReadDocument loads a source file as a document. PDF files are split
// into per-page texts; anything else is read whole as a single page.
func ReadDocument(path string) (*document.Document, error) {
	name := filepath.Base(path)

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, err := ExtractPages(path)
		if err != nil {
			return nil, err
		}
		return document.New(name, pages), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return document.New(name, []string{strings.TrimSpace(string(data))}), nil
}
