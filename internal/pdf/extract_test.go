package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDocument_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("  Some study notes.\nMore notes.\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if doc.Name != "notes.txt" {
		t.Errorf("Name = %q, want notes.txt", doc.Name)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("Pages = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0] != "Some study notes.\nMore notes." {
		t.Errorf("page text = %q", doc.Pages[0])
	}
}

func TestReadDocument_MissingFile(t *testing.T) {
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("ReadDocument() should fail for a missing file")
	}
}

func TestReadDocument_InvalidPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	if _, err := ReadDocument(path); err == nil {
		t.Error("ReadDocument() should fail for an invalid PDF")
	}
}
