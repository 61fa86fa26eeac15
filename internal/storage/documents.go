package storage

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/docbuddy/docbuddy/internal/chunker"
)

// DocumentRecord describes an ingested document.
type DocumentRecord struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	Pages       int    `json:"pages"`
	IngestedAt  int64  `json:"ingested_at"`
}

// EmbeddingMetadata records how a document's chunks were embedded.
type EmbeddingMetadata struct {
	Document   string `json:"document"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	ChunkCount int    `json:"chunk_count"`
	IndexedAt  int64  `json:"indexed_at"`
}

// Fingerprint computes a content fingerprint over a document's page
// texts. An unchanged fingerprint means re-ingestion can be skipped.
func Fingerprint(pages []string) string {
	h, _ := blake2b.New256(nil)
	for _, page := range pages {
		h.Write([]byte(page))
		h.Write([]byte{0}) // page boundary, so ["ab"] != ["a","b"]
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// SaveDocument upserts a document record.
func (db *DB) SaveDocument(rec DocumentRecord) error {
	if rec.IngestedAt == 0 {
		rec.IngestedAt = time.Now().Unix()
	}
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO documents (name, fingerprint, pages, ingested_at) VALUES (?, ?, ?, ?)`,
		rec.Name, rec.Fingerprint, rec.Pages, rec.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", rec.Name, err)
	}
	return nil
}

// GetDocument returns the record for a document name, or nil if the
// document has not been ingested.
func (db *DB) GetDocument(name string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := db.conn.QueryRow(
		`SELECT name, fingerprint, pages, ingested_at FROM documents WHERE name = ?`, name,
	).Scan(&rec.Name, &rec.Fingerprint, &rec.Pages, &rec.IngestedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", name, err)
	}
	return &rec, nil
}

// ListDocuments returns all ingested documents ordered by name.
func (db *DB) ListDocuments() ([]DocumentRecord, error) {
	rows, err := db.conn.Query(
		`SELECT name, fingerprint, pages, ingested_at FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.Name, &rec.Fingerprint, &rec.Pages, &rec.IngestedAt); err != nil {
			return nil, err
		}
		docs = append(docs, rec)
	}
	return docs, rows.Err()
}

// ReplaceChunks replaces the stored chunks for a document.
func (db *DB) ReplaceChunks(docName string, chunks []chunker.Chunk) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM chunks WHERE document = ?`, docName); err != nil {
		return fmt.Errorf("clearing chunks for %s: %w", docName, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO chunks (document, seq, page, start_pos, end_pos, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.Exec(docName, i, c.Page, c.StartPos, c.EndPos, c.Text); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ChunksFor returns the stored chunks for a document in sequence order.
func (db *DB) ChunksFor(docName string) ([]chunker.Chunk, error) {
	rows, err := db.conn.Query(
		`SELECT page, start_pos, end_pos, text FROM chunks WHERE document = ? ORDER BY seq`, docName)
	if err != nil {
		return nil, fmt.Errorf("reading chunks for %s: %w", docName, err)
	}
	defer rows.Close()

	var chunks []chunker.Chunk
	for rows.Next() {
		c := chunker.Chunk{Document: docName}
		if err := rows.Scan(&c.Page, &c.StartPos, &c.EndPos, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// SaveEmbeddingMetadata upserts the embedding metadata for a document.
func (db *DB) SaveEmbeddingMetadata(meta EmbeddingMetadata) error {
	if meta.IndexedAt == 0 {
		meta.IndexedAt = time.Now().Unix()
	}
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO embedding_meta (document, model, dimensions, chunk_count, indexed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		meta.Document, meta.Model, meta.Dimensions, meta.ChunkCount, meta.IndexedAt,
	)
	if err != nil {
		return fmt.Errorf("saving embedding metadata for %s: %w", meta.Document, err)
	}
	return nil
}

// GetEmbeddingMetadata returns the embedding metadata for a document,
// or nil if the document has not been indexed.
func (db *DB) GetEmbeddingMetadata(docName string) (*EmbeddingMetadata, error) {
	var meta EmbeddingMetadata
	err := db.conn.QueryRow(
		`SELECT document, model, dimensions, chunk_count, indexed_at FROM embedding_meta WHERE document = ?`,
		docName,
	).Scan(&meta.Document, &meta.Model, &meta.Dimensions, &meta.ChunkCount, &meta.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding metadata for %s: %w", docName, err)
	}
	return &meta, nil
}

// RemoveDocument deletes a document and its chunks and metadata.
func (db *DB) RemoveDocument(docName string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM chunks WHERE document = ?`,
		`DELETE FROM embedding_meta WHERE document = ?`,
		`DELETE FROM documents WHERE name = ?`,
	} {
		if _, err := tx.Exec(stmt, docName); err != nil {
			return fmt.Errorf("removing document %s: %w", docName, err)
		}
	}
	return tx.Commit()
}
