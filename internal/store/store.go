// SPDX-License-Identifier: Apache-2.0

// Package store keeps a queryable SQLite index of processed documents and
// their chunks.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	filename        TEXT NOT NULL,
	document_type   TEXT NOT NULL,
	type_confidence REAL NOT NULL,
	pages           INTEGER NOT NULL,
	total_chunks    INTEGER NOT NULL,
	extracted_data  TEXT,
	run_id          TEXT,
	processed_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	chunk_type  TEXT NOT NULL,
	text        TEXT NOT NULL,
	metadata    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(document_type);
`

// Store is the SQLite-backed document index.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	// a single connection serializes writers from concurrent workers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DocumentRow is one row of the documents table.
type DocumentRow struct {
	ID             string
	Filename       string
	DocumentType   clinical.DocumentType
	TypeConfidence float64
	Pages          int
	TotalChunks    int
	RunID          string
	ProcessedAt    string
}

// SaveDocument upserts rec and replaces its chunks in one transaction.
func (s *Store) SaveDocument(ctx context.Context, runID string, rec *clinical.DocumentRecord) error {
	extracted, err := json.Marshal(rec.ExtractedData)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	filename, _ := rec.Metadata[clinical.MetaFilename].(string)
	pages, _ := rec.Metadata[clinical.MetaPages].(int)
	processedAt, _ := rec.Metadata[clinical.MetaProcessedDate].(string)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, filename, document_type, type_confidence, pages, total_chunks, extracted_data, run_id, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			document_type = excluded.document_type,
			type_confidence = excluded.type_confidence,
			pages = excluded.pages,
			total_chunks = excluded.total_chunks,
			extracted_data = excluded.extracted_data,
			run_id = excluded.run_id,
			processed_at = excluded.processed_at`,
		rec.DocumentID, filename, string(rec.DocumentType), rec.TypeConfidence, pages,
		rec.TotalChunks, string(extracted), runID, processedAt)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", rec.DocumentID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, rec.DocumentID); err != nil {
		return fmt.Errorf("clear chunks %s: %w", rec.DocumentID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, chunk_index, chunk_type, text, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			chunk_index = excluded.chunk_index,
			chunk_type = excluded.chunk_type,
			text = excluded.text,
			metadata = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, group := range [][]clinical.Chunk{rec.TextChunks, rec.ImageChunks} {
		for _, c := range group {
			md, err := json.Marshal(c.Metadata)
			if err != nil {
				return fmt.Errorf("encode chunk metadata %s: %w", c.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, c.ID, rec.DocumentID, c.Index, string(c.Type), c.Text, string(md)); err != nil {
				return fmt.Errorf("insert chunk %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Document returns the indexed row for id.
func (s *Store) Document(ctx context.Context, id string) (DocumentRow, error) {
	var (
		row   DocumentRow
		dt    string
		runID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, document_type, type_confidence, pages, total_chunks, run_id, processed_at
		FROM documents WHERE id = ?`, id).
		Scan(&row.ID, &row.Filename, &dt, &row.TypeConfidence, &row.Pages, &row.TotalChunks, &runID, &row.ProcessedAt)
	if err != nil {
		return DocumentRow{}, fmt.Errorf("document %s: %w", id, err)
	}
	row.DocumentType = clinical.DocumentType(dt)
	row.RunID = runID.String
	return row, nil
}

// Chunks returns the indexed chunks of a document ordered by type and index.
func (s *Store) Chunks(ctx context.Context, documentID string) ([]clinical.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chunk_index, chunk_type, text, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_type DESC, chunk_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []clinical.Chunk
	for rows.Next() {
		var (
			c  clinical.Chunk
			ct string
			md string
		)
		if err := rows.Scan(&c.ID, &c.Index, &ct, &c.Text, &md); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Type = clinical.ChunkType(ct)
		if err := json.Unmarshal([]byte(md), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode chunk metadata %s: %w", c.ID, err)
		}
		if dt, ok := c.Metadata[clinical.MetaDocumentType].(string); ok {
			c.DocumentType = clinical.DocumentType(dt)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByType returns the number of indexed documents per type.
func (s *Store) CountByType(ctx context.Context) (map[clinical.DocumentType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_type, COUNT(*) FROM documents GROUP BY document_type`)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	out := make(map[clinical.DocumentType]int)
	for rows.Next() {
		var (
			dt string
			n  int
		)
		if err := rows.Scan(&dt, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[clinical.DocumentType(dt)] = n
	}
	return out, rows.Err()
}
