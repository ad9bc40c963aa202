// Package store persists a receipt for every signed payload the server
// issues, backing the retention contract: an article id referenced by an
// issued payload must stay resolvable for the retention window.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ResponseReceipt records one issued payload.
type ResponseReceipt struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	BodyHash  string    `json:"body_hash"`
	KeyID     string    `json:"key_id"`
	Signed    bool      `json:"signed"`
	CreatedAt time.Time `json:"created_at"`
}

// ReceiptStore is a sqlite-backed receipt log.
type ReceiptStore struct {
	db *sql.DB
}

// OpenReceiptStore opens (or creates) the receipt database at path.
// Use ":memory:" for tests.
func OpenReceiptStore(path string) (*ReceiptStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open receipt db %q: %w", path, err)
	}
	s := &ReceiptStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ReceiptStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS response_receipts (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		body_hash TEXT NOT NULL,
		key_id TEXT NOT NULL DEFAULT '',
		signed INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_response_receipts_tool ON response_receipts(tool);`
	_, err := s.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("migrate receipt db: %w", err)
	}
	return nil
}

// Record inserts one receipt.
func (s *ReceiptStore) Record(ctx context.Context, r ResponseReceipt) error {
	query := `INSERT INTO response_receipts (id, tool, body_hash, key_id, signed, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Tool, r.BodyHash, r.KeyID, r.Signed, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// Get fetches a receipt by payload id.
func (s *ReceiptStore) Get(ctx context.Context, id string) (*ResponseReceipt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tool, body_hash, key_id, signed, created_at FROM response_receipts WHERE id = ?`, id)
	return scanReceipt(row)
}

// ListByTool returns the newest receipts for one tool.
func (s *ReceiptStore) ListByTool(ctx context.Context, tool string, limit int) ([]ResponseReceipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, body_hash, key_id, signed, created_at
		FROM response_receipts WHERE tool = ? ORDER BY created_at DESC LIMIT ?`, tool, limit)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var receipts []ResponseReceipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return receipts, nil
}

func (s *ReceiptStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*ResponseReceipt, error) {
	var r ResponseReceipt
	var created string
	if err := row.Scan(&r.ID, &r.Tool, &r.BodyHash, &r.KeyID, &r.Signed, &created); err != nil {
		return nil, fmt.Errorf("scan receipt: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse receipt timestamp: %w", err)
	}
	r.CreatedAt = ts
	return &r, nil
}
