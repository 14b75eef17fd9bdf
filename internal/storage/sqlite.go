// Package storage provides SQLite-based persistence for payment receipts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/trust-snake/internal/config"
)

// Payment status values as stored in the ledger.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// ErrNotFound is returned when an update targets an unknown payment.
var ErrNotFound = errors.New("payment not found")

// Store manages the SQLite database connection for the payment ledger.
type Store struct {
	db *sql.DB
}

// Payment is one payment attempt as recorded in the ledger.
type Payment struct {
	ID        string // Attempt UUID
	ChainID   uint64
	From      string
	To        string
	AmountWei string // Decimal, smallest units
	TxHash    string // Empty until submitted
	Status    string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := config.ExpandHome(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	// Concurrent SSH sessions write through one handle.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			chain_id INTEGER NOT NULL,
			from_address TEXT NOT NULL,
			to_address TEXT NOT NULL,
			amount_wei TEXT NOT NULL,
			tx_hash TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_payments_from ON payments(from_address);
		CREATE INDEX IF NOT EXISTS idx_payments_created ON payments(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordAttempt inserts a new payment. Zero timestamps are set to now.
func (s *Store) RecordAttempt(ctx context.Context, p Payment) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments
		 (id, chain_id, from_address, to_address, amount_wei, tx_hash, status, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, int64(p.ChainID), p.From, p.To, p.AmountWei, p.TxHash, p.Status, p.Error,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record payment %s: %w", p.ID, err)
	}
	return nil
}

// UpdateAttempt stores the tx hash, status and error of an existing payment.
func (s *Store) UpdateAttempt(ctx context.Context, p Payment) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET tx_hash = ?, status = ?, error = ?, updated_at = ? WHERE id = ?`,
		p.TxHash, p.Status, p.Error, formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update payment %s: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: update %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// RecentPayments retrieves the most recent payments, newest first.
func (s *Store) RecentPayments(ctx context.Context, limit int) ([]Payment, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chain_id, from_address, to_address, amount_wei, tx_hash, status, error, created_at, updated_at
		 FROM payments
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query payments: %w", err)
	}
	return scanPayments(rows)
}

// PaymentsFrom retrieves payments sent by address, newest first.
// Addresses compare case-insensitively.
func (s *Store) PaymentsFrom(ctx context.Context, address string, limit int) ([]Payment, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chain_id, from_address, to_address, amount_wei, tx_hash, status, error, created_at, updated_at
		 FROM payments
		 WHERE lower(from_address) = lower(?)
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		address, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query payments from %s: %w", address, err)
	}
	return scanPayments(rows)
}

// CountByStatus returns how many payments have the given status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE status = ?",
		status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count payments: %w", err)
	}
	return n, nil
}

func scanPayments(rows *sql.Rows) ([]Payment, error) {
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var chainID int64
		var createdAt, updatedAt any
		if err := rows.Scan(
			&p.ID,
			&chainID,
			&p.From,
			&p.To,
			&p.AmountWei,
			&p.TxHash,
			&p.Status,
			&p.Error,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.ChainID = uint64(chainID)
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return payments, nil
}

const timeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string column values.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
