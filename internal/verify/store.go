package verify

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/torclang/torc/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// ProofStore persists proof witnesses across verification runs.
// Uses SQLite with WAL mode for concurrent read access.
//
// The store is an opt-in complement to the in-memory ProofCache: the
// engine consults it on cache misses and writes back newly generated
// witnesses, so repeated runs over an unchanged graph skip re-proving.
type ProofStore struct {
	db *sql.DB
}

// OpenStore creates or opens a SQLite proof store at the given path.
// Applies required pragmas and the schema automatically; safe to call
// multiple times.
func OpenStore(path string) (*ProofStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open proof store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to proof store: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply proof store schema: %w", err)
	}

	return &ProofStore{db: db}, nil
}

// Close closes the database connection.
func (s *ProofStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the stored witness for an obligation hash, or false
// if none exists.
func (s *ProofStore) Lookup(ctx context.Context, obligationHash string) (*ir.ProofWitness, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT witness_hash, solver, data FROM proofs WHERE obligation_hash = ?`,
		obligationHash)

	var w ir.ProofWitness
	if err := row.Scan(&w.Hash, &w.Solver, &w.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up proof: %w", err)
	}
	return &w, true, nil
}

// Store upserts a witness for an obligation hash.
func (s *ProofStore) Store(ctx context.Context, obligationHash string, w ir.ProofWitness) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO proofs (obligation_hash, witness_hash, solver, data, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(obligation_hash) DO UPDATE SET
		   witness_hash = excluded.witness_hash,
		   solver = excluded.solver,
		   data = excluded.data,
		   created_at = excluded.created_at`,
		obligationHash, w.Hash, w.Solver, w.Data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store proof: %w", err)
	}
	return nil
}

// Invalidate removes a stored proof by obligation hash.
func (s *ProofStore) Invalidate(ctx context.Context, obligationHash string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM proofs WHERE obligation_hash = ?`, obligationHash)
	if err != nil {
		return fmt.Errorf("failed to invalidate proof: %w", err)
	}
	return nil
}

// Count returns the number of stored proofs.
func (s *ProofStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proofs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count proofs: %w", err)
	}
	return n, nil
}
