package pdfquiz

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// SQLStore is a KVStore backed by a single table in sqlite or postgres
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// OpenSQLite opens (or creates) a sqlite database file
func OpenSQLite(path string) (*SQLStore, error) {
	return openSQLStore("sqlite3", path, false)
}

// OpenPostgres connects to a postgres database through pgx
func OpenPostgres(dsn string) (*SQLStore, error) {
	return openSQLStore("pgx", dsn, true)
}

func openSQLStore(driver, dsn string, postgres bool) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, postgres: postgres}
	if err := s.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// CreateTables creates the key-value table if it doesn't exist
func (s *SQLStore) CreateTables() error {
	query := `CREATE TABLE IF NOT EXISTS kv_records (
		record_key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute %s: %w", query, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Get retrieves a record by key
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT value FROM kv_records WHERE record_key = ?"), key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites a record
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO kv_records (record_key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(record_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"),
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

// Delete removes a record; a missing key is not an error
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM kv_records WHERE record_key = ?"), key); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
