package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS session_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore keeps the session as two rows of a key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, storeErr("sqlite", "open", fmt.Errorf("database path is required"))
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, storeErr("sqlite", "open", fmt.Errorf("create database directory: %w", err))
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr("sqlite", "open", fmt.Errorf("open sqlite db: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, storeErr("sqlite", "open", fmt.Errorf("ping sqlite db: %w", err))
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, storeErr("sqlite", "open", fmt.Errorf("create schema: %w", err))
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Set upserts both rows in one transaction.
func (s *SQLiteStore) Set(ctx context.Context, sess Session) error {
	if err := sess.Validate(); err != nil {
		return storeErr("sqlite", "set", err)
	}
	admin, err := json.Marshal(sess.Admin)
	if err != nil {
		return storeErr("sqlite", "set", fmt.Errorf("marshal admin: %w", err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("sqlite", "set", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const upsert = `INSERT INTO session_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, upsert, KeyToken, sess.Token); err != nil {
		return storeErr("sqlite", "set", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, KeyAdmin, string(admin)); err != nil {
		return storeErr("sqlite", "set", err)
	}
	return storeErr("sqlite", "set", tx.Commit())
}

// Get reads the token and admin rows.
func (s *SQLiteStore) Get(ctx context.Context) (Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session_kv WHERE key IN (?, ?)`, KeyToken, KeyAdmin)
	if err != nil {
		return Session{}, storeErr("sqlite", "get", err)
	}
	defer rows.Close()

	var sess Session
	var adminRaw string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Session{}, storeErr("sqlite", "get", err)
		}
		switch key {
		case KeyToken:
			sess.Token = value
		case KeyAdmin:
			adminRaw = value
		}
	}
	if err := rows.Err(); err != nil {
		return Session{}, storeErr("sqlite", "get", err)
	}

	if sess.Token == "" {
		return Session{}, ErrNoSession
	}
	if adminRaw != "" {
		if err := json.Unmarshal([]byte(adminRaw), &sess.Admin); err != nil {
			return Session{}, storeErr("sqlite", "get", errors.Join(ErrCorrupt, err))
		}
	}
	return sess, nil
}

// Clear deletes both rows.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE key IN (?, ?)`, KeyToken, KeyAdmin)
	return storeErr("sqlite", "clear", err)
}

var _ Store = (*SQLiteStore)(nil)
