// Package sqlite implements the storage ports on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath selects a process-local in-memory database instead of a file.
const MemoryPath = ":memory:"

const (
	busyTimeoutMillis = 5000
	maxReaders        = 4
)

// DB holds one writer connection and a small reader pool on the same
// database. All writes go through the single writer, so SQLite never reports
// "database is locked" between our own connections.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the database file at dbPath in WAL mode, creating the parent
// directory if needed. MemoryPath opens an in-memory database.
func NewDB(dbPath string) (*DB, error) {
	if dbPath == MemoryPath {
		return NewMemoryDB("tootgroup")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-16000)",
		dbPath, busyTimeoutMillis,
	)
	return open(dsn, dbPath)
}

// NewMemoryDB opens a named in-memory database. Writer and readers share it
// through cache=shared; distinct names are isolated from each other. The
// data lives until the last connection closes.
func NewMemoryDB(name string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(%d)",
		url.PathEscape(name), busyTimeoutMillis,
	)
	return open(dsn, MemoryPath)
}

func open(dsn, path string) (*DB, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(maxReaders)
	if err := reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

// Path returns the database file, or MemoryPath.
func (db *DB) Path() string {
	return db.path
}

// Close closes the reader pool, then the writer, and returns the first error.
func (db *DB) Close() error {
	var firstErr error
	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}
	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}
	return firstErr
}
