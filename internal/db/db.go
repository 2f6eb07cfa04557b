package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
)

// DSN builds the go-sqlite3 connection string for a database file.
// Transactions start IMMEDIATE so a writer holds the write lock from BEGIN,
// and a busy timeout makes concurrent writers queue instead of failing.
func DSN(path string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")
	q.Set("_txlock", "immediate")
	q.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if needed) the database at path and initializes the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return conn, nil
}

// GetDB returns the process-wide database connection for path, opening it on first use.
func GetDB(path string) (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		if path != dbPath {
			return nil, fmt.Errorf("database already open at %s", dbPath)
		}
		return db, nil
	}

	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	db, dbPath = conn, path
	return db, nil
}

// Close closes the database connection
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if db != nil {
		err := db.Close()
		db, dbPath = nil, ""
		return err
	}
	return nil
}
