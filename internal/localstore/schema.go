// Package localstore persists dashboard state in SQLite and announces
// changes to other processes through a watched signal directory.
package localstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/careerlift/internal/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is the local key/value store.
type Store struct {
	conn    *sql.DB
	signals storage.Provider
}

// Open opens (or creates) the SQLite database at dsn and the signal
// directory at signalDir.
func Open(dsn, signalDir string) (*Store, error) {
	signals, err := storage.NewFS(signalDir)
	if err != nil {
		return nil, fmt.Errorf("localstore: signal dir: %w", err)
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("localstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("localstore: apply schema: %w", err)
	}
	return &Store{conn: conn, signals: signals}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Signals returns the provider backing the signal directory.
func (s *Store) Signals() storage.Provider {
	return s.signals
}
