package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/checksum"
	"github.com/starford/careerlift/internal/models"
)

// Well-known keys.
const (
	KeyLastResume    = "careerlift:lastResume"
	KeyResumeUpdated = "careerlift:resume-updated"
)

// Signal is the payload written to the signal directory.
type Signal struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}

var signalNamer = strings.NewReplacer(":", "_", "/", "_")

// SignalFile returns the signal directory file name for key.
func SignalFile(key string) string {
	return signalNamer.Replace(key)
}

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put stores value under key. It reports false and leaves the row untouched
// when the stored value is already identical.
func (s *Store) Put(ctx context.Context, key string, value []byte) (bool, error) {
	sum := checksum.Sum(value)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("localstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var current string
	err = tx.QueryRowContext(ctx, `SELECT checksum FROM kv WHERE key = ?`, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("localstore: read checksum: %w", err)
	}
	if current == sum {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, key, string(value), sum, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("localstore: put %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("localstore: commit: %w", err)
	}
	return true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value under key into v.
func (s *Store) GetJSON(ctx context.Context, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("localstore: decode %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and stores it under key.
func (s *Store) PutJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("localstore: encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// Signal records the current time under key and writes a signal file so
// that watchers in other processes notice the change.
func (s *Store) Signal(ctx context.Context, key string) error {
	sig := Signal{Key: key, At: time.Now().UTC()}
	if _, err := s.Put(ctx, key, []byte(sig.At.Format(time.RFC3339Nano))); err != nil {
		return err
	}
	raw, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("localstore: encode signal: %w", err)
	}
	if err := s.signals.Write(SignalFile(key), raw); err != nil {
		return fmt.Errorf("localstore: write signal: %w", err)
	}
	return nil
}

// LastResume returns the cached copy of the most recently viewed resume.
func (s *Store) LastResume(ctx context.Context) (*models.LastResume, error) {
	var out models.LastResume
	if err := s.GetJSON(ctx, KeyLastResume, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreLastResume replaces the cached resume.
func (s *Store) StoreLastResume(ctx context.Context, r models.LastResume) error {
	_, err := s.PutJSON(ctx, KeyLastResume, r)
	return err
}

// ClearLastResume forgets the cached resume.
func (s *Store) ClearLastResume(ctx context.Context) error {
	return s.Delete(ctx, KeyLastResume)
}

// NotifyResumeUpdated raises the resume-updated signal.
func (s *Store) NotifyResumeUpdated(ctx context.Context) error {
	return s.Signal(ctx, KeyResumeUpdated)
}
