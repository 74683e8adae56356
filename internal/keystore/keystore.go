// Package keystore persists the two API credentials in a local SQLite file.
package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// Entry names.
const (
	YouTubeAPIKey = "youtube_api_key"
	GeminiAPIKey  = "gemini_api_key"
)

// ErrUnknownKey is returned for entry names other than the two above.
var ErrUnknownKey = errors.New("unknown key name")

func validName(name string) bool {
	return name == YouTubeAPIKey || name == GeminiAPIKey
}

// Store is a durable credential store. Safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath is $HOME/.go_ytlens/keys.db.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_ytlens", "keys.db")
}

// Open opens (or creates) the store at path. An empty path means DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("keystore: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("keystore: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("keystore: init schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS keys (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Get reads both entries. Absent entries come back empty.
func (s *Store) Get(ctx context.Context) (engine.Credentials, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM keys`)
	if err != nil {
		return engine.Credentials{}, fmt.Errorf("keystore: query: %w", err)
	}
	defer rows.Close()

	var c engine.Credentials
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return engine.Credentials{}, fmt.Errorf("keystore: scan: %w", err)
		}
		switch name {
		case YouTubeAPIKey:
			c.YouTubeAPIKey = value
		case GeminiAPIKey:
			c.GeminiAPIKey = value
		}
	}
	return c, rows.Err()
}

// Set stores value under name. A blank value removes the entry.
func (s *Store) Set(ctx context.Context, name, value string) error {
	if !validName(name) {
		return fmt.Errorf("keystore: %w: %q", ErrUnknownKey, name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return s.Clear(ctx, name)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keys (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		name, value, now)
	if err != nil {
		return fmt.Errorf("keystore: set %s: %w", name, err)
	}
	return nil
}

// SetAll writes the non-empty fields of c; empty fields leave entries untouched.
func (s *Store) SetAll(ctx context.Context, c engine.Credentials) error {
	if c.HasYouTube() {
		if err := s.Set(ctx, YouTubeAPIKey, c.YouTubeAPIKey); err != nil {
			return err
		}
	}
	if c.HasGemini() {
		if err := s.Set(ctx, GeminiAPIKey, c.GeminiAPIKey); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes the entry. Clearing an absent entry is not an error.
func (s *Store) Clear(ctx context.Context, name string) error {
	if !validName(name) {
		return fmt.Errorf("keystore: %w: %q", ErrUnknownKey, name)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM keys WHERE name = ?`, name); err != nil {
		return fmt.Errorf("keystore: clear %s: %w", name, err)
	}
	return nil
}

// Seed fills entries missing from storage with the non-empty fields of c.
// Stored values are never overwritten.
func (s *Store) Seed(ctx context.Context, c engine.Credentials) error {
	stored, err := s.Get(ctx)
	if err != nil {
		return err
	}
	var fill engine.Credentials
	if !stored.HasYouTube() {
		fill.YouTubeAPIKey = c.YouTubeAPIKey
	}
	if !stored.HasGemini() {
		fill.GeminiAPIKey = c.GeminiAPIKey
	}
	return s.SetAll(ctx, fill)
}
