package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A :memory: database is private to its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// GetPreference returns the stored value for key and whether it exists.
func (s *SQLiteStore) GetPreference(
	ctx context.Context,
	key string,
) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM preferences WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting preference %q: %w", key, err)
	}
	return value, true, nil
}

// SetPreference inserts or replaces a preference value.
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting preference %q: %w", key, err)
	}
	return nil
}

// DeletePreference removes a preference. Missing keys are ignored.
func (s *SQLiteStore) DeletePreference(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}

// SaveCookies persists cookies received from origin. Session cookies are
// kept in memory only; expired or deleted cookies remove the stored row.
func (s *SQLiteStore) SaveCookies(
	ctx context.Context,
	origin string,
	cookies []*http.Cookie,
) error {
	if len(cookies) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}

		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM cookies WHERE origin = ? AND name = ? AND path = ?",
				origin, c.Name, path); err != nil {
				return fmt.Errorf("deleting cookie %s: %w", c.Name, err)
			}
			continue
		}
		if expires.IsZero() {
			continue
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO cookies (
				id, origin, name, value, path, domain,
				expires, secure, http_only, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(origin, name, path) DO UPDATE SET
				value = excluded.value,
				domain = excluded.domain,
				expires = excluded.expires,
				secure = excluded.secure,
				http_only = excluded.http_only,
				updated_at = excluded.updated_at`,
			uuid.New().String(), origin, c.Name, c.Value, path, c.Domain,
			expires.UTC(), boolToInt(c.Secure), boolToInt(c.HttpOnly), now,
		)
		if err != nil {
			return fmt.Errorf("saving cookie %s: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

// LoadCookies returns every unexpired persisted cookie.
func (s *SQLiteStore) LoadCookies(ctx context.Context) ([]StoredCookie, error) {
	var rows []StoredCookie
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, origin, name, value, path, domain, expires, secure, http_only
		FROM cookies
		ORDER BY origin, name`)
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}

	now := time.Now()
	cookies := rows[:0]
	for _, c := range rows {
		if c.Expires.After(now) {
			cookies = append(cookies, c)
		}
	}
	return cookies, nil
}

// DeleteCookies removes all cookies stored for origin.
func (s *SQLiteStore) DeleteCookies(ctx context.Context, origin string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM cookies WHERE origin = ?", origin); err != nil {
		return fmt.Errorf("deleting cookies for %s: %w", origin, err)
	}
	return nil
}

// boolToInt converts a Go bool to SQLite integer (0 or 1).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
