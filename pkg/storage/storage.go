package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sw33tLie/shopscope/internal/utils"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("key not found")

// DB is a small key/value store playing the role of the browser's local
// storage: string values under fixed keys, last write wins.
type DB struct {
	sql  *sql.DB
	lock *utils.DBLock
	now  func() time.Time
}

func Open(path string) (*DB, error) {
	absPath, err := utils.GetAbsDBPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	dsn := "file:" + absPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS local_storage (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		db.Close()
		return nil, err
	}

	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db, lock: lock, now: time.Now}, nil
}

// WithClock replaces the clock used for timestamps and TTL checks.
func (d *DB) WithClock(now func() time.Time) *DB {
	d.now = now
	return d
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := d.sql.QueryRowContext(ctx, "SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (d *DB) Set(ctx context.Context, key, value string) error {
	return d.lock.Do(ctx, func() error {
		_, err := d.sql.ExecContext(ctx, `INSERT INTO local_storage(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value, d.now().UTC())
		return err
	})
}

func (d *DB) Delete(ctx context.Context, key string) error {
	return d.lock.Do(ctx, func() error {
		_, err := d.sql.ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", key)
		return err
	})
}

// KeyInfo describes one stored entry.
type KeyInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// ListKeys returns every stored key with its size, newest first.
func (d *DB) ListKeys(ctx context.Context) ([]KeyInfo, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT key, length(value), updated_at FROM local_storage ORDER BY updated_at DESC, key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KeyInfo
	for rows.Next() {
		var k KeyInfo
		var updated sql.NullString
		if err := rows.Scan(&k.Key, &k.Size, &updated); err != nil {
			return nil, err
		}
		k.UpdatedAt = parseDBTime(updated.String)
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseDBTime(s string) time.Time {
	// Parse SQLite CURRENT_TIMESTAMP format and what the driver writes for time.Time.
	for _, layout := range []string{"2006-01-02 15:04:05.999999999 -0700 MST", time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
