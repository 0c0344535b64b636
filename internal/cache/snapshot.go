package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Snapshot is durable cross-session storage for cache contents, backed
// by SQLite. It is strictly an optional collaborator: a cache's
// in-memory behavior is unchanged when no snapshot is attached, and a
// missing or empty snapshot file is not an error.
type Snapshot struct {
	db *sql.DB
}

// OpenSnapshot creates or opens a snapshot database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// multiple times.
func OpenSnapshot(path string) (*Snapshot, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to snapshot database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
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
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}

	return &Snapshot{db: db}, nil
}

// Close closes the snapshot database.
func (s *Snapshot) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the cache's live entries under name, replacing any
// previously saved contents for that name. Payloads are stored as JSON.
func Save[V any](ctx context.Context, s *Snapshot, name string, c *Cache[V]) error {
	entries := c.Export()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ?`, name); err != nil {
		return fmt.Errorf("clear previous snapshot %q: %w", name, err)
	}

	for _, e := range entries {
		payload, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("marshal snapshot entry %q: %w", e.Key, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cache_entries (cache_name, key, payload, inserted_at) VALUES (?, ?, ?, ?)`,
			name, e.Key, payload, e.InsertedAt.Unix())
		if err != nil {
			return fmt.Errorf("write snapshot entry %q: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}

// Load restores entries saved under name into the cache. Entries whose
// TTL has elapsed since their original insertion are dropped on the way
// in. A name with no saved entries restores an empty cache.
func Load[V any](ctx context.Context, s *Snapshot, name string, c *Cache[V]) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, payload, inserted_at FROM cache_entries WHERE cache_name = ? ORDER BY inserted_at, key`,
		name)
	if err != nil {
		return fmt.Errorf("read snapshot %q: %w", name, err)
	}
	defer rows.Close()

	var entries []Entry[V]
	for rows.Next() {
		var (
			key        string
			payload    []byte
			insertedAt int64
		)
		if err := rows.Scan(&key, &payload, &insertedAt); err != nil {
			return fmt.Errorf("scan snapshot entry: %w", err)
		}
		var value V
		if err := json.Unmarshal(payload, &value); err != nil {
			return fmt.Errorf("unmarshal snapshot entry %q: %w", key, err)
		}
		entries = append(entries, Entry[V]{
			Key:        key,
			Value:      value,
			InsertedAt: time.Unix(insertedAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate snapshot %q: %w", name, err)
	}

	c.Restore(entries)
	return nil
}
