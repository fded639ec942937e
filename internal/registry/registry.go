// Package registry is a process-wide cache of plugin descriptions
// (backend.Info), keyed by the plugin's on-disk path. Probing a plugin
// binary (loading it just far enough to read name/vendor/category/
// parameter list) is a worker-thread, filesystem-touching operation.
// host.Instance.Open stores each loaded plugin's description here; it does
// not consult the cache before loading, so every Open still runs its Loader.
//
// Grounded directly on server/internal/store/store.go: sql.Open("sqlite",
// path), an idempotent CREATE TABLE IF NOT EXISTS migration run once at
// Open, and context-scoped query/exec methods wrapping %w-wrapped errors.
// The in-memory half (an RWMutex-guarded map consulted before the database)
// has no direct teacher analogue — store.go always hits SQLite — but is the
// natural complement for a cache that many host.Instance goroutines read
// concurrently far more often than they write.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"pluginhost/internal/backend"
)

// ErrNotFound is returned when no description is cached for a path.
var ErrNotFound = errors.New("registry: plugin description not found")

// Registry caches backend.Info by plugin path. The in-memory map is always
// present; the SQLite-backed persistence layer is optional (nil db means
// memory-only, e.g. for tests).
type Registry struct {
	mu    sync.RWMutex
	cache map[string]backend.Info

	db *sql.DB
}

// NewMemory returns a Registry with no persistent backing store.
func NewMemory() *Registry {
	return &Registry{cache: make(map[string]backend.Info)}
}

// Open opens (or creates) a SQLite-backed Registry at path, loading any
// previously cached descriptions into memory.
func Open(path string) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("registry: database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("registry: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: open sqlite database: %w", err)
	}

	r := &Registry{cache: make(map[string]backend.Info), db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := r.preload(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("plugin registry opened", "path", path, "entries", len(r.cache))
	return r, nil
}

// Close releases the underlying database connection, if any.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Registry) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS plugin_descriptions (
	path TEXT PRIMARY KEY,
	info_json TEXT NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("registry: run sqlite migrations: %w", err)
	}
	return nil
}

func (r *Registry) preload(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `SELECT path, info_json FROM plugin_descriptions`)
	if err != nil {
		return fmt.Errorf("registry: query plugin descriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path, infoJSON string
		if err := rows.Scan(&path, &infoJSON); err != nil {
			return fmt.Errorf("registry: scan plugin description: %w", err)
		}
		var info backend.Info
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			slog.Warn("registry: dropping unreadable cached description", "path", path, "error", err)
			continue
		}
		r.cache[path] = info
	}
	return rows.Err()
}

// Get returns the cached description for path from the in-memory cache
// (which Open preloads from the database); it never queries the database.
func (r *Registry) Get(path string) (backend.Info, bool) {
	r.mu.RLock()
	info, ok := r.cache[path]
	r.mu.RUnlock()
	return info, ok
}

// GetErr is Get with ErrNotFound in place of a bool, for callers that want
// to %w-wrap a miss into their own error chain.
func (r *Registry) GetErr(path string) (backend.Info, error) {
	info, ok := r.Get(path)
	if !ok {
		return backend.Info{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return info, nil
}

// Put caches info for path, in memory and (if a database is attached) on
// disk. A failed disk write still leaves the in-memory cache updated —
// losing the persistent copy is not worth failing an Open that already
// succeeded against the plugin itself.
func (r *Registry) Put(ctx context.Context, path string, info backend.Info) error {
	r.mu.Lock()
	r.cache[path] = info
	r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	buf, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("registry: marshal plugin description: %w", err)
	}
	const q = `INSERT INTO plugin_descriptions (path, info_json) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET info_json = excluded.info_json`
	if _, err := r.db.ExecContext(ctx, q, path, string(buf)); err != nil {
		slog.Warn("registry: failed to persist plugin description", "path", path, "error", err)
		return fmt.Errorf("registry: persist plugin description: %w", err)
	}
	return nil
}

// Forget drops path from both the in-memory cache and the database, e.g.
// after a probe reveals the on-disk binary no longer matches what was
// cached.
func (r *Registry) Forget(ctx context.Context, path string) error {
	r.mu.Lock()
	delete(r.cache, path)
	r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plugin_descriptions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("registry: delete plugin description: %w", err)
	}
	return nil
}
