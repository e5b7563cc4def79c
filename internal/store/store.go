// Package store persists AI-tier rate-limit buckets in libsql (local file,
// in-memory or a remote Turso database).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/aveekpatra/Domain-AI/internal/config"
)

const driverLibsql = "libsql"

// Store is an open libsql database.
type Store struct {
	DB *sql.DB
}

// Open connects to the database named by cfg and pings it.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	dsn, err := libsqlDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverLibsql, dsn)
	if err != nil {
		return nil, fmt.Errorf("open libsql store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping libsql store: %w", err)
	}

	return &Store{DB: db}, nil
}

// Close is a no-op on a nil store.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	return s.DB.PingContext(ctx)
}

// libsqlDSN turns the store config into a go-libsql DSN. A URL wins over a
// path; local file paths get their parent directory created.
func libsqlDSN(cfg config.StoreConfig) (string, error) {
	if raw := strings.TrimSpace(cfg.URL); raw != "" {
		return withAuthToken(raw, strings.TrimSpace(cfg.AuthToken))
	}

	p := strings.TrimSpace(cfg.Path)
	switch {
	case p == "":
		return "", errors.New("store path or url is required")
	case p == ":memory:", strings.HasPrefix(p, "libsql:"):
		return p, nil
	case strings.HasPrefix(p, "file:"):
		local := strings.TrimPrefix(strings.TrimPrefix(p, "file:"), "//")
		if q := strings.IndexByte(local, '?'); q >= 0 {
			local = local[:q]
		}
		return p, mkParent(local)
	default:
		p = filepath.Clean(p)
		return "file:" + p, mkParent(p)
	}
}

// withAuthToken adds authToken to a remote URL unless it already has one.
func withAuthToken(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}
	q := u.Query()
	if token == "" || q.Get("authToken") != "" {
		return raw, nil
	}
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func mkParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	// #nosec G301 -- the bucket database directory may be shared by operators
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}
