// Package credstore persists the client's bearer token and cached identity
// snapshot across process restarts.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Persisted keys. The three are written together and deleted together.
const (
	KeyAccessToken   = "access_token"
	KeyAuthenticated = "isAuthenticated"
	KeyUser          = "user"
)

// SessionKeys lists every key owned by a session.
var SessionKeys = []string{KeyAccessToken, KeyAuthenticated, KeyUser}

// ErrUnsupportedDSN is returned by Open for a DSN whose scheme has no backend.
var ErrUnsupportedDSN = errors.New("unsupported credential store DSN")

// Store is a durable key-value store. No atomicity across keys is assumed.
//
// Get reports ok=false when the key is absent. Delete of an absent key is not
// an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Closer is implemented by stores holding a connection.
type Closer interface {
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// DetectBackend determines the backend from a DSN string.
//
//	""                   default credentials file
//	/path, file:/path    JSON file
//	memory:              process-local map
//	redis://, rediss://  redis
//	sqlite:/path         sqlite database
func DetectBackend(dsn string) (Backend, error) {
	switch {
	case dsn == "", strings.HasPrefix(dsn, "file:"):
		return BackendFile, nil
	case dsn == "memory:" || dsn == "memory":
		return BackendMemory, nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return BackendRedis, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return BackendSQLite, nil
	case strings.Contains(dsn, "://"):
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDSN, dsn)
	default:
		return BackendFile, nil
	}
}

// Open creates the Store described by dsn.
func Open(ctx context.Context, dsn string) (Store, error) {
	backend, err := DetectBackend(dsn)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return OpenRedisStore(ctx, dsn)
	case BackendSQLite:
		return OpenSQLiteStore(ctx, strings.TrimPrefix(dsn, "sqlite:"))
	default:
		path := strings.TrimPrefix(dsn, "file:")
		if path == "" {
			path, err = DefaultPath()
			if err != nil {
				return nil, err
			}
		}
		return NewFileStore(path)
	}
}

// DefaultPath returns ~/.shopctl/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".shopctl", "credentials.json"), nil
}

// Close releases the store's connection, if any.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
