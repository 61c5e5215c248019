package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, "test"), mr
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))
			require.NoError(t, err)
			return s
		},
		"redis": func(t *testing.T) Store {
			s, _ := newRedisTestStore(t)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "creds.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("absent key", func(t *testing.T) {
				s := newStore(t)
				v, ok, err := s.Get(ctx, KeyAccessToken)
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Empty(t, v)
			})

			t.Run("set then get", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeyAccessToken, "abc"))
				v, ok, err := s.Get(ctx, KeyAccessToken)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "abc", v)
			})

			t.Run("overwrite", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeyAccessToken, "abc"))
				require.NoError(t, s.Set(ctx, KeyAccessToken, "def"))
				v, _, err := s.Get(ctx, KeyAccessToken)
				require.NoError(t, err)
				assert.Equal(t, "def", v)
			})

			t.Run("delete many keys", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeyAccessToken, "abc"))
				require.NoError(t, s.Set(ctx, KeyAuthenticated, "true"))
				require.NoError(t, s.Set(ctx, "unrelated", "keep"))

				require.NoError(t, s.Delete(ctx, SessionKeys...))

				_, ok, err := s.Get(ctx, KeyAccessToken)
				require.NoError(t, err)
				assert.False(t, ok)
				_, ok, err = s.Get(ctx, KeyAuthenticated)
				require.NoError(t, err)
				assert.False(t, ok)
				v, ok, err := s.Get(ctx, "unrelated")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "keep", v)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Delete(ctx, SessionKeys...))
				require.NoError(t, s.Delete(ctx, SessionKeys...))
				require.NoError(t, s.Delete(ctx))
			})
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), KeyAccessToken, "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not remain")
}

func TestFileStore_RemovesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "abc"))
	require.NoError(t, s.Delete(ctx, SessionKeys...))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), KeyAccessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted credentials file")
}

func TestRedisStore_Prefix(t *testing.T) {
	s, mr := newRedisTestStore(t)
	require.NoError(t, s.Set(context.Background(), KeyAccessToken, "abc"))

	v, err := mr.Get("test:access_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newRedisTestStore(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), KeyAccessToken)
	assert.Error(t, err)
}

func TestDetectBackend(t *testing.T) {
	tests := []struct {
		dsn     string
		want    Backend
		wantErr bool
	}{
		{dsn: "", want: BackendFile},
		{dsn: "/tmp/creds.json", want: BackendFile},
		{dsn: "file:/tmp/creds.json", want: BackendFile},
		{dsn: "memory:", want: BackendMemory},
		{dsn: "redis://localhost:6379/0", want: BackendRedis},
		{dsn: "rediss://cache:6380", want: BackendRedis},
		{dsn: "sqlite:/tmp/creds.db", want: BackendSQLite},
		{dsn: "postgres://localhost/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := DetectBackend(tt.dsn)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDSN)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, "memory:")
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
		assert.NoError(t, Close(s))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.json")
		s, err := Open(ctx, "file:"+path)
		require.NoError(t, err)
		fs, ok := s.(*FileStore)
		require.True(t, ok)
		assert.Equal(t, path, fs.Path())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := Open(ctx, "redis://"+mr.Addr())
		require.NoError(t, err)
		assert.IsType(t, &RedisStore{}, s)
		assert.NoError(t, Close(s))
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "c.db"))
		require.NoError(t, err)
		assert.IsType(t, &SQLiteStore{}, s)
		assert.NoError(t, Close(s))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Open(ctx, "mysql://localhost")
		assert.ErrorIs(t, err, ErrUnsupportedDSN)
	})
}
