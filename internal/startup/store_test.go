package startup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/storage"
	"github.com/sololeveling/internal/storage/file"
	"github.com/sololeveling/internal/storage/memory"
)

func TestOpenStoreMemory(t *testing.T) {
	st, err := OpenStore(context.Background(), config.StorageConfig{Backend: "memory"}, time.Second, "test: ")
	require.NoError(t, err)
	assert.IsType(t, &memory.Client{}, st)
}

func TestOpenStoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	st, err := OpenStore(context.Background(), config.StorageConfig{Backend: "file", FilePath: path}, time.Second, "test: ")
	require.NoError(t, err)
	fc, ok := st.(*file.Client)
	require.True(t, ok)
	assert.Equal(t, path, fc.Path())
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StorageConfig{Backend: "etcd"}, time.Second, "test: ")
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
}

func TestOpenStoreRedisGivesUpAfterMaxWait(t *testing.T) {
	start := time.Now()
	_, err := OpenStore(context.Background(), config.StorageConfig{
		Backend:  "redis",
		RedisURL: "redis://127.0.0.1:1/0",
	}, 0, "test: ")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
