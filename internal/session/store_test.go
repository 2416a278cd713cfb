package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sololeveling/internal/model"
	"github.com/sololeveling/internal/storage"
	"github.com/sololeveling/internal/storage/file"
	"github.com/sololeveling/internal/storage/memory"
	"github.com/sololeveling/internal/testkit/stubapi"
)

func backends(t *testing.T) map[string]func() storage.Store {
	path := filepath.Join(t.TempDir(), "session.json")
	mem := memory.New()
	return map[string]func() storage.Store{
		"memory": func() storage.Store { return mem },
		"file": func() storage.Store {
			fc, err := file.New(path)
			require.NoError(t, err)
			return fc
		},
	}
}

func TestRestoreEmptyStorage(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(open())
			got, err := s.Restore(context.Background())
			require.NoError(t, err)
			assert.True(t, got.Empty())
			assert.False(t, s.Authenticated())
			assert.Empty(t, s.Token())
		})
	}
}

func TestSetSurvivesReload(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, New(open()).Set(ctx, "t1", "u1"))

			reloaded := New(open())
			got, err := reloaded.Restore(ctx)
			require.NoError(t, err)
			assert.Equal(t, model.Session{Token: "t1", UserID: "u1"}, got)
			assert.Equal(t, "t1", reloaded.Token())
			assert.Equal(t, "u1", reloaded.UserID())
			assert.True(t, reloaded.Authenticated())
		})
	}
}

func TestClearThenRestoreIsEmpty(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(open())
			require.NoError(t, s.Set(ctx, "t1", "u1"))
			require.NoError(t, s.Clear(ctx))
			assert.True(t, s.Current().Empty())

			got, err := New(open()).Restore(ctx)
			require.NoError(t, err)
			assert.True(t, got.Empty())
		})
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := New(memory.New())
	require.NoError(t, s.Clear(context.Background()))
	require.NoError(t, s.Clear(context.Background()))
	assert.True(t, s.Current().Empty())
}

func TestSetRejectsPartialSession(t *testing.T) {
	mem := memory.New()
	s := New(mem)
	assert.ErrorIs(t, s.Set(context.Background(), "t1", ""), ErrIncompleteSession)
	assert.ErrorIs(t, s.Set(context.Background(), "", "u1"), ErrIncompleteSession)
	assert.Zero(t, mem.Len())
	assert.True(t, s.Current().Empty())
}

func TestRestoreHalfPairIsEmpty(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.SetMany(context.Background(), map[string]string{TokenKey: "orphan"}))

	got, err := New(mem).Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestPrefixIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	a := New(mem, WithPrefix("browser:a:"))
	b := New(mem, WithPrefix("browser:b:"))
	require.NoError(t, a.Set(ctx, "ta", "ua"))

	got, err := b.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, got.Empty())

	v, ok, err := mem.Get(ctx, "browser:a:"+TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ta", v)
}

type failingStore struct {
	storage.Store
	err error
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.err
}

func (f failingStore) SetMany(ctx context.Context, values map[string]string) error { return f.err }

func (f failingStore) Delete(ctx context.Context, keys ...string) error { return f.err }

func TestBackendFailureKeepsMemoryConsistent(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	mem := memory.New()
	s := New(mem)
	require.NoError(t, s.Set(ctx, "t1", "u1"))

	s.backend = failingStore{Store: mem, err: boom}
	err := s.Set(ctx, "t2", "u2")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, model.Session{Token: "t1", UserID: "u1"}, s.Current(), "failed write must not be observable")

	_, err = s.Restore(ctx)
	require.ErrorIs(t, err, boom)
	assert.True(t, s.Current().Empty())
}

func TestClearFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("read-only filesystem")
	mem := memory.New()
	s := New(mem)
	require.NoError(t, s.Set(ctx, "t1", "u1"))

	s.backend = failingStore{Store: mem, err: boom}
	require.ErrorIs(t, s.Clear(ctx), boom)
	assert.Equal(t, model.Session{Token: "t1", UserID: "u1"}, s.Current())

	s.backend = mem
	got, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Current(), got, "memory and storage agree after a failed clear")
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := stubapi.Token(t, "u1", exp)

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Second)))

	_, err = ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
