// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// =============================================================================
// SHARED CONTRACT
// =============================================================================

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileStore(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	db, err := NewSQLiteStore(filepath.Join(dir, "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"file":   file,
		"sqlite": db,
		"memory": NewMemoryStore(),
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, KeyToken)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}

			require.NoError(t, s.Set(ctx, KeyToken, "t1"))
			require.NoError(t, s.Set(ctx, KeyUser, `{"userId":"u1"}`))
			require.NoError(t, s.Set(ctx, KeyToken, "t2"))

			got, err := s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "t2", got)

			require.NoError(t, s.Delete(ctx, "never-set"))

			require.NoError(t, Clear(ctx, s))
			for _, k := range []string{KeyUser, KeyToken} {
				if _, err := s.Get(ctx, k); !errors.Is(err, ErrNotFound) {
					t.Errorf("Get(%s) after Clear error = %v, want ErrNotFound", k, err)
				}
			}
		})
	}
}

// =============================================================================
// FILE STORE
// =============================================================================

func TestFileStore_PermissionsAndCleanup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, KeyToken, "abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, Clear(ctx, s))
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "empty store must remove its file")
}

func TestFileStore_SeesExternalWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	a, _ := NewFileStore(path)
	b, _ := NewFileStore(path)

	require.NoError(t, a.Set(ctx, KeyToken, "from-a"))
	got, err := b.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "from-a", got)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	s, _ := NewFileStore(path)

	_, err := s.Get(context.Background(), KeyToken)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Set(ctx, KeyToken, "x"), context.Canceled)
}

// =============================================================================
// SEALED STORE
// =============================================================================

type reverseSealer struct{}

func (reverseSealer) Seal(p string) (string, error) { return "ENC:" + reverse(p), nil }
func (reverseSealer) Open(s string) (string, error) {
	if !strings.HasPrefix(s, "ENC:") {
		return s, nil
	}
	return reverse(strings.TrimPrefix(s, "ENC:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func TestSealedStore_SealsOnlyToken(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	s := NewSealedStore(inner, reverseSealer{})

	require.NoError(t, s.Set(ctx, KeyToken, "abc"))
	require.NoError(t, s.Set(ctx, KeyUser, "user-json"))

	raw, _ := inner.Get(ctx, KeyToken)
	assert.Equal(t, "ENC:cba", raw)
	rawUser, _ := inner.Get(ctx, KeyUser)
	assert.Equal(t, "user-json", rawUser)

	got, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{Backend: "memory", Sealer: reverseSealer{}})
	require.NoError(t, err)
	_, ok := s.(*SealedStore)
	assert.True(t, ok)

	_, err = Open(Options{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(Options{Backend: "file"})
	assert.Error(t, err, "file backend needs a path")
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatchFile_FiresOnExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	s, _ := NewFileStore(path)

	var fired atomic.Int32
	w, err := WatchFile(path, 20*time.Millisecond, func() { fired.Add(1) }, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0600))
	require.NoError(t, s.Set(context.Background(), KeyToken, "t"))

	require.Eventually(t, func() bool { return fired.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	// A burst of writes collapses into few callbacks.
	before := fired.Load()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Set(context.Background(), KeyUser, strings.Repeat("x", i)))
	}
	require.Eventually(t, func() bool { return fired.Load() > before }, 2*time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, fired.Load()-before, int32(5))
}

func TestWatchFile_CloseStopsCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	var fired atomic.Int32
	w, err := WatchFile(path, 10*time.Millisecond, func() { fired.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
