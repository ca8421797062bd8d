package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "nested", "daystreak.db"))
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProviderContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return newTestStore(t)
	})
}

func TestInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.SaveHabit(ctx, storagetest.Habit("h1", "alice", "Read")))

	require.NoError(t, s.Init(ctx))

	habits, err := s.LoadHabits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, habits, 1)
}

func TestLoadRequiresInit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.db"))
	err := s.Load(context.Background())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "daystreak init"))
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "daystreak.db")

	first := New(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveHabit(ctx, storagetest.Habit("h1", "alice", "Read")))
	_, err := first.AppendCompletion(ctx, storagetest.Completion("h1", "2024-01-02"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := New(path)
	require.NoError(t, second.Load(ctx))
	t.Cleanup(func() { _ = second.Close() })

	h, err := second.GetHabit(ctx, "alice", "h1")
	require.NoError(t, err)
	require.Equal(t, "Read", h.Name)
	require.NotNil(t, second.GetDB())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "daystreak.db")

	s := New(path)
	require.NoError(t, s.Init(ctx))
	_, err := s.GetDB().Exec("UPDATE schema_version SET version = 999")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = New(path).Load(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "newer than supported")
}
