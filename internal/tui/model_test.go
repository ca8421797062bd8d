package tui

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/ledger"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/tui/components/habits"
)

// flakyStore fails habit loads once broken is set.
type flakyStore struct {
	storage.Provider
	broken atomic.Bool
}

func (f *flakyStore) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	if f.broken.Load() {
		return nil, apperrors.Persistence("load habits", errors.New("database is locked"))
	}
	return f.Provider.LoadHabits(ctx, ownerID)
}

func newTestLedger(t *testing.T) (*ledger.Ledger, *flakyStore) {
	t.Helper()
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "habits.json"))
	require.NoError(t, s.Init(context.Background()))
	store := &flakyStore{Provider: s}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := ledger.New(store, "owner-1", ledger.WithClock(func() time.Time { return now }), ledger.WithLocation(time.UTC))
	return l, store
}

func newTestModel(t *testing.T, names ...string) (Model, *flakyStore) {
	t.Helper()
	l, store := newTestLedger(t)
	for _, n := range names {
		_, err := l.CreateHabit(context.Background(), n, models.CategoryFitness)
		require.NoError(t, err)
	}
	m := NewModel(context.Background(), l)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, store
}

// update feeds msg to m and then any message its command produces.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch follow := cmd().(type) {
	case habits.AddHabitMsg, habits.MarkHabitMsg, habits.UnmarkHabitMsg, habits.DeleteHabitMsg:
		next, _ = m.Update(follow)
		m = next.(Model)
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelLoadsHabits(t *testing.T) {
	m, _ := newTestModel(t, "Read", "Walk")

	items := m.habitsModel.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, m.daily.TotalHabits)
	assert.Contains(t, m.View(), "Today 0/2")
}

func TestToggleMarksAndUnmarks(t *testing.T) {
	m, _ := newTestModel(t, "Read")

	m = update(t, m, keyPress("enter"))
	require.False(t, m.statusIsError, m.status)
	assert.Contains(t, m.status, "Great start!")
	item := m.habitsModel.Items()[0]
	assert.True(t, item.Done)
	assert.Equal(t, 1, item.Streak.CurrentStreak)
	assert.Equal(t, 1, m.daily.CompletedCount)

	m = update(t, m, keyPress("enter"))
	require.False(t, m.statusIsError, m.status)
	assert.Contains(t, m.status, "Unmarked Read")
	assert.False(t, m.habitsModel.Items()[0].Done)
	assert.Equal(t, 0, m.daily.CompletedCount)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, _ := newTestModel(t, "Read")

	m = update(t, m, keyPress("d"))
	require.Equal(t, StateConfirmDelete, m.state)
	assert.Contains(t, m.View(), `Delete "Read"`)

	m = update(t, m, keyPress("n"))
	assert.Equal(t, StateHabits, m.state)
	assert.Len(t, m.habitsModel.Items(), 1)

	m = update(t, m, keyPress("d"))
	m = update(t, m, keyPress("y"))
	assert.Equal(t, StateHabits, m.state)
	assert.Empty(t, m.habitsModel.Items())
	assert.Contains(t, m.status, "Deleted Read")
}

func TestRefreshFailureKeepsRows(t *testing.T) {
	m, store := newTestModel(t, "Read", "Walk")

	store.broken.Store(true)
	m = update(t, m, keyPress("r"))

	assert.True(t, m.statusIsError)
	assert.Contains(t, m.status, "database is locked")
	assert.Len(t, m.habitsModel.Items(), 2)

	store.broken.Store(false)
	m = update(t, m, keyPress("r"))
	assert.False(t, m.statusIsError)
	assert.Equal(t, "Refreshed", m.status)
}

func TestMarkAfterFailedRefreshReportsSuccess(t *testing.T) {
	m, store := newTestModel(t, "Read")

	store.broken.Store(true)
	m = update(t, m, keyPress("r"))
	require.True(t, m.statusIsError)

	store.broken.Store(false)
	m = update(t, m, keyPress("enter"))
	assert.False(t, m.statusIsError, m.status)
	assert.Contains(t, m.status, "Great start!")
	assert.True(t, m.habitsModel.Items()[0].Done)
}

func TestCreateHabit(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No habits yet.")

	m.createHabit("Stretch", models.CategoryFitness)
	require.False(t, m.statusIsError, m.status)
	items := m.habitsModel.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Stretch", items[0].Habit.Name)

	m.createHabit("  ", models.CategoryNone)
	assert.True(t, m.statusIsError)
	assert.Len(t, m.habitsModel.Items(), 1)
}

func TestAddOpensFormAndEscCancels(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, keyPress("a"))
	require.Equal(t, StateAddHabit, m.state)
	require.NotNil(t, m.form)

	m = update(t, m, keyPress("esc"))
	assert.Equal(t, StateHabits, m.state)
}

func TestTabsCycle(t *testing.T) {
	m, _ := newTestModel(t, "Read")

	m = update(t, m, keyPress("tab"))
	assert.Equal(t, StateWeek, m.state)
	assert.Contains(t, m.View(), "Read")

	m = update(t, m, keyPress("tab"))
	assert.Equal(t, StateHabits, m.state)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	next, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.(Model).View())
}
