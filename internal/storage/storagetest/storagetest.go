// Package storagetest holds behaviour checks every storage.Provider must pass.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
)

// Factory returns an initialized, empty provider. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Provider

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// Habit builds a habit owned by owner created on 2024-01-01.
func Habit(id, owner, name string) models.Habit {
	return models.Habit{
		ID:        id,
		OwnerID:   owner,
		Name:      name,
		Category:  models.CategoryFitness,
		CreatedOn: "2024-01-01",
		CreatedAt: base,
	}
}

// Completion builds an event for habitID on day.
func Completion(habitID, day string) models.CompletionEvent {
	return models.CompletionEvent{
		ID:         fmt.Sprintf("%s-%s", habitID, day),
		HabitID:    habitID,
		Day:        day,
		RecordedAt: base,
	}
}

// Run exercises the full Provider contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveAndGetHabit", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		h := Habit("h1", "alice", "Read")
		require.NoError(t, s.SaveHabit(ctx, h))

		got, err := s.GetHabit(ctx, "alice", "h1")
		require.NoError(t, err)
		require.Equal(t, h.Name, got.Name)
		require.Equal(t, h.Category, got.Category)
		require.Equal(t, h.CreatedOn, got.CreatedOn)
		require.True(t, h.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("SaveHabitUpdatesName", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		h := Habit("h1", "alice", "Read")
		require.NoError(t, s.SaveHabit(ctx, h))
		h.Name = "Read more"
		require.NoError(t, s.SaveHabit(ctx, h))

		habits, err := s.LoadHabits(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, habits, 1)
		require.Equal(t, "Read more", habits[0].Name)
	})

	t.Run("SaveHabitLeavesOtherOwnersHabit", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))
		err := s.SaveHabit(ctx, Habit("h1", "bob", "Hijacked"))
		require.ErrorIs(t, err, storage.ErrNotFound)

		got, err := s.GetHabit(ctx, "alice", "h1")
		require.NoError(t, err)
		require.Equal(t, "Read", got.Name)
		_, err = s.GetHabit(ctx, "bob", "h1")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("HabitsAreOwnerScoped", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))
		require.NoError(t, s.SaveHabit(ctx, Habit("h2", "bob", "Run")))

		habits, err := s.LoadHabits(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, habits, 1)
		require.Equal(t, "h1", habits[0].ID)

		_, err = s.GetHabit(ctx, "alice", "h2")
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.ErrorIs(t, s.DeleteHabit(ctx, "alice", "h2"), storage.ErrNotFound)
	})

	t.Run("GetMissingHabit", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetHabit(context.Background(), "alice", "nope")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("AppendCompletionIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))

		inserted, err := s.AppendCompletion(ctx, Completion("h1", "2024-01-02"))
		require.NoError(t, err)
		require.True(t, inserted)

		dup := Completion("h1", "2024-01-02")
		dup.ID = "other-id"
		inserted, err = s.AppendCompletion(ctx, dup)
		require.NoError(t, err)
		require.False(t, inserted)

		events, err := s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice", HabitID: "h1"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "h1-2024-01-02", events[0].ID)
	})

	t.Run("LoadCompletionsFiltersAndOrders", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))
		require.NoError(t, s.SaveHabit(ctx, Habit("h2", "alice", "Run")))
		require.NoError(t, s.SaveHabit(ctx, Habit("h3", "bob", "Swim")))

		for _, e := range []models.CompletionEvent{
			Completion("h1", "2024-01-05"),
			Completion("h1", "2024-01-02"),
			Completion("h2", "2024-01-03"),
			Completion("h3", "2024-01-03"),
		} {
			_, err := s.AppendCompletion(ctx, e)
			require.NoError(t, err)
		}

		all, err := s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice"})
		require.NoError(t, err)
		require.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-05"}, days(all))

		ranged, err := s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice", Start: "2024-01-03", End: "2024-01-04"})
		require.NoError(t, err)
		require.Len(t, ranged, 1)
		require.Equal(t, "h2", ranged[0].HabitID)

		one, err := s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice", HabitID: "h1", End: "2024-01-04"})
		require.NoError(t, err)
		require.Equal(t, []string{"2024-01-02"}, days(one))

		foreign, err := s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice", HabitID: "h3"})
		require.NoError(t, err)
		require.Empty(t, foreign)
	})

	t.Run("RemoveCompletion", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))
		_, err := s.AppendCompletion(ctx, Completion("h1", "2024-01-02"))
		require.NoError(t, err)

		removed, err := s.RemoveCompletion(ctx, "h1", "2024-01-02")
		require.NoError(t, err)
		require.True(t, removed)

		removed, err = s.RemoveCompletion(ctx, "h1", "2024-01-02")
		require.NoError(t, err)
		require.False(t, removed)
	})

	t.Run("DeleteHabitCascades", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))
		require.NoError(t, s.SaveHabit(ctx, Habit("h2", "alice", "Run")))
		for _, e := range []models.CompletionEvent{Completion("h1", "2024-01-02"), Completion("h2", "2024-01-02")} {
			_, err := s.AppendCompletion(ctx, e)
			require.NoError(t, err)
		}

		require.NoError(t, s.DeleteHabit(ctx, "alice", "h1"))

		_, err := s.GetHabit(ctx, "alice", "h1")
		require.ErrorIs(t, err, storage.ErrNotFound)

		events, err := s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "h2", events[0].HabitID)

		// a recreated habit with the same id starts with no history
		require.NoError(t, s.SaveHabit(ctx, Habit("h1", "alice", "Read")))
		events, err = s.LoadCompletions(ctx, models.CompletionQuery{OwnerID: "alice", HabitID: "h1"})
		require.NoError(t, err)
		require.Empty(t, events)
	})
}

func days(events []models.CompletionEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Day)
	}
	return out
}
