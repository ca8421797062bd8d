package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/daystreak/internal/models"
)

// ErrNotFound is returned when a habit does not exist within the owner's scope.
var ErrNotFound = errors.New("storage: not found")

// Provider is the persistence collaborator behind the habit ledger. Every
// habit query is scoped by owner; completions are scoped through their habit.
// Implementations wrap backend failures in a PersistenceError.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Habits
	LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error)
	GetHabit(ctx context.Context, ownerID, id string) (models.Habit, error)
	SaveHabit(ctx context.Context, habit models.Habit) error
	// DeleteHabit removes the habit and all of its completions.
	DeleteHabit(ctx context.Context, ownerID, id string) error

	// Completions
	// LoadCompletions returns matching completions ordered by day ascending.
	LoadCompletions(ctx context.Context, q models.CompletionQuery) ([]models.CompletionEvent, error)
	// AppendCompletion stores the event unless one already exists for the same
	// habit and day. It reports whether a new event was written.
	AppendCompletion(ctx context.Context, event models.CompletionEvent) (bool, error)
	// RemoveCompletion deletes the event for habit and day, reporting whether one existed.
	RemoveCompletion(ctx context.Context, habitID, day string) (bool, error)

	// Utils
	GetConfigPath() string
}
