// Package ledger owns habits and their completion history and answers streak
// and statistics queries over them.
//
// Streaks are never stored. Every answer is recomputed from the completion
// events held by the storage provider, evaluated against an injected clock.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/lock"
	"github.com/julianstephens/daystreak/internal/logger"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/streak"
	"github.com/julianstephens/daystreak/internal/utils"
)

type Ledger struct {
	store   storage.Provider
	ownerID string
	now     func() time.Time
	loc     *time.Location
	locker  lock.Locker
}

type Option func(*Ledger)

// WithClock sets the source of "today". Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the timezone in which the clock is read as a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

// WithLocker replaces the in-process per-habit lock.
func WithLocker(locker lock.Locker) Option {
	return func(l *Ledger) { l.locker = locker }
}

func New(store storage.Provider, ownerID string, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		ownerID: ownerID,
		now:     time.Now,
		loc:     time.Local,
		locker:  lock.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) OwnerID() string {
	return l.ownerID
}

// Today is the injected clock's calendar day in the ledger's location.
func (l *Ledger) Today() string {
	return utils.TodayIn(l.now(), l.loc)
}

func (l *Ledger) CreateHabit(ctx context.Context, name string, category models.Category) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, apperrors.Validation("name", "", "must not be empty")
	}
	if !category.Valid() {
		return models.Habit{}, apperrors.Validation("category", string(category), "unknown category")
	}

	now := l.now()
	h := models.Habit{
		ID:        uuid.NewString(),
		OwnerID:   l.ownerID,
		Name:      name,
		Category:  category,
		CreatedOn: utils.TodayIn(now, l.loc),
		CreatedAt: now.UTC(),
	}
	if err := l.store.SaveHabit(ctx, h); err != nil {
		logger.Error("Failed to save habit", "name", name, "error", err)
		return models.Habit{}, apperrors.Persistence("save habit", err)
	}

	logger.Debug("Habit created", "habit_id", h.ID, "name", h.Name, "category", h.Category)
	return h, nil
}

func (l *Ledger) Habits(ctx context.Context) ([]models.Habit, error) {
	habits, err := l.store.LoadHabits(ctx, l.ownerID)
	if err != nil {
		return nil, apperrors.Persistence("load habits", err)
	}
	return habits, nil
}

func (l *Ledger) Habit(ctx context.Context, id string) (models.Habit, error) {
	h, err := l.store.GetHabit(ctx, l.ownerID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, apperrors.NotFound("habit", id)
	}
	if err != nil {
		return models.Habit{}, apperrors.Persistence("get habit", err)
	}
	return h, nil
}

func (l *Ledger) DeleteHabit(ctx context.Context, id string) error {
	unlock, err := l.locker.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	err = l.store.DeleteHabit(ctx, l.ownerID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("habit", id)
	}
	if err != nil {
		logger.Error("Failed to delete habit", "habit_id", id, "error", err)
		return apperrors.Persistence("delete habit", err)
	}

	logger.Debug("Habit deleted", "habit_id", id)
	return nil
}

// RecordCompletion marks habitID done on day. Recording a day twice is a no-op.
// The returned state is evaluated as of today.
func (l *Ledger) RecordCompletion(ctx context.Context, habitID, day string) (models.StreakState, error) {
	if _, err := utils.ParseDay(day); err != nil {
		return models.StreakState{}, apperrors.Validation("day", day, "expected YYYY-MM-DD")
	}

	unlock, err := l.locker.Lock(ctx, habitID)
	if err != nil {
		return models.StreakState{}, err
	}
	defer unlock()

	h, err := l.Habit(ctx, habitID)
	if err != nil {
		return models.StreakState{}, err
	}

	today := l.Today()
	if day < h.CreatedOn {
		return models.StreakState{}, apperrors.Validation("day", day, "before the habit was created on "+h.CreatedOn)
	}
	if day > today {
		return models.StreakState{}, apperrors.Validation("day", day, "in the future")
	}

	inserted, err := l.store.AppendCompletion(ctx, models.CompletionEvent{
		ID:         uuid.NewString(),
		HabitID:    habitID,
		Day:        day,
		RecordedAt: l.now().UTC(),
	})
	if err != nil {
		logger.Error("Failed to record completion", "habit_id", habitID, "day", day, "error", err)
		return models.StreakState{}, apperrors.Persistence("append completion", err)
	}

	state, err := l.streakOf(ctx, habitID, today)
	if err != nil {
		return models.StreakState{}, err
	}
	logger.Debug("Completion recorded", "habit_id", habitID, "day", day, "inserted", inserted,
		"current", state.CurrentStreak, "longest", state.LongestStreak)
	return state, nil
}

// UnmarkCompletion removes the completion for day, if any, and recomputes the
// streak from what remains.
func (l *Ledger) UnmarkCompletion(ctx context.Context, habitID, day string) (models.StreakState, error) {
	if _, err := utils.ParseDay(day); err != nil {
		return models.StreakState{}, apperrors.Validation("day", day, "expected YYYY-MM-DD")
	}

	unlock, err := l.locker.Lock(ctx, habitID)
	if err != nil {
		return models.StreakState{}, err
	}
	defer unlock()

	if _, err := l.Habit(ctx, habitID); err != nil {
		return models.StreakState{}, err
	}

	removed, err := l.store.RemoveCompletion(ctx, habitID, day)
	if err != nil {
		logger.Error("Failed to remove completion", "habit_id", habitID, "day", day, "error", err)
		return models.StreakState{}, apperrors.Persistence("remove completion", err)
	}

	state, err := l.streakOf(ctx, habitID, l.Today())
	if err != nil {
		return models.StreakState{}, err
	}
	logger.Debug("Completion removed", "habit_id", habitID, "day", day, "removed", removed,
		"current", state.CurrentStreak, "longest", state.LongestStreak)
	return state, nil
}

// StreakState evaluates habitID's streak as of asOf.
func (l *Ledger) StreakState(ctx context.Context, habitID, asOf string) (models.StreakState, error) {
	if _, err := utils.ParseDay(asOf); err != nil {
		return models.StreakState{}, apperrors.Validation("date", asOf, "expected YYYY-MM-DD")
	}
	if _, err := l.Habit(ctx, habitID); err != nil {
		return models.StreakState{}, err
	}
	return l.streakOf(ctx, habitID, asOf)
}

// CompletionsInRange returns habitID's completions from start to end inclusive,
// ascending by day.
func (l *Ledger) CompletionsInRange(ctx context.Context, habitID, start, end string) ([]models.CompletionEvent, error) {
	if _, err := utils.ParseDay(start); err != nil {
		return nil, apperrors.Validation("start", start, "expected YYYY-MM-DD")
	}
	if _, err := utils.ParseDay(end); err != nil {
		return nil, apperrors.Validation("end", end, "expected YYYY-MM-DD")
	}
	if start > end {
		return nil, apperrors.Validation("range", start+".."+end, "start is after end")
	}
	if _, err := l.Habit(ctx, habitID); err != nil {
		return nil, err
	}

	events, err := l.store.LoadCompletions(ctx, models.CompletionQuery{
		OwnerID: l.ownerID,
		HabitID: habitID,
		Start:   start,
		End:     end,
	})
	if err != nil {
		return nil, apperrors.Persistence("load completions", err)
	}
	if events == nil {
		events = []models.CompletionEvent{}
	}
	return events, nil
}

func (l *Ledger) streakOf(ctx context.Context, habitID, asOf string) (models.StreakState, error) {
	events, err := l.store.LoadCompletions(ctx, models.CompletionQuery{
		OwnerID: l.ownerID,
		HabitID: habitID,
		End:     asOf,
	})
	if err != nil {
		return models.StreakState{}, apperrors.Persistence("load completions", err)
	}
	return streak.Compute(habitID, streak.DaysOf(events), asOf)
}
