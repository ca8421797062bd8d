package ledger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/streak"
	"github.com/julianstephens/daystreak/internal/utils"
)

// DailyStats counts the habits completed on asOf. Habits created after asOf
// are not part of that day.
func (l *Ledger) DailyStats(ctx context.Context, asOf string) (models.DailyStats, error) {
	if _, err := utils.ParseDay(asOf); err != nil {
		return models.DailyStats{}, apperrors.Validation("date", asOf, "expected YYYY-MM-DD")
	}

	habits, err := l.habitsAsOf(ctx, asOf)
	if err != nil {
		return models.DailyStats{}, err
	}
	stats := models.DailyStats{Date: asOf, TotalHabits: len(habits)}
	if len(habits) == 0 {
		return stats, nil
	}

	events, err := l.store.LoadCompletions(ctx, models.CompletionQuery{OwnerID: l.ownerID, Start: asOf, End: asOf})
	if err != nil {
		return models.DailyStats{}, apperrors.Persistence("load completions", err)
	}
	done := make(map[string]bool, len(events))
	for _, e := range events {
		done[e.HabitID] = true
	}
	for _, h := range habits {
		if done[h.ID] {
			stats.CompletedCount++
		}
	}

	stats.CompletionRate = rate(stats.CompletedCount, stats.TotalHabits)
	return stats, nil
}

// WeeklyStats covers the seven days ending at asOf. A habit can only be
// completed on window days on or after its creation day.
func (l *Ledger) WeeklyStats(ctx context.Context, asOf string) (models.WeeklyStats, error) {
	if _, err := utils.ParseDay(asOf); err != nil {
		return models.WeeklyStats{}, apperrors.Validation("date", asOf, "expected YYYY-MM-DD")
	}
	start, err := utils.AddDays(asOf, -(constants.DaysPerWeek - 1))
	if err != nil {
		return models.WeeklyStats{}, err
	}
	window, err := utils.DayRange(start, asOf)
	if err != nil {
		return models.WeeklyStats{}, err
	}

	habits, err := l.habitsAsOf(ctx, asOf)
	if err != nil {
		return models.WeeklyStats{}, err
	}
	histories, err := l.loadHistories(ctx, habits, start, asOf)
	if err != nil {
		return models.WeeklyStats{}, err
	}

	stats := models.WeeklyStats{
		StartDate:   start,
		EndDate:     asOf,
		TotalHabits: len(habits),
		Habits:      make([]models.HabitWeekStat, 0, len(habits)),
	}
	for i, h := range habits {
		done := make(map[string]bool, len(histories[i]))
		for _, e := range histories[i] {
			done[e.Day] = true
		}

		row := models.HabitWeekStat{HabitID: h.ID, Name: h.Name, Days: make([]bool, len(window))}
		for j, d := range window {
			if d < h.CreatedOn {
				continue
			}
			row.PossibleDays++
			if done[d] {
				row.Days[j] = true
				row.DaysCompleted++
			}
		}
		row.CompletionRate = rate(row.DaysCompleted, row.PossibleDays)

		stats.CompletedDays += row.DaysCompleted
		stats.PossibleDays += row.PossibleDays
		stats.Habits = append(stats.Habits, row)
	}
	stats.CompletionRate = rate(stats.CompletedDays, stats.PossibleDays)
	return stats, nil
}

// AggregateStats sums current streaks and takes the best longest streak, as of today.
func (l *Ledger) AggregateStats(ctx context.Context) (models.AggregateStats, error) {
	today := l.Today()
	habits, err := l.Habits(ctx)
	if err != nil {
		return models.AggregateStats{}, err
	}
	histories, err := l.loadHistories(ctx, habits, "", today)
	if err != nil {
		return models.AggregateStats{}, err
	}

	var agg models.AggregateStats
	for i, h := range habits {
		state, err := streak.Compute(h.ID, streak.DaysOf(histories[i]), today)
		if err != nil {
			return models.AggregateStats{}, err
		}
		agg.TotalActiveStreakDays += state.CurrentStreak
		if state.LongestStreak > agg.LongestStreakOverall {
			agg.LongestStreakOverall = state.LongestStreak
		}
	}
	return agg, nil
}

// Snapshot gathers every habit with its full history and current streak.
func (l *Ledger) Snapshot(ctx context.Context) (models.Snapshot, error) {
	today := l.Today()
	habits, err := l.Habits(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	histories, err := l.loadHistories(ctx, habits, "", "")
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		OwnerID:    l.ownerID,
		ExportedAt: l.now().UTC(),
		AsOf:       today,
		Habits:     make([]models.HabitRecord, 0, len(habits)),
	}
	for i, h := range habits {
		state, err := streak.Compute(h.ID, streak.DaysOf(histories[i]), today)
		if err != nil {
			return models.Snapshot{}, err
		}
		events := histories[i]
		if events == nil {
			events = []models.CompletionEvent{}
		}
		snap.Habits = append(snap.Habits, models.HabitRecord{Habit: h, Completions: events, Streak: state})
	}
	return snap, nil
}

func (l *Ledger) habitsAsOf(ctx context.Context, asOf string) ([]models.Habit, error) {
	all, err := l.Habits(ctx)
	if err != nil {
		return nil, err
	}
	habits := all[:0]
	for _, h := range all {
		if h.CreatedOn <= asOf {
			habits = append(habits, h)
		}
	}
	return habits, nil
}

// loadHistories fetches each habit's completions between start and end
// (either may be empty), a few habits at a time. Result i belongs to habits[i].
func (l *Ledger) loadHistories(ctx context.Context, habits []models.Habit, start, end string) ([][]models.CompletionEvent, error) {
	out := make([][]models.CompletionEvent, len(habits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.MaxConcurrentLoads)
	for i, h := range habits {
		g.Go(func() error {
			events, err := l.store.LoadCompletions(gctx, models.CompletionQuery{
				OwnerID: l.ownerID,
				HabitID: h.ID,
				Start:   start,
				End:     end,
			})
			if err != nil {
				return apperrors.Persistence("load completions", err)
			}
			out[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func rate(done, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return float64(done) / float64(possible)
}
