// Package streak derives streak state from a habit's completion days.
//
// Everything here is a pure function of its inputs: the reference day is always
// passed in, and nothing is cached between calls.
package streak

import (
	"sort"

	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

// Run is a maximal block of consecutive completion days.
type Run struct {
	Start  string
	End    string
	Length int
}

// Normalize validates, sorts and de-duplicates days.
func Normalize(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if _, err := utils.ParseDay(d); err != nil {
			return nil, apperrors.Validation("day", d, "expected YYYY-MM-DD")
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	// YYYY-MM-DD sorts lexically in date order.
	sort.Strings(out)
	return out, nil
}

// Runs partitions sorted, distinct days into runs. A run continues from d to the
// next day only when that day is exactly d plus one calendar day.
func Runs(sorted []string) []Run {
	var runs []Run
	for _, d := range sorted {
		if n := len(runs); n > 0 {
			next, err := utils.AddDays(runs[n-1].End, 1)
			if err == nil && next == d {
				runs[n-1].End = d
				runs[n-1].Length++
				continue
			}
		}
		runs = append(runs, Run{Start: d, End: d, Length: 1})
	}
	return runs
}

// Compute returns the streak state of a habit with the given completion days,
// evaluated at asOf. Days after asOf are ignored.
//
// The current streak is the length of the run ending at the latest completion
// when that completion is on asOf or the day before; otherwise it is zero.
func Compute(habitID string, days []string, asOf string) (models.StreakState, error) {
	state := models.StreakState{HabitID: habitID}

	if _, err := utils.ParseDay(asOf); err != nil {
		return state, apperrors.Validation("date", asOf, "expected YYYY-MM-DD")
	}

	sorted, err := Normalize(days)
	if err != nil {
		return state, err
	}
	cut := sort.SearchStrings(sorted, asOf)
	if cut < len(sorted) && sorted[cut] == asOf {
		cut++
	}
	sorted = sorted[:cut]

	if len(sorted) == 0 {
		return state, nil
	}

	runs := Runs(sorted)
	for _, r := range runs {
		if r.Length > state.LongestStreak {
			state.LongestStreak = r.Length
		}
	}

	last := runs[len(runs)-1]
	state.LastCompletedDate = last.End

	gap, err := utils.DaysBetween(last.End, asOf)
	if err != nil {
		return state, err
	}
	if gap == 0 || gap == 1 {
		state.CurrentStreak = last.Length
	}

	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	return state, nil
}

// DaysOf extracts the days of a habit's completion events.
func DaysOf(events []models.CompletionEvent) []string {
	days := make([]string, len(events))
	for i, e := range events {
		days[i] = e.Day
	}
	return days
}

// Milestone returns the motivational message for a streak length, if it has one.
func Milestone(days int) (string, bool) {
	for _, m := range constants.Milestones {
		if m.Days == days {
			return m.Message, true
		}
	}
	return "", false
}

// NewMilestone reports the message earned when a streak grows from before to after.
func NewMilestone(before, after models.StreakState) (string, bool) {
	if after.CurrentStreak <= before.CurrentStreak {
		return "", false
	}
	return Milestone(after.CurrentStreak)
}
