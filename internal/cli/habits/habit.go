package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/streak"
	"github.com/julianstephens/daystreak/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with their streaks."`
	Mark   HabitMarkCmd   `cmd:"" help:"Mark a habit as done for a day."`
	Unmark HabitUnmarkCmd `cmd:"" help:"Remove a habit's completion for a day."`
	Streak HabitStreakCmd `cmd:"" help:"Show a habit's streak."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `help:"Optional category (fitness, mindfulness, learning, work, nutrition)." short:"c"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}

	category := models.Category(strings.ToLower(strings.TrimSpace(c.Category)))
	habit, err := l.CreateHabit(ctx.Ctx(), c.Name, category)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "✓ Added habit %q (ID: %s)\n", habit.Name, habit.ID)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}

	habits, err := l.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	out := ctx.Stdout()
	if len(habits) == 0 {
		fmt.Fprintln(out, "No habits found. Add one with 'daystreak habit add NAME'.")
		return nil
	}

	today := l.Today()
	fmt.Fprintf(out, "Habits for %s:\n\n", today)
	done := 0
	for _, h := range habits {
		state, err := l.StreakState(ctx.Ctx(), h.ID, today)
		if err != nil {
			return err
		}
		status := "[ ]"
		if state.LastCompletedDate == today {
			status = "[x]"
			done++
		}

		name := h.Name
		if label := h.Category.Label(); label != "" {
			name = fmt.Sprintf("%s (%s)", name, label)
		}
		fmt.Fprintf(out, "%s %-32s 🔥 %-4d 🏆 %-4d %s\n", status, name, state.CurrentStreak, state.LongestStreak, h.ID)
	}

	fmt.Fprintf(out, "\nDone today: %d/%d\n", done, len(habits))
	return nil
}

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	habit, err := cli.ResolveHabit(ctx.Ctx(), l, c.Habit)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		day = l.Today()
	}

	before, err := l.StreakState(ctx.Ctx(), habit.ID, l.Today())
	if err != nil {
		return err
	}
	after, err := l.RecordCompletion(ctx.Ctx(), habit.ID, day)
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintf(out, "✓ Marked %q for %s\n", habit.Name, day)
	fmt.Fprintf(out, "  🔥 Current streak: %d  🏆 Longest: %d\n", after.CurrentStreak, after.LongestStreak)
	if msg, ok := streak.NewMilestone(before, after); ok {
		fmt.Fprintf(out, "  %s\n", msg)
	}
	return nil
}

type HabitUnmarkCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitUnmarkCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	habit, err := cli.ResolveHabit(ctx.Ctx(), l, c.Habit)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		day = l.Today()
	}

	state, err := l.UnmarkCompletion(ctx.Ctx(), habit.ID, day)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "Unmarked %q for %s\n", habit.Name, day)
	fmt.Fprintf(ctx.Stdout(), "  🔥 Current streak: %d  🏆 Longest: %d\n", state.CurrentStreak, state.LongestStreak)
	return nil
}

type HabitStreakCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	AsOf  string `help:"Reference date in YYYY-MM-DD format (default: today)." name:"as-of" default:""`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	habit, err := cli.ResolveHabit(ctx.Ctx(), l, c.Habit)
	if err != nil {
		return err
	}

	asOf := c.AsOf
	if asOf == "" {
		asOf = l.Today()
	}
	state, err := l.StreakState(ctx.Ctx(), habit.ID, asOf)
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintf(out, "%s (as of %s)\n", habit.Name, asOf)
	fmt.Fprintf(out, "  🔥 Current streak: %d\n", state.CurrentStreak)
	fmt.Fprintf(out, "  🏆 Longest streak: %d\n", state.LongestStreak)
	last := state.LastCompletedDate
	if last == "" {
		last = "never"
	}
	fmt.Fprintf(out, "  Last completed:   %s\n", last)
	return nil
}

const logNameWidth = 20

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only (ID or name)."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", c.Days)
	}

	l, err := ctx.Ledger()
	if err != nil {
		return err
	}

	var selected []models.Habit
	if c.Habit != "" {
		habit, err := cli.ResolveHabit(ctx.Ctx(), l, c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{habit}
	} else if selected, err = l.Habits(ctx.Ctx()); err != nil {
		return err
	}

	out := ctx.Stdout()
	if len(selected) == 0 {
		fmt.Fprintln(out, "No habits found.")
		return nil
	}

	end := l.Today()
	start, err := utils.AddDays(end, -(c.Days - 1))
	if err != nil {
		return err
	}
	days, err := utils.DayRange(start, end)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Habit log (last %d days):\n\n", c.Days)

	fmt.Fprint(out, padName("Habit"))
	for _, day := range days {
		t, _ := utils.ParseDay(day)
		fmt.Fprintf(out, " %5s", t.Format("01/02"))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", logNameWidth+6*len(days)))

	for _, habit := range selected {
		events, err := l.CompletionsInRange(ctx.Ctx(), habit.ID, start, end)
		if err != nil {
			return err
		}
		done := make(map[string]bool, len(events))
		for _, e := range events {
			done[e.Day] = true
		}

		fmt.Fprint(out, padName(habit.Name))
		for _, day := range days {
			if done[day] {
				fmt.Fprint(out, "  x   ")
			} else {
				fmt.Fprint(out, "  .   ")
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

// padName truncates or pads name to the log's name column.
func padName(name string) string {
	r := []rune(name)
	if len(r) > logNameWidth {
		return string(r[:logNameWidth-3]) + "..."
	}
	return name + strings.Repeat(" ", logNameWidth-len(r))
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Yes   bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	habit, err := cli.ResolveHabit(ctx.Ctx(), l, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm(ctx, fmt.Sprintf("Delete %q and its entire history?", habit.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Stdout(), "Delete cancelled.")
			return nil
		}
	}

	if ctx.Config.BackupOnDelete {
		ctx.PerformAutomaticBackup()
	}
	if err := l.DeleteHabit(ctx.Ctx(), habit.ID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "✓ Deleted habit %q\n", habit.Name)
	return nil
}
