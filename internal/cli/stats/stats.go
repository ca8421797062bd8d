package stats

import (
	"fmt"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/utils"
)

const barWidth = 20

type StatsCmd struct {
	Today   StatsTodayCmd   `cmd:"" help:"Show completion for a single day." default:"1"`
	Week    StatsWeekCmd    `cmd:"" help:"Show completion for the seven days ending on a date."`
	Overall StatsOverallCmd `cmd:"" help:"Show streak totals across all habits."`
}

type StatsTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *StatsTodayCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date := c.Date
	if date == "" {
		date = l.Today()
	}

	s, err := l.DailyStats(ctx.Ctx(), date)
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintf(out, "Stats for %s\n\n", s.Date)
	fmt.Fprintf(out, "  Completed: %d/%d\n", s.CompletedCount, s.TotalHabits)
	fmt.Fprintf(out, "  %s %s\n", cli.ProgressBar(s.CompletionRate, barWidth), cli.FormatRate(s.CompletionRate))
	return nil
}

type StatsWeekCmd struct {
	Date string `help:"Last day of the week in YYYY-MM-DD format (default: today)." default:""`
}

func (c *StatsWeekCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	date := c.Date
	if date == "" {
		date = l.Today()
	}

	s, err := l.WeeklyStats(ctx.Ctx(), date)
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintf(out, "Week %s to %s\n\n", s.StartDate, s.EndDate)
	if s.TotalHabits == 0 {
		fmt.Fprintln(out, "  No habits tracked in this week.")
		return nil
	}

	days, err := utils.DayRange(s.StartDate, s.EndDate)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %-20s", "")
	for _, day := range days {
		t, _ := utils.ParseDay(day)
		fmt.Fprintf(out, " %s", t.Format("Mon")[:2])
	}
	fmt.Fprintln(out)

	for _, h := range s.Habits {
		fmt.Fprintf(out, "  %-20.20s", h.Name)
		for _, done := range h.Days {
			if done {
				fmt.Fprint(out, "  x")
			} else {
				fmt.Fprint(out, "  .")
			}
		}
		fmt.Fprintf(out, "  %d/%d\n", h.DaysCompleted, h.PossibleDays)
	}

	fmt.Fprintf(out, "\n  Completed: %d/%d days\n", s.CompletedDays, s.PossibleDays)
	fmt.Fprintf(out, "  %s %s\n", cli.ProgressBar(s.CompletionRate, barWidth), cli.FormatRate(s.CompletionRate))
	return nil
}

type StatsOverallCmd struct{}

func (c *StatsOverallCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}

	agg, err := l.AggregateStats(ctx.Ctx())
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintf(out, "Overall as of %s\n\n", l.Today())
	fmt.Fprintf(out, "  🔥 Active streak days: %d\n", agg.TotalActiveStreakDays)
	fmt.Fprintf(out, "  🏆 Longest streak:     %d\n", agg.LongestStreakOverall)
	return nil
}
