package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/models"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpHabit *DebugDumpHabitCmd `cmd:"" help:"Dump a habit with its completions and streak as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	return writeJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	habit, err := cli.ResolveHabit(ctx.Ctx(), l, cmd.Habit)
	if err != nil {
		return err
	}

	events, err := ctx.Store.LoadCompletions(ctx.Ctx(), models.CompletionQuery{OwnerID: l.OwnerID(), HabitID: habit.ID})
	if err != nil {
		return err
	}
	if events == nil {
		events = []models.CompletionEvent{}
	}
	state, err := l.StreakState(ctx.Ctx(), habit.ID, l.Today())
	if err != nil {
		return err
	}

	return writeJSON(ctx, models.HabitRecord{Habit: habit, Completions: events, Streak: state})
}

func writeJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(ctx.Stdout(), string(jsonBytes))
	return nil
}
