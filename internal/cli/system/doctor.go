package system

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/daystreak/internal/backup"
	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/identity"
	"github.com/julianstephens/daystreak/internal/keyring"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage/sqlite"
	"github.com/julianstephens/daystreak/internal/streak"
)

// schemaVersioner is implemented by the SQL stores.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	fail := func(name string, err error) {
		fmt.Fprintf(out, "❌ %s: FAIL\n", name)
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
	}

	// Check 1: DB reachable
	dbReachable := false
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		fail("Database reachable", err)
	} else {
		fmt.Fprintln(out, "✓ Database reachable: OK")
		dbReachable = true
	}

	// Check 2: Schema version (SQL stores only)
	if err := checkSchemaVersion(ctx); err != nil {
		fail("Schema version", err)
	} else {
		fmt.Fprintln(out, "✓ Schema version: OK")
	}

	// Check 3: Owner resolves
	ownerOK := false
	if id, source, err := (identity.Resolver{Override: ctx.Config.Owner, ConfigDir: ctx.ConfigDir}).Resolve(); err != nil {
		fail("Owner ID", err)
	} else {
		fmt.Fprintf(out, "✓ Owner ID: OK (%s from %s)\n", id, source)
		ownerOK = true
	}

	// Check 4: Keyring (warning only)
	if keyring.IsAvailable() {
		fmt.Fprintln(out, "✓ OS keyring: OK")
	} else {
		fmt.Fprintln(out, "⚠ OS keyring: WARNING")
		fmt.Fprintln(out, "   keyring unavailable, owner ID is read from the owner file")
	}

	// Check 5: Backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Fprintln(out, "⚠ Backups present: WARNING")
		fmt.Fprintf(out, "   %v\n", err)
	} else {
		fmt.Fprintln(out, "✓ Backups present: OK")
	}

	// Check 6: Data validation (only if DB is reachable and the owner is known)
	if dbReachable && ownerOK {
		if err := checkData(ctx, out); err != nil {
			fail("Data validation", err)
		} else {
			fmt.Fprintln(out, "✓ Data validation: OK")
		}
	} else {
		fmt.Fprintln(out, "⊘ Data validation: SKIPPED (database or owner unavailable)")
	}

	// Check 7: Clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		fmt.Fprintln(out, "✓ Clock/timezone: OK")
	}

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok {
		return nil
	}
	current, latest, err := sv.SchemaVersion(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'daystreak migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'daystreak backup create'")
	}
	return nil
}

// checkData verifies every stored completion is a valid day within its habit's lifetime.
func checkData(ctx *cli.Context, out io.Writer) error {
	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	habits, err := l.Habits(ctx.Ctx())
	if err != nil {
		return err
	}

	today := l.Today()
	total := 0
	for _, h := range habits {
		events, err := ctx.Store.LoadCompletions(ctx.Ctx(), models.CompletionQuery{OwnerID: l.OwnerID(), HabitID: h.ID})
		if err != nil {
			return fmt.Errorf("failed to load completions for %q: %w", h.Name, err)
		}
		days, err := streak.Normalize(streak.DaysOf(events))
		if err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}
		if len(days) != len(events) {
			return fmt.Errorf("habit %q has duplicate completions", h.Name)
		}
		if len(days) > 0 && days[0] < h.CreatedOn {
			return fmt.Errorf("habit %q has a completion on %s, before it was created on %s", h.Name, days[0], h.CreatedOn)
		}
		if len(days) > 0 && days[len(days)-1] > today {
			fmt.Fprintf(out, "   note: habit %q has a completion after today (%s)\n", h.Name, days[len(days)-1])
		}
		total += len(days)
	}
	fmt.Fprintf(out, "   %d habits, %d completions checked\n", len(habits), total)
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Location == nil {
		if _, err := ctx.Config.Location(); err != nil {
			return err
		}
	}
	return nil
}
