package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/identity"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Database path or connection string to copy the owner's habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized daystreak storage at: %s\n", ctx.Store.GetConfigPath())

	ownerID, created, err := identity.Resolver{Override: ctx.Config.Owner, ConfigDir: ctx.ConfigDir}.Provision()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Created owner ID: %s\n", ownerID)
	} else {
		fmt.Fprintf(out, "Using owner ID: %s\n", ownerID)
	}

	if c.Source != "" {
		fmt.Fprintf(out, "Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx, ownerID); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
	}
	return nil
}

// reset deletes a file-backed database so Init starts from scratch.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if postgres.IsConnString(dbPath) || dbPath == "postgresql" {
		return fmt.Errorf("--force is not supported for PostgreSQL storage")
	}

	if c.Source != "" {
		absDB, err1 := filepath.Abs(dbPath)
		absSource, err2 := filepath.Abs(c.Source)
		if err1 == nil && err2 == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Fprintf(ctx.Stdout(), "Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyData copies ownerID's habits and completions from Source into the store.
// Existing rows are kept; completions already present are skipped.
func (c *InitCmd) copyData(ctx *cli.Context, ownerID string) error {
	source, err := cli.OpenStore(c.Source, false)
	if err != nil {
		return err
	}
	if err := source.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	return copyOwner(ctx, source, ctx.Store, ownerID)
}

func copyOwner(ctx *cli.Context, src, dst storage.Provider, ownerID string) error {
	out := ctx.Stdout()

	habits, err := src.LoadHabits(ctx.Ctx(), ownerID)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, h := range habits {
		if err := dst.SaveHabit(ctx.Ctx(), h); err != nil {
			return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
		}
	}
	fmt.Fprintf(out, "  Copied %d habits\n", len(habits))

	events, err := src.LoadCompletions(ctx.Ctx(), models.CompletionQuery{OwnerID: ownerID})
	if err != nil {
		return fmt.Errorf("failed to get completions from source: %w", err)
	}
	copied := 0
	for _, e := range events {
		inserted, err := dst.AppendCompletion(ctx.Ctx(), e)
		if err != nil {
			return fmt.Errorf("failed to add completion %s: %w", e.ID, err)
		}
		if inserted {
			copied++
		}
	}
	fmt.Fprintf(out, "  Copied %d completions\n", copied)
	return nil
}
