package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/daystreak/internal/cli"
)

// migrator is implemented by the SQL stores.
type migrator interface {
	Migrate(ctx context.Context) (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports SQLite and PostgreSQL storage")
	}

	count, err := m.Migrate(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Stdout(), "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(ctx.Stdout(), "Successfully applied %d migration(s).\n", count)
	}
	return nil
}
