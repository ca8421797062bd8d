package exports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/export"
)

type ExportCmd struct {
	Format string `help:"Output format (json or yaml)." default:"json" short:"f"`
	Out    string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	l, err := ctx.Ledger()
	if err != nil {
		return err
	}
	snap, err := l.Snapshot(ctx.Ctx())
	if err != nil {
		return err
	}

	if c.Out == "" || c.Out == "-" {
		return export.Write(ctx.Stdout(), snap, format)
	}

	if err := os.MkdirAll(filepath.Dir(c.Out), 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	tmp := c.Out + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(f, snap, format); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmp, c.Out); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize export file: %w", err)
	}

	fmt.Fprintf(ctx.Stdout(), "✓ Exported %d habit(s) to %s\n", len(snap.Habits), c.Out)
	return nil
}
