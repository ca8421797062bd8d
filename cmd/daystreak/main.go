package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/cli/backups"
	"github.com/julianstephens/daystreak/internal/cli/exports"
	"github.com/julianstephens/daystreak/internal/cli/habits"
	"github.com/julianstephens/daystreak/internal/cli/stats"
	"github.com/julianstephens/daystreak/internal/cli/system"
	"github.com/julianstephens/daystreak/internal/config"
	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/lock"
	"github.com/julianstephens/daystreak/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path, *.json path or PostgreSQL connection string. Overrides DAYSTREAK_DB. For PostgreSQL, keep passwords out of the string and use .pgpass, PGPASSWORD or the OS keyring." type:"string"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize daystreak storage and the owner ID."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits and record completions."`
	Stats   stats.StatsCmd    `cmd:"" help:"Show daily, weekly and overall statistics."`
	Export  exports.ExportCmd `cmd:"" help:"Export habits, completions and streaks."`
	Backup  backups.BackupCmd `cmd:"" help:"Manage database backups."`
	Keyring system.ConfigCmd  `cmd:"" name:"config" help:"Manage the connection string stored in the OS keyring."`
	Diag    system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks and completion statistics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	apperrors.Fatal(run(ctx))
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	target, fromKeyring := cli.ResolveTarget(CLI.Config, cfg)
	configDir, err := cli.ConfigDir(target)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug || cfg.Debug, ConfigDir: configDir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Credentials are only accepted when they came from the encrypted keyring.
	store, err := cli.OpenStore(target, fromKeyring)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Config:    cfg,
		ConfigDir: configDir,
		Store:     store,
		Parent:    sigCtx,
	}
	defer func() {
		if err := appCtx.Close(); err != nil {
			logger.Warn("Failed to close resources", "error", err)
		}
	}()

	if cfg.UseRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		appCtx.OnClose(client.Close)
		appCtx.Locker = lock.NewRedisLocker(client, cfg.LockTTL)
		logger.Debug("Using Redis habit locks", "addr", cfg.RedisAddr)
	}

	return kctx.Run(appCtx)
}
