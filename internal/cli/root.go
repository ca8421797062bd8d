package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/daystreak/internal/backup"
	"github.com/julianstephens/daystreak/internal/config"
	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/identity"
	"github.com/julianstephens/daystreak/internal/keyring"
	"github.com/julianstephens/daystreak/internal/ledger"
	"github.com/julianstephens/daystreak/internal/lock"
	"github.com/julianstephens/daystreak/internal/logger"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/storage/postgres"
	"github.com/julianstephens/daystreak/internal/storage/sqlite"
	"github.com/julianstephens/daystreak/internal/utils"
)

type Context struct {
	Config    config.Config
	ConfigDir string
	Store     storage.Provider

	// Optional overrides. Zero values fall back to the configured timezone,
	// the wall clock and an in-process lock.
	Locker   lock.Locker
	Location *time.Location
	Now      func() time.Time

	Parent context.Context
	In     io.Reader
	Out    io.Writer

	ledger  *ledger.Ledger
	closers []func() error
}

func (c *Context) Ctx() context.Context {
	if c.Parent == nil {
		return context.Background()
	}
	return c.Parent
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// OnClose registers fn to run when the context is closed.
func (c *Context) OnClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close releases the store and anything registered with OnClose.
func (c *Context) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	c.closers = nil
	c.ledger = nil
	return errors.Join(errs...)
}

// Ledger loads the store, resolves the owner and returns the ledger for this run.
func (c *Context) Ledger() (*ledger.Ledger, error) {
	if c.ledger != nil {
		return c.ledger, nil
	}

	if err := c.Store.Load(c.Ctx()); err != nil {
		return nil, err
	}

	ownerID, source, err := identity.Resolver{Override: c.Config.Owner, ConfigDir: c.ConfigDir}.Resolve()
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved owner", "owner_id", ownerID, "source", source)

	loc := c.Location
	if loc == nil {
		if loc, err = c.Config.Location(); err != nil {
			return nil, err
		}
	}

	opts := []ledger.Option{ledger.WithLocation(loc)}
	if c.Now != nil {
		opts = append(opts, ledger.WithClock(c.Now))
	}
	if c.Locker != nil {
		opts = append(opts, ledger.WithLocker(c.Locker))
	}

	c.ledger = ledger.New(c.Store, ownerID, opts...)
	return c.ledger, nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors.
// Only SQLite stores are backed up.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c.Ctx()); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveTarget picks the store target from, in order, the --config flag,
// DAYSTREAK_DB, the keyring connection string and the default SQLite path.
// fromKeyring reports whether the keyring supplied it.
func ResolveTarget(flag string, cfg config.Config) (target string, fromKeyring bool) {
	if flag != "" {
		return flag, false
	}
	if cfg.DB != "" {
		return cfg.DB, false
	}

	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil && connStr != "":
		return connStr, true
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring lookup skipped", "error", err)
	}
	return constants.DefaultConfigPath, false
}

// OpenStore builds the provider for target: PostgreSQL for a postgres:// URL,
// the JSON store for a *.json path and SQLite otherwise. Passwords inside a
// connection string are refused unless allowCredentials is set.
func OpenStore(target string, allowCredentials bool) (storage.Provider, error) {
	if postgres.IsConnString(target) {
		if err := postgres.ValidateConnString(target); err != nil {
			if !allowCredentials || !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
		}
		return postgres.New(target), nil
	}

	path, err := utils.ExpandPath(target)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.New(path), nil
}

// ConfigDir returns the directory holding logs and the owner file: the
// directory of a file-backed store, or the default config directory.
func ConfigDir(target string) (string, error) {
	if postgres.IsConnString(target) {
		target = constants.DefaultConfigPath
	}
	path, err := utils.ExpandPath(target)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// ResolveHabit finds a habit by ID, falling back to a case-insensitive name match.
func ResolveHabit(ctx context.Context, l *ledger.Ledger, ref string) (models.Habit, error) {
	h, err := l.Habit(ctx, ref)
	if err == nil {
		return h, nil
	}
	if !apperrors.IsNotFound(err) {
		return models.Habit{}, err
	}

	habits, err := l.Habits(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, apperrors.NotFound("habit", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, apperrors.Validation("habit", ref, fmt.Sprintf("name matches %d habits, use the habit id", len(matches)))
	}
}

// Confirm asks a yes/no question on the context's input. Anything but y or yes is no.
func Confirm(c *Context, question string) (bool, error) {
	fmt.Fprintf(c.Stdout(), "%s [y/N]: ", question)
	response, err := bufio.NewReader(c.Stdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// FormatRate renders a 0..1 completion rate as a percentage.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

// ProgressBar renders rate as a fixed-width bar, e.g. "[#####.....]".
func ProgressBar(rate float64, width int) string {
	filled := int(rate*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
