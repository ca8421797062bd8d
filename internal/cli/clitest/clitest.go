// Package clitest builds command contexts backed by temporary stores.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/config"
	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/storage/sqlite"
)

const Owner = "owner-test"

// Env is a command context with captured output and a settable clock.
type Env struct {
	Ctx *cli.Context
	Out *bytes.Buffer
	Dir string

	mu  sync.Mutex
	now time.Time
}

// New returns an Env over an initialized SQLite store whose clock reads noon UTC on day.
func New(t *testing.T, day string) *Env {
	t.Helper()
	dir := t.TempDir()
	return NewWithStore(t, day, dir, sqlite.New(filepath.Join(dir, "daystreak.db")))
}

// NewWithStore initializes store and wraps it in an Env rooted at dir.
func NewWithStore(t *testing.T, day, dir string, store storage.Provider) *Env {
	t.Helper()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	e := &Env{Out: &bytes.Buffer{}, Dir: dir}
	e.SetDay(day)
	e.Ctx = &cli.Context{
		Config: config.Config{
			Owner:          Owner,
			Timezone:       "UTC",
			LockTTL:        constants.DefaultLockTTL,
			BackupOnDelete: true,
		},
		ConfigDir: dir,
		Store:     store,
		Location:  time.UTC,
		Now:       e.clock,
		In:        strings.NewReader(""),
		Out:       e.Out,
	}
	t.Cleanup(func() { _ = e.Ctx.Close() })
	return e
}

func (e *Env) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// SetDay moves the clock to noon UTC on day.
func (e *Env) SetDay(day string) {
	d, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		panic(err)
	}
	e.mu.Lock()
	e.now = d.Add(12 * time.Hour)
	e.mu.Unlock()
}

// Input feeds answers to prompts.
func (e *Env) Input(s string) {
	e.Ctx.In = strings.NewReader(s)
}

// Output returns and clears everything written so far.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
