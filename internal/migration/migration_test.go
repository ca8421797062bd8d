package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daystreak/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func memFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, memFS(nil), SQLite)

	version, err := runner.CurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
}

func TestReadMigrations(t *testing.T) {
	runner := NewRunner(nil, memFS(map[string]string{
		"002_second.sql": "SELECT 2;",
		"001_first.sql":  "SELECT 1;",
		"README.md":      "not a migration",
	}), SQLite)

	got, err := runner.ReadMigrations()
	if err != nil {
		t.Fatalf("ReadMigrations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "first" {
		t.Errorf("unexpected first migration: %+v", got[0])
	}
	if got[1].Version != 2 || got[1].Name != "second" {
		t.Errorf("unexpected second migration: %+v", got[1])
	}
}

func TestReadMigrationsRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{name: "no underscore", files: map[string]string{"001.sql": ""}, want: "invalid migration filename"},
		{name: "non numeric", files: map[string]string{"abc_init.sql": ""}, want: "invalid version number"},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}, want: "at least 1"},
		{name: "duplicate", files: map[string]string{"001_a.sql": "", "01_b.sql": ""}, want: "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, memFS(tt.files), SQLite).ReadMigrations()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyIsIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	files := map[string]string{
		"001_first.sql": "CREATE TABLE one (id INTEGER);",
	}
	applied, err := NewRunner(db, memFS(files), SQLite).Apply(ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}

	files["002_second.sql"] = "CREATE TABLE two (id INTEGER);"
	runner := NewRunner(db, memFS(files), SQLite)
	applied, err = runner.Apply(ctx)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected only the new migration to apply, got %d", applied)
	}

	version, err := runner.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	applied, err = runner.Apply(ctx)
	if err != nil || applied != 0 {
		t.Errorf("expected no-op apply, got %d, %v", applied, err)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	runner := NewRunner(db, memFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (;",
	}), SQLite)

	applied, err := runner.Apply(ctx)
	if err == nil {
		t.Fatal("expected Apply to fail on broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}

	version, err := runner.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := memFS(map[string]string{"001_first.sql": "CREATE TABLE one (id INTEGER);"})
	runner := NewRunner(db, files, SQLite)

	if err := runner.Validate(ctx); err == nil || !strings.Contains(err.Error(), "daystreak migrate") {
		t.Errorf("expected pending-migration error, got %v", err)
	}

	if _, err := runner.Apply(ctx); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := runner.Validate(ctx); err != nil {
		t.Errorf("expected valid schema, got %v", err)
	}

	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("failed to bump version: %v", err)
	}
	if err := runner.Validate(ctx); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected newer-schema error, got %v", err)
	}
}

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	sub, err := subFS("sqlite")
	if err != nil {
		t.Fatalf("failed to open embedded migrations: %v", err)
	}
	if _, err := NewRunner(db, sub, SQLite).Apply(ctx); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}

	for _, table := range []string{"habits", "completions"} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if n != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func subFS(dir string) (fstest.MapFS, error) {
	entries, err := migrations.FS.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := fstest.MapFS{}
	for _, e := range entries {
		data, err := migrations.FS.ReadFile(dir + "/" + e.Name())
		if err != nil {
			return nil, err
		}
		out[e.Name()] = &fstest.MapFile{Data: data}
	}
	return out, nil
}
