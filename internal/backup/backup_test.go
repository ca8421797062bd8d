package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daystreak/internal/storage/sqlite"
	"github.com/julianstephens/daystreak/internal/storage/storagetest"
)

// setupTestDB creates an initialized daystreak database with one habit.
func setupTestDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "daystreak.db")

	s := sqlite.New(dbPath)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	if err := s.SaveHabit(ctx, storagetest.Habit("h1", "owner-1", "Read")); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	return dbPath
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func habitCount(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&n); err != nil {
		t.Fatalf("failed to count habits in %s: %v", path, err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 1, 8, 30, 15, 0, time.Local))

	path, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(path) != "daystreak-20240301-083015.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written outside %s", mgr.Dir())
	}
	if n := habitCount(t, path); n != 1 {
		t.Errorf("backup holds %d habits, want 1", n)
	}
}

func TestCreateNameCollision(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 1, 8, 30, 15, 0, time.Local))
	ctx := context.Background()

	first, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first == second {
		t.Fatal("backups with the same timestamp must not overwrite each other")
	}
	if !strings.HasSuffix(second, "-1.db") {
		t.Errorf("expected counter suffix, got %s", filepath.Base(second))
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 || backups[0].Path != second {
		t.Errorf("expected the counter backup first, got %+v", backups)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestListOrderAndFiltering(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"daystreak-20240101-120000.db",
		"daystreak-20240301-120000.db",
		"daystreak-20240201-120000.db",
		"daystreak-garbage.db",
		"notes.txt",
		"daystreak-20240201-120000-x.db",
	} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var names []string
	for _, b := range backups {
		names = append(names, filepath.Base(b.Path))
	}
	want := []string{"daystreak-20240301-120000.db", "daystreak-20240201-120000.db", "daystreak-20240101-120000.db"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "daystreak.db"))
	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Errorf("List() = %v, %v; want empty", backups, err)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.keep = 3
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	var paths []string
	for i := 0; i < 5; i++ {
		mgr.now = fixedClock(start.Add(time.Duration(i) * time.Minute))
		p, err := mgr.Create(ctx)
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		paths = append(paths, p)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	for _, old := range paths[:2] {
		if _, err := os.Stat(old); !os.IsNotExist(err) {
			t.Errorf("old backup %s should have been removed", filepath.Base(old))
		}
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	backupPath, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Add a second habit after the backup.
	s := sqlite.New(dbPath)
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveHabit(ctx, storagetest.Habit("h2", "owner-1", "Run")); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if n := habitCount(t, dbPath); n != 2 {
		t.Fatalf("expected 2 habits before restore, got %d", n)
	}

	mgr.now = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	safety, err := mgr.Restore(ctx, backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n := habitCount(t, dbPath); n != 1 {
		t.Errorf("expected 1 habit after restore, got %d", n)
	}
	if n := habitCount(t, safety); n != 2 {
		t.Errorf("safety backup should hold the pre-restore state, got %d habits", n)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file should not remain")
	}
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	ctx := context.Background()

	if _, err := mgr.Restore(ctx, filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	junk := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(junk, []byte("this is not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(ctx, junk); err == nil {
		t.Error("expected error for corrupted backup")
	}

	foreign := filepath.Join(t.TempDir(), "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE other (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := mgr.Restore(ctx, foreign); err == nil || !strings.Contains(err.Error(), "not a daystreak database") {
		t.Errorf("expected schema check failure, got %v", err)
	}

	if n := habitCount(t, dbPath); n != 1 {
		t.Errorf("failed restores must leave the database untouched, got %d habits", n)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		counter int
	}{
		{"daystreak-20240301-083015.db", true, 0},
		{"daystreak-20240301-083015-3.db", true, 3},
		{"daystreak-20240301-0830.db", false, 0},
		{"daystreak-20240301-083015x.db", false, 0},
		{"other-20240301-083015.db", false, 0},
	}
	for _, tt := range tests {
		_, counter, ok := parseName(tt.name)
		if ok != tt.ok || counter != tt.counter {
			t.Errorf("parseName(%q) = %d, %v; want %d, %v", tt.name, counter, ok, tt.counter, tt.ok)
		}
	}
}
