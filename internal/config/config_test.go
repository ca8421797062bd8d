package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DAYSTREAK_DB", "DAYSTREAK_OWNER", "DAYSTREAK_TIMEZONE", "DAYSTREAK_DEBUG",
		"DAYSTREAK_REDIS_ADDR", "DAYSTREAK_REDIS_PASSWORD", "DAYSTREAK_REDIS_DB",
		"DAYSTREAK_LOCK_TTL", "DAYSTREAK_BACKUP_ON_DELETE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Timezone != "Local" {
		t.Errorf("Timezone = %q, want Local", cfg.Timezone)
	}
	if cfg.LockTTL != 5*time.Second {
		t.Errorf("LockTTL = %s, want 5s", cfg.LockTTL)
	}
	if !cfg.BackupOnDelete {
		t.Error("BackupOnDelete should default to true")
	}
	if cfg.UseRedis() {
		t.Error("UseRedis() should be false without an address")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYSTREAK_DB", "/tmp/habits.json")
	t.Setenv("DAYSTREAK_TIMEZONE", "UTC")
	t.Setenv("DAYSTREAK_REDIS_ADDR", "localhost:6379")
	t.Setenv("DAYSTREAK_REDIS_DB", "2")
	t.Setenv("DAYSTREAK_LOCK_TTL", "750ms")
	t.Setenv("DAYSTREAK_BACKUP_ON_DELETE", "false")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DB != "/tmp/habits.json" || cfg.RedisDB != 2 || cfg.LockTTL != 750*time.Millisecond {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.UseRedis() || cfg.BackupOnDelete {
		t.Errorf("unexpected flags: %+v", cfg)
	}

	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYSTREAK_OWNER", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "DAYSTREAK_OWNER=from-file\nDAYSTREAK_DEBUG=true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DAYSTREAK_DEBUG") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Owner != "from-env" {
		t.Errorf("Owner = %q, want from-env", cfg.Owner)
	}
	if !cfg.Debug {
		t.Error("Debug should be read from the env file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timezone", "DAYSTREAK_TIMEZONE", "Mars/Olympus"},
		{"bad duration", "DAYSTREAK_LOCK_TTL", "soon"},
		{"zero ttl", "DAYSTREAK_LOCK_TTL", "0s"},
		{"negative redis db", "DAYSTREAK_REDIS_DB", "-1"},
		{"bad bool", "DAYSTREAK_DEBUG", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(missingEnvFile(t)); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
