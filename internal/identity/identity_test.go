package identity

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/daystreak/internal/keyring"
)

func TestResolveOrder(t *testing.T) {
	gokeyring.MockInit()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "owner"), []byte("file-owner\n"), 0600); err != nil {
		t.Fatal(err)
	}

	r := Resolver{ConfigDir: dir}
	id, src, err := r.Resolve()
	if err != nil || id != "file-owner" || src != SourceFile {
		t.Fatalf("Resolve() = %q, %q, %v; want file-owner from file", id, src, err)
	}

	if err := keyring.SetOwnerID("keyring-owner"); err != nil {
		t.Fatal(err)
	}
	id, src, err = r.Resolve()
	if err != nil || id != "keyring-owner" || src != SourceKeyring {
		t.Fatalf("Resolve() = %q, %q, %v; want keyring-owner from keyring", id, src, err)
	}

	r.Override = " env-owner "
	id, src, err = r.Resolve()
	if err != nil || id != "env-owner" || src != SourceEnv {
		t.Fatalf("Resolve() = %q, %q, %v; want env-owner from environment", id, src, err)
	}
}

func TestResolveWithoutOwner(t *testing.T) {
	gokeyring.MockInit()

	_, _, err := Resolver{ConfigDir: t.TempDir()}.Resolve()
	if !errors.Is(err, ErrNoOwner) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrNoOwner)
	}
}

func TestProvision(t *testing.T) {
	gokeyring.MockInit()
	r := Resolver{ConfigDir: filepath.Join(t.TempDir(), "daystreak")}

	id, created, err := r.Provision()
	if err != nil {
		t.Fatalf("Provision() failed: %v", err)
	}
	if !created || id == "" {
		t.Fatalf("Provision() = %q, %v; want a new id", id, created)
	}

	data, err := os.ReadFile(filepath.Join(r.ConfigDir, "owner"))
	if err != nil {
		t.Fatalf("owner file not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != id {
		t.Errorf("owner file = %q, want %q", data, id)
	}

	again, created, err := r.Provision()
	if err != nil || created || again != id {
		t.Errorf("second Provision() = %q, %v, %v; want existing %q", again, created, err, id)
	}
}

func TestProvisionWithoutKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(gokeyring.MockInit)
	r := Resolver{ConfigDir: t.TempDir()}

	id, created, err := r.Provision()
	if err != nil || !created {
		t.Fatalf("Provision() = %q, %v, %v", id, created, err)
	}

	got, src, err := r.Resolve()
	if err != nil || got != id || src != SourceFile {
		t.Errorf("Resolve() = %q, %q, %v; want %q from file", got, src, err, id)
	}
}
