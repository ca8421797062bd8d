// Package identity resolves the owner ID that scopes every habit query.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/keyring"
	"github.com/julianstephens/daystreak/internal/logger"
)

var ErrNoOwner = errors.New("no owner id configured, run 'daystreak init' first")

// Source names where an owner ID came from.
type Source string

const (
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
	SourceFile    Source = "file"
)

// Resolver looks up the owner ID from, in order, an explicit override (the
// DAYSTREAK_OWNER value), the OS keyring, and the owner file in ConfigDir.
type Resolver struct {
	Override  string
	ConfigDir string
}

func (r Resolver) ownerFile() string {
	return filepath.Join(r.ConfigDir, constants.OwnerFileName)
}

func (r Resolver) Resolve() (string, Source, error) {
	if id := strings.TrimSpace(r.Override); id != "" {
		return id, SourceEnv, nil
	}

	id, err := keyring.GetOwnerID()
	switch {
	case err == nil:
		return id, SourceKeyring, nil
	case errors.Is(err, keyring.ErrKeyringUnavailable):
		logger.Debug("Keyring unavailable, falling back to owner file", "error", err)
	}

	data, err := os.ReadFile(r.ownerFile())
	if errors.Is(err, os.ErrNotExist) {
		return "", "", ErrNoOwner
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read owner file: %w", err)
	}
	id = strings.TrimSpace(string(data))
	if id == "" {
		return "", "", ErrNoOwner
	}
	return id, SourceFile, nil
}

// Provision returns the existing owner ID or creates a new one. A new ID goes
// to the keyring when available and always to the owner file.
func (r Resolver) Provision() (string, bool, error) {
	id, _, err := r.Resolve()
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, ErrNoOwner) {
		return "", false, err
	}

	id = uuid.NewString()
	if err := keyring.SetOwnerID(id); err != nil {
		logger.Warn("Could not store owner id in keyring", "error", err)
	}

	if err := os.MkdirAll(r.ConfigDir, 0700); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(r.ownerFile(), []byte(id+"\n"), 0600); err != nil {
		return "", false, fmt.Errorf("failed to write owner file: %w", err)
	}

	logger.Info("Provisioned owner id", "owner_id", id)
	return id, true, nil
}
