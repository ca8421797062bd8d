// Package export writes an owner's snapshot in a portable text format.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML}

// ParseFormat accepts a format name case-insensitively; "yml" means YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", apperrors.Validation("format", name, "expected json or yaml")
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

func Write(w io.Writer, snap models.Snapshot, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot as json: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot as yaml: %w", err)
		}
		return enc.Close()
	}
	return apperrors.Validation("format", string(format), "expected json or yaml")
}
