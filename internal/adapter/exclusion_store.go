package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
	m "sosie.dev/pkg/sosie/internal/model"
)

// ExclusionStore persists the variable keys known to differ between runs.
type ExclusionStore interface {
	// LoadExclusions returns the stored keys; a missing file yields none.
	LoadExclusions(ctx context.Context, path m.Path) ([]string, error)
	SaveExclusions(ctx context.Context, path m.Path, keys []string) error
}

type exclusionFile struct {
	Keys []string `yaml:"keys"`
}

// LocalExclusionStore keeps exclusions in a YAML file.
type LocalExclusionStore struct{}

// NewExclusionStore constructs a LocalExclusionStore.
func NewExclusionStore() *LocalExclusionStore {
	return &LocalExclusionStore{}
}

// LoadExclusions reads the keys stored at path.
func (s *LocalExclusionStore) LoadExclusions(ctx context.Context, path m.Path) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	var file exclusionFile

	err := decodeFile(ctx, path, &file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return file.Keys, nil
}

// SaveExclusions writes keys, sorted, to path.
func (s *LocalExclusionStore) SaveExclusions(ctx context.Context, path m.Path, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create exclusions dir: %w", err)
	}

	sorted := slices.Sorted(slices.Values(keys))

	data, err := yaml.Marshal(exclusionFile{Keys: sorted})
	if err != nil {
		return fmt.Errorf("encode exclusions: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		slog.Error("Failed to write exclusions", "path", path, "error", err)
		return fmt.Errorf("write exclusions: %w", err)
	}

	slog.Debug("Saved exclusions", "path", path, "count", len(sorted))

	return nil
}
