// Package adapter contains the infrastructure adapters of the sosie CLI.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "sosie.dev/pkg/sosie/internal/model"
)

// TraceStore loads recorded traces and campaign manifests. It hides direct
// file access so the domain can be tested without touching the disk.
type TraceStore interface {
	// LoadTrace reads one recorded execution.
	LoadTrace(ctx context.Context, path m.Path) (m.Trace, error)

	// LoadManifest reads the list of pairs of a campaign. Relative trace
	// paths are resolved against the manifest directory.
	LoadManifest(ctx context.Context, path m.Path) (m.Manifest, error)
}

// LocalTraceStore reads YAML (or JSON) files from the local filesystem.
type LocalTraceStore struct{}

// NewLocalTraceStore constructs a LocalTraceStore.
func NewLocalTraceStore() *LocalTraceStore {
	return &LocalTraceStore{}
}

// LoadTrace reads and decodes the trace at path.
func (s *LocalTraceStore) LoadTrace(ctx context.Context, path m.Path) (m.Trace, error) {
	var trace m.Trace

	if err := decodeFile(ctx, path, &trace); err != nil {
		return m.Trace{}, err
	}

	if trace.Threads == nil {
		trace.Threads = map[string][]m.Record{}
	}

	slog.Debug("Loaded trace", "path", path, "test", trace.Test, "variant", trace.Variant, "threads", len(trace.Threads))

	return trace, nil
}

// LoadManifest reads and decodes the manifest at path.
func (s *LocalTraceStore) LoadManifest(ctx context.Context, path m.Path) (m.Manifest, error) {
	var manifest m.Manifest

	if err := decodeFile(ctx, path, &manifest); err != nil {
		return m.Manifest{}, err
	}

	base := filepath.Dir(string(path))

	for i, pair := range manifest.Pairs {
		if pair.Reference == "" || pair.Candidate == "" {
			return m.Manifest{}, fmt.Errorf("manifest %s: pair %d is missing a trace path", path, i)
		}

		manifest.Pairs[i].Reference = resolvePath(base, pair.Reference)
		manifest.Pairs[i].Candidate = resolvePath(base, pair.Candidate)
	}

	slog.Debug("Loaded manifest", "path", path, "pairs", len(manifest.Pairs))

	return manifest, nil
}

func resolvePath(base string, path m.Path) m.Path {
	if filepath.IsAbs(string(path)) {
		return path
	}

	return m.Path(filepath.Join(base, string(path)))
}

func decodeFile(ctx context.Context, path m.Path, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		slog.Error("Failed to read file", "path", path, "error", err)
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		slog.Error("Failed to decode file", "path", path, "error", err)
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
