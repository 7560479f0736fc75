package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	m "sosie.dev/pkg/sosie/internal/model"
)

const (
	reportFilePrefix = "report_"
	reportFileExt    = ".yaml"
	shardDirPrefix   = "shard_"
)

// ReportStore persists comparison reports in a directory.
type ReportStore interface {
	SaveReports(ctx context.Context, dir m.Path, reports []m.Report) error
	LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error)
	// ShardDirs lists the shard_* subdirectories written by sharded campaigns.
	ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error)
	// RemoveDir deletes a directory and its contents.
	RemoveDir(ctx context.Context, dir m.Path) error
}

// LocalReportStore writes one YAML file per report.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// ShardDir returns the report directory of a shard.
func ShardDir(dir m.Path, index int) m.Path {
	return m.Path(filepath.Join(string(dir), fmt.Sprintf("%s%d", shardDirPrefix, index)))
}

// SaveReports writes reports to dir, creating it when needed.
func (s *LocalReportStore) SaveReports(ctx context.Context, dir m.Path, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		slog.Error("Failed to create reports dir", "dir", dir, "error", err)
		return fmt.Errorf("create reports dir: %w", err)
	}

	for _, report := range reports {
		if report.ID == "" {
			return fmt.Errorf("report for %s has no id", report.Test)
		}

		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encode report %s: %w", report.ID, err)
		}

		path := filepath.Join(string(dir), reportFilePrefix+report.ID+reportFileExt)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			slog.Error("Failed to write report", "path", path, "error", err)
			return fmt.Errorf("write report %s: %w", report.ID, err)
		}
	}

	slog.Debug("Saved reports", "dir", dir, "count", len(reports))

	return nil
}

// LoadReports reads every report in dir, ordered by test then id.
func (s *LocalReportStore) LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(string(dir), reportFilePrefix+"*"+reportFileExt))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]m.Report, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("Failed to read report", "path", path, "error", err)
			return nil, fmt.Errorf("read report %s: %w", path, err)
		}

		var report m.Report
		if err := yaml.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", path, err)
		}

		reports = append(reports, report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Test != reports[j].Test {
			return reports[i].Test < reports[j].Test
		}

		return reports[i].ID < reports[j].ID
	})

	return reports, nil
}

// ShardDirs returns the shard directories under dir in name order.
func (s *LocalReportStore) ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var shards []m.Path

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), shardDirPrefix) {
			shards = append(shards, m.Path(filepath.Join(string(dir), entry.Name())))
		}
	}

	return shards, nil
}

// RemoveDir removes dir and everything below it.
func (s *LocalReportStore) RemoveDir(ctx context.Context, dir m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.RemoveAll(string(dir))
}
