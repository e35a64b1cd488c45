package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoExports is returned by Assemble when no export set is supplied.
var ErrNoExports = errors.New("no export data to assemble")

// MergedDirName is the transient merge directory created under WorkDir.
const MergedDirName = "merged_exports"

// AssembleOptions configures one assembly run.
type AssembleOptions struct {
	// Exports are the extracted export sets, in merge order.
	Exports []string

	// WorkDir holds the transient merged directory. Defaults to ".".
	WorkDir string

	// OutputDir is the dataset directory to populate.
	OutputDir string

	// ManifestPath defaults to OutputDir/data.yaml.
	ManifestPath string

	TrainRatio float64

	// Names are the class names in label index order.
	Names []string

	// NC is the class count written to the manifest. Nil means len(Names).
	NC *int

	// Seed, when set, makes the split reproducible.
	Seed *uint64

	// Rand takes precedence over Seed.
	Rand *rand.Rand

	// Cleanup removes every export set after a successful run. The merged
	// directory is always removed after a successful run.
	Cleanup bool

	Logger *zap.Logger
}

// AssembleResult summarizes a completed run.
type AssembleResult struct {
	RunID        string
	Source       string
	Merged       bool
	Split        *SplitResult
	ManifestPath string
	NC           int
	Layout       Layout
}

// Assemble runs merge (for more than one export), split and manifest
// generation in order. Any failure aborts the run before later steps and
// before cleanup.
func Assemble(ctx context.Context, opts AssembleOptions) (*AssembleResult, error) {
	if len(opts.Exports) == 0 {
		return nil, ErrNoExports
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory required")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = filepath.Join(opts.OutputDir, ManifestName)
	}
	nc := len(opts.Names)
	if opts.NC != nil {
		nc = *opts.NC
	}

	base := opts.Logger
	if base == nil {
		base = zap.NewNop()
	}
	runID := uuid.New().String()
	log := base.With(zap.String("run_id", runID[:8]))

	stepOpts := []Option{WithLogger(log)}
	switch {
	case opts.Rand != nil:
		stepOpts = append(stepOpts, WithRand(opts.Rand))
	case opts.Seed != nil:
		stepOpts = append(stepOpts, WithSeed(*opts.Seed))
	}

	result := &AssembleResult{
		RunID:        runID,
		Source:       opts.Exports[0],
		ManifestPath: manifestPath,
		NC:           nc,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mergedDir := filepath.Join(workDir, MergedDirName)
	if len(opts.Exports) > 1 {
		// A merged directory left by a failed run must not leak into this one.
		if err := os.RemoveAll(mergedDir); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", mergedDir, err)
		}
		if err := Merge(opts.Exports, mergedDir, stepOpts...); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		result.Source = mergedDir
		result.Merged = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	split, err := Split(result.Source, opts.OutputDir, opts.TrainRatio, stepOpts...)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	result.Split = split
	result.Layout = NewLayout(opts.OutputDir)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := WriteManifest(opts.OutputDir, manifestPath, nc, opts.Names, stepOpts...); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	if result.Merged {
		removeIfExists(log, mergedDir, "Removing merged directory")
	}
	if opts.Cleanup {
		for _, path := range opts.Exports {
			removeIfExists(log, path, "Removing temporary export directory")
		}
	}

	return result, nil
}

// removeIfExists removes path. Failures are logged only.
func removeIfExists(log *zap.Logger, path, msg string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	log.Info(msg, zap.String("path", path))
	if err := os.RemoveAll(path); err != nil {
		log.Warn("Cleanup failed", zap.String("path", path), zap.Error(err))
	}
}
