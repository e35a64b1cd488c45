package trainer

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

const (
	// DefaultBinary is the ultralytics command line entry point.
	DefaultBinary = "yolo"

	// DefaultExportFormat targets TensorFlow.js.
	DefaultExportFormat = "tfjs"

	// DefaultBatch matches the batch size the pipeline has always trained with.
	DefaultBatch = 8
)

// TrainOptions configures a training run.
type TrainOptions struct {
	// Data is the dataset manifest (data.yaml).
	Data           string
	Weights        string
	Epochs         int
	ImgSize        int
	Batch          int
	Project        string
	ExperimentName string
}

// ExportOptions configures a model export.
type ExportOptions struct {
	Project        string
	ExperimentName string
	// Format is the ultralytics export format. Defaults to tfjs.
	Format string
}

// Trainer builds yolo invocations and hands them to a Runner.
type Trainer struct {
	binary string
	runner Runner
	logger *zap.Logger
}

// New returns a Trainer using binary (DefaultBinary when empty).
func New(binary string, runner Runner, logger *zap.Logger) *Trainer {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{binary: binary, runner: runner, logger: logger}
}

// WeightsPath is where a finished training run leaves its best checkpoint.
func WeightsPath(project, experiment string) string {
	return filepath.Join(project, experiment, "weights", "best.pt")
}

// TrainCommand returns the yolo command for opts.
func (t *Trainer) TrainCommand(opts TrainOptions) Command {
	batch := opts.Batch
	if batch == 0 {
		batch = DefaultBatch
	}
	return Command{
		Binary: t.binary,
		Arguments: []string{
			"train",
			"data=" + opts.Data,
			"model=" + opts.Weights,
			"epochs=" + strconv.Itoa(opts.Epochs),
			"imgsz=" + strconv.Itoa(opts.ImgSize),
			"batch=" + strconv.Itoa(batch),
			"project=" + opts.Project,
			"name=" + opts.ExperimentName,
		},
	}
}

// Train trains a model on the dataset described by opts.Data.
func (t *Trainer) Train(ctx context.Context, opts TrainOptions) error {
	if opts.Data == "" {
		return fmt.Errorf("dataset manifest required")
	}
	t.logger.Info("Starting training",
		zap.String("data", opts.Data),
		zap.String("weights", opts.Weights),
		zap.Int("epochs", opts.Epochs))

	if err := t.runner.Run(ctx, t.TrainCommand(opts)); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	t.logger.Info("Training complete",
		zap.String("weights", WeightsPath(opts.Project, opts.ExperimentName)))
	return nil
}

// ExportCommand returns the yolo command for opts.
func (t *Trainer) ExportCommand(opts ExportOptions) Command {
	format := opts.Format
	if format == "" {
		format = DefaultExportFormat
	}
	return Command{
		Binary: t.binary,
		Arguments: []string{
			"export",
			"model=" + WeightsPath(opts.Project, opts.ExperimentName),
			"format=" + format,
		},
	}
}

// Export converts the trained model of an experiment.
func (t *Trainer) Export(ctx context.Context, opts ExportOptions) error {
	model := WeightsPath(opts.Project, opts.ExperimentName)
	t.logger.Info("Loading model", zap.String("model", model))

	if err := t.runner.Run(ctx, t.ExportCommand(opts)); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}
