package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yolocustom/internal/dataset"
	"yolocustom/internal/logging"
	"yolocustom/internal/trainer"
)

// newRunner builds the process runner for yolo; replaced in tests.
var newRunner = func() trainer.Runner {
	return trainer.NewExecRunner(categoryLogger(logging.CategoryTrain))
}

var (
	trainConfigPath  string
	exportConfigPath string
	exportFormat     string
)

// trainCmd trains a YOLO model on a prepared dataset
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a YOLO model on a prepared dataset",
	Long: `Runs "yolo train" against <output_dataset_dir>/data.yaml using the
training section of the configuration.

Example:
  yolocustom train --config configs/zoo.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain(commandContext(cmd), trainConfigPath)
	},
}

// exportCmd exports a trained model
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a trained model (default: tfjs)",
	Long: `Runs "yolo export" on <training.project>/<training.experiment_name>/weights/best.pt.

Example:
  yolocustom export --config configs/zoo.json --format tfjs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(commandContext(cmd), exportConfigPath, exportFormat)
	},
}

func init() {
	trainCmd.Flags().StringVarP(&trainConfigPath, "config", "c", "", "Configuration file (path or name inside --configs-dir)")
	exportCmd.Flags().StringVarP(&exportConfigPath, "config", "c", "", "Configuration file (path or name inside --configs-dir)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", trainer.DefaultExportFormat, "Export format passed to yolo")
}

func runTrain(ctx context.Context, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Training.Validate(); err != nil {
		return fmt.Errorf("invalid training config: %w", err)
	}

	log := categoryLogger(logging.CategoryTrain)
	manifestPath := cfg.ManifestPath()
	m, err := dataset.ReadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("dataset not prepared, run `yolocustom prepare` first: %w", err)
	}
	if !m.Consistent() {
		log.Warn("Manifest class count does not match names",
			zap.Int("nc", m.NC), zap.Int("names", len(m.Names)))
	}

	t := trainer.New(cfg.Training.YoloBinary, newRunner(), log)
	fmt.Printf("Training using dataset manifest: %s\n", manifestPath)
	err = t.Train(ctx, trainer.TrainOptions{
		Data:           manifestPath,
		Weights:        cfg.Training.Weights,
		Epochs:         cfg.Training.Epochs,
		ImgSize:        cfg.Training.ImgSize,
		Batch:          cfg.Training.Batch,
		Project:        cfg.Training.Project,
		ExperimentName: cfg.Training.ExperimentName,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Training complete. Weights: %s\n",
		trainer.WeightsPath(cfg.Training.Project, cfg.Training.ExperimentName))
	return nil
}

func runExport(ctx context.Context, cfgPath, format string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	weights := trainer.WeightsPath(cfg.Training.Project, cfg.Training.ExperimentName)
	if _, err := os.Stat(weights); err != nil {
		return fmt.Errorf("trained weights not found, run `yolocustom train` first: %w", err)
	}

	t := trainer.New(cfg.Training.YoloBinary, newRunner(), categoryLogger(logging.CategoryTrain))
	fmt.Printf("Exporting %s to %s\n", weights, formatOrDefault(format))
	return t.Export(ctx, trainer.ExportOptions{
		Project:        cfg.Training.Project,
		ExperimentName: cfg.Training.ExperimentName,
		Format:         format,
	})
}

func formatOrDefault(format string) string {
	if format == "" {
		return trainer.DefaultExportFormat
	}
	return format
}
