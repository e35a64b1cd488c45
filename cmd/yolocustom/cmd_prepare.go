package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yolocustom/internal/config"
	"yolocustom/internal/dataset"
	"yolocustom/internal/labelstudio"
	"yolocustom/internal/logging"
)

var (
	prepareConfigPath  string
	prepareSeed        uint64
	prepareKeepExports bool
)

// prepareCmd exports annotations and assembles the dataset
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Export annotations from Label Studio and build the dataset",
	Long: `Exports every configured Label Studio project, merges the exports when
there is more than one, splits the images into train/val and writes
<output_dataset_dir>/data.yaml. Downloaded exports are removed afterwards.

Example:
  yolocustom prepare --config configs/zoo.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := prepareOptions{keepExports: prepareKeepExports}
		if cmd.Flags().Changed("seed") {
			seed := prepareSeed
			opts.seed = &seed
		}
		return runPrepare(commandContext(cmd), prepareConfigPath, opts)
	},
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareConfigPath, "config", "c", "", "Configuration file (path or name inside --configs-dir)")
	prepareCmd.Flags().Uint64Var(&prepareSeed, "seed", 0, "Seed the train/val shuffle for a reproducible split")
	prepareCmd.Flags().BoolVar(&prepareKeepExports, "keep-exports", false, "Keep downloaded exports and the merge directory")
}

type prepareOptions struct {
	seed        *uint64
	keepExports bool
}

// errNoExportData is returned when no project produced a usable export.
var errNoExportData = errors.New("no export data found; check your Label Studio projects and export format")

func runPrepare(ctx context.Context, cfgPath string, opts prepareOptions) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	timer := logging.StartTimer(categoryLogger(logging.CategoryDataset), "Dataset preparation")
	defer timer.Stop()

	extracted := exportProjects(ctx, cfg)
	if len(extracted) == 0 {
		return errNoExportData
	}

	seed := cfg.Seed
	if opts.seed != nil {
		seed = opts.seed
	}

	res, err := dataset.Assemble(ctx, dataset.AssembleOptions{
		Exports:      extracted,
		WorkDir:      workDir,
		OutputDir:    cfg.OutputDatasetDir,
		ManifestPath: cfg.ManifestPath(),
		TrainRatio:   cfg.TrainRatio,
		Names:        cfg.Tags,
		Seed:         seed,
		Cleanup:      !opts.keepExports,
		Logger:       categoryLogger(logging.CategoryDataset),
	})
	if err != nil {
		return err
	}

	recordRun(ctx, resolveConfigPath(cfgPath), extracted, res, cfg.Tags, seed)

	fmt.Printf("Dataset ready: %d train, %d val. Manifest: %s\n",
		len(res.Split.Train), len(res.Split.Val), res.ManifestPath)
	fmt.Println("Dataset automation complete. You can now run `yolocustom train` to train your model.")
	return nil
}

// exportProjects downloads every configured project. Failing projects are
// reported and skipped.
func exportProjects(ctx context.Context, cfg *config.Config) []string {
	log := categoryLogger(logging.CategoryLabelStudio)
	client := labelstudio.NewClient(cfg.LabelStudioURL, cfg.APIKey, labelstudio.WithLogger(log))

	log.Info("Exporting projects", zap.String("url", client.BaseURL()), zap.Ints("projects", cfg.ProjectIDs()))

	var extracted []string
	for _, p := range cfg.Projects {
		fmt.Printf("Exporting annotations for project %d...\n", p.ID)
		dir, err := client.Export(ctx, p.ID, cfg.ExportFormat, workDir)
		if err != nil {
			log.Warn("Export failed", zap.Int("project", p.ID), zap.Error(err))
			fmt.Println(err)
			continue
		}
		extracted = append(extracted, dir)
	}
	return extracted
}
