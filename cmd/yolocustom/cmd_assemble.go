package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yolocustom/internal/dataset"
	"yolocustom/internal/logging"
)

var (
	assembleOut      string
	assembleNames    []string
	assembleNC       int
	assembleRatio    float64
	assembleSeed     uint64
	assembleManifest string
	assembleCleanup  bool
)

// assembleCmd builds a dataset from export directories already on disk
var assembleCmd = &cobra.Command{
	Use:   "assemble [export-dir...]",
	Short: "Build a train/val dataset from extracted export directories",
	Long: `Runs the dataset assembler on local export directories (each with images/
and labels/), without contacting Label Studio.

Example:
  yolocustom assemble --out yolo_custom/zoo --names penguin,turtle export_project_1 export_project_2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "Dataset output directory")
	assembleCmd.Flags().StringSliceVar(&assembleNames, "names", nil, "Class names in label index order")
	assembleCmd.Flags().IntVar(&assembleNC, "nc", 0, "Class count written to the manifest (default: number of names)")
	assembleCmd.Flags().Float64Var(&assembleRatio, "ratio", 0.8, "Fraction of images assigned to train")
	assembleCmd.Flags().Uint64Var(&assembleSeed, "seed", 0, "Seed the shuffle for a reproducible split")
	assembleCmd.Flags().StringVar(&assembleManifest, "manifest", "", "Manifest path (default: <out>/data.yaml)")
	assembleCmd.Flags().BoolVar(&assembleCleanup, "cleanup", false, "Remove the export directories after a successful run")
	_ = assembleCmd.MarkFlagRequired("out")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	if assembleOut == "" {
		return fmt.Errorf("--out is required")
	}

	opts := dataset.AssembleOptions{
		Exports:      args,
		WorkDir:      workDir,
		OutputDir:    assembleOut,
		ManifestPath: assembleManifest,
		TrainRatio:   assembleRatio,
		Names:        assembleNames,
		Cleanup:      assembleCleanup,
		Logger:       categoryLogger(logging.CategoryDataset),
	}
	if cmd.Flags().Changed("nc") {
		nc := assembleNC
		opts.NC = &nc
	}
	if cmd.Flags().Changed("seed") {
		seed := assembleSeed
		opts.Seed = &seed
	}

	ctx := commandContext(cmd)
	res, err := dataset.Assemble(ctx, opts)
	if err != nil {
		return err
	}
	recordRun(ctx, "assemble", args, res, assembleNames, opts.Seed)

	fmt.Printf("Dataset ready: %d train, %d val. Manifest: %s\n",
		len(res.Split.Train), len(res.Split.Val), res.ManifestPath)
	return nil
}
