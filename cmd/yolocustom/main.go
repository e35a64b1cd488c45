package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yolocustom/internal/config"
	"yolocustom/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configsDir string
	workDir    string
	logFormat  string
	logFile    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "yolocustom",
	Short: "Label Studio to YOLO dataset, training and export pipeline",
	Long: `yolocustom pulls labeled images from Label Studio, assembles them into a
train/val dataset with a data.yaml manifest, and drives the ultralytics YOLO
command line to train and export a model.

Run without arguments to open the interactive menu.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.Options{
			Format:  logFormat,
			File:    logFile,
			Verbose: verbose,
		})
		if err != nil {
			return err
		}
		logging.For(logger, logging.CategoryBoot).Debug("Starting",
			zap.String("command", cmd.CommandPath()),
			zap.String("configs_dir", configsDir),
			zap.String("workdir", workDir))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runMenu,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configsDir, "configs-dir", config.DefaultConfigsDir, "Directory holding dataset configurations")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "w", ".", "Directory for downloaded exports and the transient merge directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(
		configCmd,
		prepareCmd,
		assembleCmd,
		trainCmd,
		exportCmd,
		historyCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// categoryLogger returns the category logger, tolerating an uninitialized
// global logger.
func categoryLogger(cat logging.Category) *zap.Logger {
	return logging.For(logger, cat)
}

// resolveConfigPath accepts either a path or a bare file name inside
// configsDir.
func resolveConfigPath(p string) string {
	if p == "" {
		return ""
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if !strings.ContainsRune(p, os.PathSeparator) && !strings.Contains(p, "/") {
		return filepath.Join(configsDir, p)
	}
	return p
}

// loadConfig loads a dataset configuration and applies its logging section.
func loadConfig(p string) (*config.Config, error) {
	if p == "" {
		return nil, fmt.Errorf("--config is required")
	}
	path := resolveConfigPath(p)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyLoggingConfig(cfg.Logging); err != nil {
		return nil, err
	}
	categoryLogger(logging.CategoryConfig).Debug("Loaded config", zap.String("path", path))
	return cfg, nil
}

// applyLoggingConfig installs category toggles and, when the config asks for
// something other than the defaults, rebuilds the logger.
func applyLoggingConfig(lc config.LoggingConfig) error {
	logging.SetCategories(lc.Categories)

	level := strings.ToLower(lc.Level)
	format := strings.ToLower(lc.Format)
	if lc.File == "" && (level == "" || level == "info") && (format == "" || format == "console") {
		return nil
	}
	if format == "" {
		format = logFormat
	}
	file := lc.File
	if file == "" {
		file = logFile
	}

	l, err := logging.New(logging.Options{
		Level:      lc.Level,
		Format:     format,
		File:       file,
		Verbose:    verbose,
		Categories: lc.Categories,
	})
	if err != nil {
		return err
	}
	if logger != nil {
		_ = logger.Sync()
	}
	logger = l
	return nil
}
