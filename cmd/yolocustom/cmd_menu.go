package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yolocustom/cmd/yolocustom/ui"
	"yolocustom/internal/config"
	"yolocustom/internal/logging"
)

const (
	menuCreate  = "Create a new configuration"
	menuPrepare = "Prepare dataset"
	menuTrain   = "Train based on configuration"
	menuExport  = "Export model to tfjs"
	menuQuit    = "Quit"
)

// runMenu is the interactive main loop started by the bare command.
func runMenu(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	log := categoryLogger(logging.CategoryUI)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		configs, err := config.ListConfigs(configsDir)
		if err != nil {
			return err
		}

		choices := []string{menuCreate, menuQuit}
		if len(configs) > 0 {
			choices = []string{menuCreate, menuPrepare, menuTrain, menuExport, menuQuit}
		}

		idx, err := selectPrompt("What would you like to do?", choices)
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Println("Exiting...")
			return nil
		}
		if err != nil {
			return err
		}

		action := choices[idx]
		if action == menuQuit {
			fmt.Println("Exiting...")
			return nil
		}

		if err := runMenuAction(ctx, action, configs); err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				continue
			}
			log.Debug("Menu action failed", zap.String("action", action), zap.Error(err))
			fmt.Println("Error:", err)
		}
	}
}

func runMenuAction(ctx context.Context, action string, configs []string) error {
	if action == menuCreate {
		_, err := runConfigNew(ctx, newConfigOptions{})
		return err
	}

	cfgPath, err := chooseConfig(configs)
	if err != nil {
		return err
	}

	switch action {
	case menuPrepare:
		return runPrepare(ctx, cfgPath, prepareOptions{})
	case menuTrain:
		return runTrain(ctx, cfgPath)
	case menuExport:
		return runExport(ctx, cfgPath, "tfjs")
	}
	return fmt.Errorf("unknown action %q", action)
}

func chooseConfig(configs []string) (string, error) {
	idx, err := selectPrompt("Select a configuration", configs)
	if err != nil {
		return "", err
	}
	return filepath.Join(configsDir, configs[idx]), nil
}
