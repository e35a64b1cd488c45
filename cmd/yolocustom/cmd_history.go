package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yolocustom/internal/dataset"
	"yolocustom/internal/history"
	"yolocustom/internal/logging"
)

var historyLimit int

// historyCmd lists recorded assembly runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous dataset assembly runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(commandContext(cmd), historyLimit)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show (0 for all)")
}

// renderMarkdown renders md for the terminal; replaced in tests.
var renderMarkdown = func(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// printMarkdown prints md rendered, or raw when rendering fails.
func printMarkdown(md string) {
	out, err := renderMarkdown(md)
	if err != nil {
		categoryLogger(logging.CategoryUI).Debug("Markdown render failed", zap.Error(err))
		out = md
	}
	fmt.Print(out)
}

func historyDir() string {
	return filepath.Join(workDir, history.DefaultDir)
}

// recordRun appends a finished run to the history database. Failures are
// logged only.
func recordRun(ctx context.Context, source string, exports []string, res *dataset.AssembleResult, names []string, seed *uint64) {
	log := categoryLogger(logging.CategoryDataset)

	store, err := history.NewStore(historyDir())
	if err != nil {
		log.Warn("Could not open run history", zap.Error(err))
		return
	}
	defer store.Close()

	base := make([]string, len(exports))
	for i, e := range exports {
		base[i] = filepath.Base(e)
	}

	err = store.Record(ctx, history.Run{
		ID:           res.RunID,
		Config:       source,
		Exports:      base,
		Train:        len(res.Split.Train),
		Val:          len(res.Split.Val),
		NC:           res.NC,
		Names:        names,
		ManifestPath: res.ManifestPath,
		Seed:         seed,
	})
	if err != nil {
		log.Warn("Could not record run", zap.String("run_id", res.RunID), zap.Error(err))
	}
}

func runHistory(ctx context.Context, limit int) error {
	store, err := history.NewStore(historyDir())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	var b strings.Builder
	b.WriteString("# Dataset runs\n\n")
	b.WriteString("| Finished | Source | Train | Val | Classes | Seed | Manifest |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range runs {
		seed := "-"
		if r.Seed != nil {
			seed = fmt.Sprint(*r.Seed)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s | %s |\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
			r.Config, r.Train, r.Val, strings.Join(r.Names, ", "), seed, r.ManifestPath)
	}
	printMarkdown(b.String())
	return nil
}
