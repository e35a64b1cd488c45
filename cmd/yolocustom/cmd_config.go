package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yolocustom/cmd/yolocustom/ui"
	"yolocustom/internal/config"
	"yolocustom/internal/labelstudio"
	"yolocustom/internal/logging"
)

// Interactive prompts, replaceable in tests.
var (
	selectPrompt      = ui.Select
	multiSelectPrompt = ui.MultiSelect
	textPrompt        = ui.Prompt
)

const defaultTags = "penguin,turtle"

var (
	newConfigProject    int
	newConfigTags       []string
	newConfigTrainRatio string
	newConfigEpochs     string
	newConfigName       string
	newConfigURL        string
	newConfigAPIKey     string
)

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dataset configurations",
}

var configNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a configuration for a Label Studio project",
	Long: `Walks through creating a dataset configuration. Values given as flags are
not asked for.

Example:
  yolocustom config new --project 3 --tags penguin,turtle --name zoo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runConfigNew(commandContext(cmd), newConfigOptions{
			projectID:  newConfigProject,
			tags:       newConfigTags,
			trainRatio: newConfigTrainRatio,
			epochs:     newConfigEpochs,
			name:       newConfigName,
			url:        newConfigURL,
			apiKey:     newConfigAPIKey,
		})
		return err
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := config.ListConfigs(configsDir)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Printf("No configurations in %s. Create one with `yolocustom config new`.\n", configsDir)
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <config>",
	Short: "Print a configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		printMarkdown(describeConfig(cfg))
		return nil
	},
}

func init() {
	configNewCmd.Flags().IntVar(&newConfigProject, "project", 0, "Label Studio project ID")
	configNewCmd.Flags().StringSliceVar(&newConfigTags, "tags", nil, "Class names in label index order")
	configNewCmd.Flags().StringVar(&newConfigTrainRatio, "train-ratio", "", "Fraction of images used for training (default 0.8)")
	configNewCmd.Flags().StringVar(&newConfigEpochs, "epochs", "", "Training epochs (default 100)")
	configNewCmd.Flags().StringVar(&newConfigName, "name", "", "Configuration name")
	configNewCmd.Flags().StringVar(&newConfigURL, "url", "", "Label Studio URL (default $LABEL_STUDIO_URL or http://localhost:8080)")
	configNewCmd.Flags().StringVar(&newConfigAPIKey, "api-key", "", "Label Studio API key (saved to .apikey)")

	configCmd.AddCommand(configNewCmd, configListCmd, configShowCmd)
}

type newConfigOptions struct {
	projectID  int
	tags       []string
	trainRatio string
	epochs     string
	name       string
	url        string
	apiKey     string
}

// runConfigNew creates and saves a configuration, prompting for anything the
// options leave empty. It returns the saved file path.
func runConfigNew(ctx context.Context, opts newConfigOptions) (string, error) {
	log := categoryLogger(logging.CategoryConfig)

	apiKey, err := resolveAPIKey(opts.apiKey)
	if err != nil {
		return "", err
	}

	baseURL := opts.url
	if baseURL == "" {
		baseURL = os.Getenv("LABEL_STUDIO_URL")
	}
	if baseURL == "" {
		baseURL = config.DefaultConfig().LabelStudioURL
	}

	client := labelstudio.NewClient(baseURL, apiKey,
		labelstudio.WithLogger(categoryLogger(logging.CategoryLabelStudio)))

	project, err := chooseProject(ctx, client, opts.projectID)
	if err != nil {
		return "", err
	}

	tags := opts.tags
	if len(tags) == 0 {
		tags, err = chooseTags(ctx, client, project.ID)
		if err != nil {
			return "", err
		}
	}

	ratio, err := promptFloat("Train ratio", opts.trainRatio, "0.8")
	if err != nil {
		return "", err
	}
	if ratio < 0 || ratio > 1 {
		return "", fmt.Errorf("train ratio must be between 0 and 1, got %g", ratio)
	}
	epochs, err := promptInt("Epochs", opts.epochs, "100")
	if err != nil {
		return "", err
	}

	name := opts.name
	if name == "" {
		name, err = textPrompt("Configuration name", "new_config")
		if err != nil {
			return "", err
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("configuration name must not be empty")
	}

	cfg := config.NewProjectConfig(name, project, tags, ratio, epochs)
	cfg.APIKey = apiKey
	cfg.LabelStudioURL = baseURL

	path := filepath.Join(configsDir, name+".json")
	if err := cfg.Save(path); err != nil {
		return "", err
	}
	log.Info("Configuration saved", zap.String("path", path), zap.Int("project", project.ID))
	fmt.Printf("New configuration saved to %s\n", path)
	return path, nil
}

// resolveAPIKey takes the key from the flag, the environment, .apikey or a
// prompt, in that order. Only keys given by flag or prompt are stored in
// .apikey.
func resolveAPIKey(flagKey string) (string, error) {
	keyFile := filepath.Join(workDir, config.DefaultAPIKeyFile)

	if key := strings.TrimSpace(flagKey); key != "" {
		return key, config.SaveAPIKey(keyFile, key)
	}
	if key := strings.TrimSpace(os.Getenv("LABEL_STUDIO_API_KEY")); key != "" {
		return key, nil
	}

	stored, err := config.LoadAPIKey(keyFile)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}

	entered, err := textPrompt("Label Studio API key", "")
	if err != nil {
		return "", err
	}
	key := strings.TrimSpace(entered)
	if key == "" {
		return "", config.ErrNoAPIKey
	}
	if err := config.SaveAPIKey(keyFile, key); err != nil {
		return "", err
	}
	return key, nil
}

func chooseProject(ctx context.Context, client *labelstudio.Client, id int) (config.Project, error) {
	if id > 0 {
		p, err := client.GetProject(ctx, id)
		if err != nil {
			return config.Project{}, err
		}
		return config.Project{ID: p.ID, Name: p.DisplayName()}, nil
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return config.Project{}, err
	}
	if len(projects) == 0 {
		return config.Project{}, errors.New("no projects found in Label Studio")
	}

	choices := make([]string, len(projects))
	for i, p := range projects {
		choices[i] = fmt.Sprintf("%s (ID: %d)", p.DisplayName(), p.ID)
	}
	idx, err := selectPrompt("Select a Label Studio project", choices)
	if err != nil {
		return config.Project{}, err
	}
	if idx < 0 || idx >= len(projects) {
		return config.Project{}, fmt.Errorf("invalid project selection %d", idx)
	}
	p := projects[idx]
	return config.Project{ID: p.ID, Name: p.DisplayName()}, nil
}

// chooseTags offers the project's labels, falling back to a free-form list
// when the project has none.
func chooseTags(ctx context.Context, client *labelstudio.Client, projectID int) ([]string, error) {
	labels, err := client.ProjectLabels(ctx, projectID)
	if err != nil && !errors.Is(err, labelstudio.ErrNoLabels) {
		categoryLogger(logging.CategoryLabelStudio).Warn("Could not read project labels",
			zap.Int("project", projectID), zap.Error(err))
	}

	if len(labels) > 0 {
		tags, err := multiSelectPrompt("Select the classes to train on", labels, labels)
		if err != nil {
			return nil, err
		}
		if len(tags) == 0 {
			return nil, errors.New("at least one class must be selected")
		}
		return tags, nil
	}

	raw, err := textPrompt("Tags (comma separated)", defaultTags)
	if err != nil {
		return nil, err
	}
	tags := splitList(raw)
	if len(tags) == 0 {
		return nil, errors.New("at least one tag is required")
	}
	return tags, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func promptFloat(title, value, def string) (float64, error) {
	if value == "" {
		var err error
		if value, err = textPrompt(title, def); err != nil {
			return 0, err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(title), value, err)
	}
	return f, nil
}

func promptInt(title, value, def string) (int, error) {
	if value == "" {
		var err error
		if value, err = textPrompt(title, def); err != nil {
			return 0, err
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(title), value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", strings.ToLower(title), n)
	}
	return n, nil
}

// describeConfig summarizes cfg as markdown. The API key is never shown.
func describeConfig(cfg *config.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.ConfigFilename)
	fmt.Fprintf(&b, "- **Label Studio:** %s\n", cfg.LabelStudioURL)
	for _, p := range cfg.Projects {
		fmt.Fprintf(&b, "- **Project:** %s (ID: %d)\n", p.Name, p.ID)
	}
	fmt.Fprintf(&b, "- **Classes:** %s\n", strings.Join(cfg.Tags, ", "))
	fmt.Fprintf(&b, "- **Export format:** %s\n", cfg.ExportFormat)
	fmt.Fprintf(&b, "- **Dataset:** %s (train ratio %g)\n", cfg.OutputDatasetDir, cfg.TrainRatio)
	if cfg.Seed != nil {
		fmt.Fprintf(&b, "- **Seed:** %d\n", *cfg.Seed)
	}
	fmt.Fprintf(&b, "\n## Training\n\n")
	fmt.Fprintf(&b, "- **Weights:** %s\n", cfg.Training.Weights)
	fmt.Fprintf(&b, "- **Epochs:** %d, **imgsz:** %d, **batch:** %d\n",
		cfg.Training.Epochs, cfg.Training.ImgSize, cfg.Training.Batch)
	fmt.Fprintf(&b, "- **Output:** %s/%s\n", cfg.Training.Project, cfg.Training.ExperimentName)
	return b.String()
}
