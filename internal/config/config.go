package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigsDir is where dataset configurations are kept.
const DefaultConfigsDir = "configs"

// ErrNoAPIKey is returned by Validate when no Label Studio API key is set.
var ErrNoAPIKey = errors.New("label studio API key not configured (set api_key or LABEL_STUDIO_API_KEY)")

// Config describes one dataset: where its annotations come from, how the
// dataset is split and how the model is trained.
type Config struct {
	APIKey         string    `json:"api_key" yaml:"api_key"`
	LabelStudioURL string    `json:"label_studio_url,omitempty" yaml:"label_studio_url,omitempty"`
	Projects       []Project `json:"projects" yaml:"projects"`

	// Tags are the class names, in label index order.
	Tags         []string `json:"tags" yaml:"tags"`
	ExportFormat string   `json:"export_format" yaml:"export_format"`

	ConfigFilename   string  `json:"config_filename" yaml:"config_filename"`
	OutputDatasetDir string  `json:"output_dataset_dir" yaml:"output_dataset_dir"`
	TrainRatio       float64 `json:"train_ratio" yaml:"train_ratio"`

	// Seed makes the train/val split reproducible when set.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	Training TrainingConfig `json:"training" yaml:"training"`
	Logging  LoggingConfig  `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// Project identifies a Label Studio project.
type Project struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// TrainingConfig configures the YOLO trainer.
type TrainingConfig struct {
	Project        string `json:"project" yaml:"project"`
	ExperimentName string `json:"experiment_name" yaml:"experiment_name"`
	Epochs         int    `json:"epochs" yaml:"epochs"`
	ImgSize        int    `json:"imgsz" yaml:"imgsz"`
	Weights        string `json:"weights" yaml:"weights"`
	Batch          int    `json:"batch,omitempty" yaml:"batch,omitempty"`
	YoloBinary     string `json:"yolo_binary,omitempty" yaml:"yolo_binary,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LabelStudioURL: "http://localhost:8080",
		ExportFormat:   "YOLO_OBB_WITH_IMAGES",
		TrainRatio:     0.8,
		Training: TrainingConfig{
			Project:        "default_project",
			ExperimentName: "default_experiment",
			Epochs:         100,
			ImgSize:        640,
			Weights:        "yolov8n.pt",
			Batch:          8,
			YoloBinary:     "yolo",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// NewProjectConfig builds the configuration the setup wizard saves for a
// single Label Studio project.
func NewProjectConfig(name string, project Project, tags []string, trainRatio float64, epochs int) *Config {
	cfg := DefaultConfig()
	cfg.Projects = []Project{project}
	cfg.Tags = append([]string(nil), tags...)
	cfg.ConfigFilename = name
	cfg.OutputDatasetDir = filepath.ToSlash(filepath.Join("yolo_custom", name))
	cfg.TrainRatio = trainRatio
	cfg.Training.Project = filepath.ToSlash(filepath.Join("yolo_custom", name, "model"))
	cfg.Training.ExperimentName = fmt.Sprintf("experiment_%d", project.ID)
	cfg.Training.Epochs = epochs
	return cfg
}

// isYAML reports whether path should be handled as YAML rather than JSON.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load loads a configuration file. Keys missing from the file keep their
// defaults and environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as JSON, or YAML for .yaml/.yml paths.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("LABEL_STUDIO_URL"); url != "" {
		c.LabelStudioURL = url
	}
	if key := os.Getenv("LABEL_STUDIO_API_KEY"); key != "" {
		c.APIKey = key
	}
}

// ManifestPath returns the data.yaml location inside the output dataset dir.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.OutputDatasetDir, "data.yaml")
}

// ProjectIDs returns the configured Label Studio project ids.
func (c *Config) ProjectIDs() []int {
	ids := make([]int, 0, len(c.Projects))
	for _, p := range c.Projects {
		ids = append(ids, p.ID)
	}
	return ids
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if len(c.Projects) == 0 {
		return fmt.Errorf("no projects configured")
	}
	if len(c.Tags) == 0 {
		return fmt.Errorf("no tags configured")
	}
	if c.OutputDatasetDir == "" {
		return fmt.Errorf("output_dataset_dir not configured")
	}
	if c.TrainRatio < 0 || c.TrainRatio > 1 {
		return fmt.Errorf("invalid train_ratio %v (must be between 0 and 1)", c.TrainRatio)
	}
	return c.Training.Validate()
}

// Validate checks the trainer settings.
func (t *TrainingConfig) Validate() error {
	if t.Epochs <= 0 {
		return fmt.Errorf("invalid epochs %d", t.Epochs)
	}
	if t.ImgSize <= 0 {
		return fmt.Errorf("invalid imgsz %d", t.ImgSize)
	}
	if t.Batch < 0 {
		return fmt.Errorf("invalid batch %d", t.Batch)
	}
	if t.Weights == "" {
		return fmt.Errorf("weights not configured")
	}
	return nil
}

// ListConfigs returns the configuration file names in dir, sorted.
// A missing dir yields no configs.
func ListConfigs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".json" || ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
