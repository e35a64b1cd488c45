package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Format     string          `json:"format,omitempty" yaml:"format,omitempty"` // console, json
	File       string          `json:"file,omitempty" yaml:"file,omitempty"`
	Categories map[string]bool `json:"categories,omitempty" yaml:"categories,omitempty"` // Per-category toggles
}
