package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAPIKeyFile is where the Label Studio API key is remembered between
// runs of the setup wizard.
const DefaultAPIKeyFile = ".apikey"

// LoadAPIKey returns the saved API key, or "" if none was saved.
func LoadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveAPIKey stores key at path, readable by the owner only.
func SaveAPIKey(path, key string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create api key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(key), 0600); err != nil {
		return fmt.Errorf("failed to write api key: %w", err)
	}
	return nil
}
