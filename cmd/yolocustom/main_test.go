package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yolocustom/internal/logging"
)

// setupCLI points the global flags at a fresh temp tree and restores the
// prompts and runner afterwards.
func setupCLI(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	logger = zap.NewNop()
	workDir = root
	configsDir = filepath.Join(root, "configs")
	t.Setenv("LABEL_STUDIO_URL", "")
	t.Setenv("LABEL_STUDIO_API_KEY", "")

	origSelect, origMulti, origText, origRunner := selectPrompt, multiSelectPrompt, textPrompt, newRunner
	origRender := renderMarkdown
	renderMarkdown = func(md string) (string, error) { return md, nil }
	t.Cleanup(func() {
		selectPrompt, multiSelectPrompt, textPrompt, newRunner = origSelect, origMulti, origText, origRunner
		renderMarkdown = origRender
		workDir = "."
		configsDir = "configs"
		logging.SetCategories(nil)
	})
	return root
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

func TestResolveConfigPath(t *testing.T) {
	root := setupCLI(t)

	existing := filepath.Join(root, "zoo.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0644))

	assert.Equal(t, "", resolveConfigPath(""))
	assert.Equal(t, existing, resolveConfigPath(existing))
	assert.Equal(t, filepath.Join(configsDir, "farm.json"), resolveConfigPath("farm.json"))
	assert.Equal(t, "missing/farm.json", resolveConfigPath("missing/farm.json"))
}

func TestLoadConfigRequiresPath(t *testing.T) {
	setupCLI(t)

	_, err := loadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config is required")
}

func TestSplitList(t *testing.T) {
	got := splitList(" penguin, turtle ,,seal")
	if diff := cmp.Diff([]string{"penguin", "turtle", "seal"}, got); diff != "" {
		t.Fatalf("splitList mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, splitList(" , "))
}

func TestPromptNumbers(t *testing.T) {
	setupCLI(t)
	var asked []string
	textPrompt = func(title, def string) (string, error) {
		asked = append(asked, title)
		return def, nil
	}

	ratio, err := promptFloat("Train ratio", "", "0.8")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, ratio, 1e-9)

	epochs, err := promptInt("Epochs", "25", "100")
	require.NoError(t, err)
	assert.Equal(t, 25, epochs)

	assert.Equal(t, []string{"Train ratio"}, asked)

	_, err = promptInt("Epochs", "zero", "100")
	assert.Error(t, err)
	_, err = promptInt("Epochs", "0", "100")
	assert.Error(t, err)
	_, err = promptFloat("Train ratio", "abc", "0.8")
	assert.Error(t, err)
}
