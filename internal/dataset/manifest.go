package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manifest is the data.yaml consumed by the YOLO trainer.
type Manifest struct {
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// NewManifest builds the manifest for the dataset directory datasetDir.
// nc is taken as given and is not checked against len(names).
func NewManifest(datasetDir string, nc int, names []string) (*Manifest, error) {
	abs, err := filepath.Abs(datasetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset directory: %w", err)
	}
	layout := NewLayout(abs)
	return &Manifest{
		Train: layout.TrainImages,
		Val:   layout.ValImages,
		NC:    nc,
		Names: append([]string(nil), names...),
	}, nil
}

// Consistent reports whether NC matches the number of names.
func (m *Manifest) Consistent() bool {
	return m.NC == len(m.Names)
}

// Encode renders the manifest. Paths are double-quoted and names keep their
// order; the output is stable for equal manifests.
func (m *Manifest) Encode() ([]byte, error) {
	names := &yaml.Node{Kind: yaml.SequenceNode}
	for _, name := range m.Names {
		names.Content = append(names.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})
	}

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			keyNode("train"), {Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: m.Train},
			keyNode("val"), {Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: m.Val},
			keyNode("nc"), {Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(m.NC)},
			keyNode("names"), names,
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: key}
}

// WriteManifest writes the data.yaml for datasetDir to manifestPath.
func WriteManifest(datasetDir, manifestPath string, nc int, names []string, opts ...Option) error {
	o := newOptions(opts)

	m, err := NewManifest(datasetDir, nc, names)
	if err != nil {
		return err
	}
	data, err := m.Encode()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	o.logger.Info(fmt.Sprintf("data.yaml generated at %s", manifestPath),
		zap.Int("nc", nc),
		zap.Strings("names", names))
	return nil
}

// ReadManifest parses a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
