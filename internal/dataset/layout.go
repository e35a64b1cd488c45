package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// Directory names shared by export sets and dataset partitions.
const (
	ImagesDir = "images"
	LabelsDir = "labels"
	TrainDir  = "train"
	ValDir    = "val"

	// LabelExt is the extension of a YOLO label file.
	LabelExt = ".txt"

	// ManifestName is the default manifest file name inside a dataset directory.
	ManifestName = "data.yaml"
)

// Layout holds the four partition folders of a dataset directory.
type Layout struct {
	Root        string
	TrainImages string
	TrainLabels string
	ValImages   string
	ValLabels   string
}

// NewLayout returns the layout rooted at root without touching the filesystem.
func NewLayout(root string) Layout {
	return Layout{
		Root:        root,
		TrainImages: filepath.Join(root, TrainDir, ImagesDir),
		TrainLabels: filepath.Join(root, TrainDir, LabelsDir),
		ValImages:   filepath.Join(root, ValDir, ImagesDir),
		ValLabels:   filepath.Join(root, ValDir, LabelsDir),
	}
}

// CreateDirs creates the train/val image and label folders under root.
func CreateDirs(root string) (Layout, error) {
	l := NewLayout(root)
	for _, dir := range []string{l.TrainImages, l.TrainLabels, l.ValImages, l.ValLabels} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Layout{}, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return l, nil
}

// ResetDirs empties the train/val image and label folders under root and
// recreates them, so a dataset directory only ever holds one partition.
// Other entries under root, such as data.yaml, are left alone.
func ResetDirs(root string) (Layout, error) {
	l := NewLayout(root)
	for _, dir := range []string{l.TrainImages, l.TrainLabels, l.ValImages, l.ValLabels} {
		if err := os.RemoveAll(dir); err != nil {
			return Layout{}, fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	}
	return CreateDirs(root)
}

// LabelName maps an image file name to its label file name.
func LabelName(image string) string {
	return image[:len(image)-len(filepath.Ext(image))] + LabelExt
}
