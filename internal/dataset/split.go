package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// imageExts are the image extensions picked up by Split, lower-cased.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// SplitResult lists the image file names assigned to each partition.
type SplitResult struct {
	Train []string
	Val   []string
}

// Total is the number of qualifying images that were split.
func (r *SplitResult) Total() int {
	return len(r.Train) + len(r.Val)
}

// TrainCount returns floor(count*ratio) clamped to [0, count].
// A NaN ratio yields zero.
func TrainCount(count int, ratio float64) int {
	if count <= 0 || math.IsNaN(ratio) || ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return count
	}
	return int(math.Floor(float64(count) * ratio))
}

// Split shuffles the images of the export set at src and copies them into the
// train and val partitions of the dataset directory dst, taking the first
// TrainCount(n, ratio) shuffled images for training. Each image's label file
// follows it when present.
//
// ratio is not validated: values outside [0,1] produce an empty or a full
// train partition. The source images/ folder must exist. Partition folders
// already present under dst are emptied first.
func Split(src, dst string, ratio float64, opts ...Option) (*SplitResult, error) {
	o := newOptions(opts)
	log := o.logger

	imagesDir := filepath.Join(src, ImagesDir)
	labelsDir := filepath.Join(src, LabelsDir)

	images, err := listImages(imagesDir)
	if err != nil {
		return nil, err
	}

	layout, err := ResetDirs(dst)
	if err != nil {
		return nil, err
	}

	log.Info("Splitting dataset",
		zap.String("source", src),
		zap.String("dest", dst),
		zap.Int("images", len(images)),
		zap.Float64("train_ratio", ratio))

	o.shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})

	n := TrainCount(len(images), ratio)
	result := &SplitResult{
		Train: images[:n],
		Val:   images[n:],
	}

	if err := copyPartition(result.Train, imagesDir, labelsDir, layout.TrainImages, layout.TrainLabels); err != nil {
		return nil, err
	}
	if err := copyPartition(result.Val, imagesDir, labelsDir, layout.ValImages, layout.ValLabels); err != nil {
		return nil, err
	}

	log.Info(fmt.Sprintf("Dataset created: %d training items, %d validation items.", len(result.Train), len(result.Val)),
		zap.Int("train", len(result.Train)),
		zap.Int("val", len(result.Val)))
	return result, nil
}

// listImages returns the qualifying image names in dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read images directory: %w", err)
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		images = append(images, e.Name())
	}
	return images, nil
}

func copyPartition(images []string, imagesDir, labelsDir, imagesDst, labelsDst string) error {
	for _, name := range images {
		if err := copyFile(filepath.Join(imagesDir, name), filepath.Join(imagesDst, name)); err != nil {
			return fmt.Errorf("failed to copy image %s: %w", name, err)
		}

		label := LabelName(name)
		src := filepath.Join(labelsDir, label)
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat label %s: %w", label, err)
		}
		if err := copyFile(src, filepath.Join(labelsDst, label)); err != nil {
			return fmt.Errorf("failed to copy label %s: %w", label, err)
		}
	}
	return nil
}
