package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Merge copies the images/ and labels/ folders of every export set into dst,
// creating dst/images and dst/labels as needed.
//
// Export sets are processed in order, so when two of them hold a file with
// the same name the later one overwrites the earlier one. An export set
// lacking images/ or labels/ simply contributes nothing for that side.
func Merge(exports []string, dst string, opts ...Option) error {
	o := newOptions(opts)
	log := o.logger

	imagesDst := filepath.Join(dst, ImagesDir)
	labelsDst := filepath.Join(dst, LabelsDir)
	for _, dir := range []string{imagesDst, labelsDst} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	log.Info("Merging exports", zap.Int("exports", len(exports)), zap.String("dest", dst))

	var images, labels int
	for _, export := range exports {
		n, err := copyDirFiles(filepath.Join(export, ImagesDir), imagesDst)
		if err != nil {
			return fmt.Errorf("merge images from %s: %w", export, err)
		}
		images += n

		n, err = copyDirFiles(filepath.Join(export, LabelsDir), labelsDst)
		if err != nil {
			return fmt.Errorf("merge labels from %s: %w", export, err)
		}
		labels += n

		log.Debug("Merged export", zap.String("export", export))
	}

	log.Info("Exports merged",
		zap.String("dest", dst),
		zap.Int("images_copied", images),
		zap.Int("labels_copied", labels))
	return nil
}
