package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExport(t *testing.T, images int) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "export")
	files := map[string]string{}
	for i := 0; i < images; i++ {
		files[fmt.Sprintf("images/img%02d.jpg", i)] = fmt.Sprintf("image %d", i)
		files[fmt.Sprintf("labels/img%02d.txt", i)] = fmt.Sprintf("0 label %d", i)
	}
	writeFiles(t, src, files)
	return src
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPG", true},
		{"a.jpeg", true},
		{"a.Jpeg", true},
		{"a.png", true},
		{"a.PNG", true},
		{"a.gif", false},
		{"a.txt", false},
		{"jpg", false},
		{"a.png.bak", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsImage(tt.name))
		})
	}
}

func TestLabelName(t *testing.T) {
	assert.Equal(t, "a.txt", LabelName("a.png"))
	assert.Equal(t, "frame.001.txt", LabelName("frame.001.JPG"))
	assert.Equal(t, "noext.txt", LabelName("noext"))
}

func TestTrainCount(t *testing.T) {
	tests := []struct {
		count int
		ratio float64
		want  int
	}{
		{10, 0.8, 8},
		{10, 0.85, 8},
		{3, 0.5, 1},
		{1, 0.5, 0},
		{1, 0.99, 0},
		{1, 1, 1},
		{7, 0, 0},
		{7, 1, 7},
		{7, -0.5, 0},
		{7, 1.5, 7},
		{7, math.NaN(), 0},
		{0, 0.8, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%v", tt.count, tt.ratio), func(t *testing.T) {
			assert.Equal(t, tt.want, TrainCount(tt.count, tt.ratio))
		})
	}
}

func TestSplit_PartitionIsDisjointAndTotal(t *testing.T) {
	src := newExport(t, 10)
	dst := filepath.Join(t.TempDir(), "dataset")

	res, err := Split(src, dst, 0.8)
	require.NoError(t, err)

	assert.Len(t, res.Train, 8)
	assert.Len(t, res.Val, 2)
	assert.Equal(t, 10, res.Total())

	all := append(append([]string(nil), res.Train...), res.Val...)
	if diff := cmp.Diff(listNames(t, filepath.Join(src, ImagesDir)), sorted(all)); diff != "" {
		t.Errorf("partition does not cover the source (-want +got):\n%s", diff)
	}

	layout := NewLayout(dst)
	assert.Equal(t, sorted(res.Train), listNames(t, layout.TrainImages))
	assert.Equal(t, sorted(res.Val), listNames(t, layout.ValImages))
	for _, name := range res.Train {
		assert.FileExists(t, filepath.Join(layout.TrainLabels, LabelName(name)))
		assert.NoFileExists(t, filepath.Join(layout.ValImages, name))
	}
	for _, name := range res.Val {
		assert.FileExists(t, filepath.Join(layout.ValLabels, LabelName(name)))
		assert.NoFileExists(t, filepath.Join(layout.TrainImages, name))
	}
}

func TestSplit_LabelsFollowImages(t *testing.T) {
	src := filepath.Join(t.TempDir(), "export")
	writeFiles(t, src, map[string]string{
		"images/a.png": "png-a",
		"images/b.jpg": "jpg-b",
		"labels/a.txt": "0 0.1 0.1 0.2 0.2",
	})
	dst := filepath.Join(t.TempDir(), "dataset")

	res, err := Split(src, dst, 0.5)
	require.NoError(t, err)
	require.Len(t, res.Train, 1)
	require.Len(t, res.Val, 1)

	layout := NewLayout(dst)
	partitionOf := func(name string) (images, labels string) {
		for _, n := range res.Train {
			if n == name {
				return layout.TrainImages, layout.TrainLabels
			}
		}
		return layout.ValImages, layout.ValLabels
	}

	aImages, aLabels := partitionOf("a.png")
	assert.Equal(t, "png-a", readFile(t, filepath.Join(aImages, "a.png")))
	assert.Equal(t, "0 0.1 0.1 0.2 0.2", readFile(t, filepath.Join(aLabels, "a.txt")))

	bImages, bLabels := partitionOf("b.jpg")
	assert.FileExists(t, filepath.Join(bImages, "b.jpg"))
	assert.NoFileExists(t, filepath.Join(bLabels, "b.txt"))
}

func TestSplit_Boundaries(t *testing.T) {
	t.Run("ratio zero leaves train empty", func(t *testing.T) {
		res, err := Split(newExport(t, 5), filepath.Join(t.TempDir(), "ds"), 0)
		require.NoError(t, err)
		assert.Empty(t, res.Train)
		assert.Len(t, res.Val, 5)
	})

	t.Run("ratio one leaves val empty", func(t *testing.T) {
		res, err := Split(newExport(t, 5), filepath.Join(t.TempDir(), "ds"), 1)
		require.NoError(t, err)
		assert.Len(t, res.Train, 5)
		assert.Empty(t, res.Val)
	})

	t.Run("single image lands in exactly one partition", func(t *testing.T) {
		for _, ratio := range []float64{0, 0.3, 0.5, 0.99, 1} {
			res, err := Split(newExport(t, 1), filepath.Join(t.TempDir(), "ds"), ratio)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Total(), "ratio %v", ratio)
		}
	})

	t.Run("out of range ratio degenerates without error", func(t *testing.T) {
		res, err := Split(newExport(t, 4), filepath.Join(t.TempDir(), "ds"), 1.7)
		require.NoError(t, err)
		assert.Len(t, res.Train, 4)

		res, err = Split(newExport(t, 4), filepath.Join(t.TempDir(), "ds"), -0.2)
		require.NoError(t, err)
		assert.Len(t, res.Val, 4)
	})

	t.Run("empty images folder", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "export")
		writeFiles(t, src, map[string]string{"images/notes.md": "x"})
		res, err := Split(src, filepath.Join(t.TempDir(), "ds"), 0.8)
		require.NoError(t, err)
		assert.Zero(t, res.Total())
	})
}

func TestSplit_IgnoresNonImages(t *testing.T) {
	src := filepath.Join(t.TempDir(), "export")
	writeFiles(t, src, map[string]string{
		"images/a.JPEG":     "a",
		"images/b.gif":      "b",
		"images/c.txt":      "c",
		"images/d/e.jpg":    "e",
		"labels/a.txt":      "0",
		"labels/orphan.txt": "1",
	})
	dst := filepath.Join(t.TempDir(), "ds")

	res, err := Split(src, dst, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.JPEG"}, res.Train)
	assert.Equal(t, []string{"a.txt"}, listNames(t, NewLayout(dst).TrainLabels))
}

func TestSplit_MissingImagesDir(t *testing.T) {
	src := t.TempDir()
	_, err := Split(src, filepath.Join(t.TempDir(), "ds"), 0.8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}

func TestSplit_SeedIsReproducible(t *testing.T) {
	src := newExport(t, 20)

	first, err := Split(src, filepath.Join(t.TempDir(), "a"), 0.5, WithSeed(42))
	require.NoError(t, err)
	second, err := Split(src, filepath.Join(t.TempDir(), "b"), 0.5, WithSeed(42))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("seeded splits differ (-first +second):\n%s", diff)
	}
}

func TestSplit_RerunReplacesPartitions(t *testing.T) {
	src := newExport(t, 8)
	dst := filepath.Join(t.TempDir(), "ds")
	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, ManifestName), []byte("keep"), 0o644))

	_, err := Split(src, dst, 0.5, WithSeed(1))
	require.NoError(t, err)
	second, err := Split(src, dst, 0.5, WithSeed(2))
	require.NoError(t, err)

	layout := NewLayout(dst)
	train := listNames(t, layout.TrainImages)
	val := listNames(t, layout.ValImages)
	assert.Equal(t, sorted(second.Train), train)
	assert.Equal(t, sorted(second.Val), val)
	assert.Len(t, train, 4)
	assert.Len(t, val, 4)
	for _, name := range train {
		assert.NotContains(t, val, name, "image %s in both partitions", name)
	}
	assert.Len(t, listNames(t, layout.TrainLabels), 4)
	assert.Len(t, listNames(t, layout.ValLabels), 4)
	assert.Equal(t, "keep", readFile(t, filepath.Join(dst, ManifestName)))
}
