package labelstudio

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultExportFormat bundles YOLO oriented-bbox labels with their images.
const DefaultExportFormat = "YOLO_OBB_WITH_IMAGES"

// ErrJSONExport is returned when the server answers an export with JSON
// instead of a zip archive.
var ErrJSONExport = errors.New("unsupported JSON export - use a ZIP export format")

// ExportDirName is the directory an export of projectID is extracted to.
func ExportDirName(projectID int) string {
	return fmt.Sprintf("export_project_%d", projectID)
}

// Export downloads the annotations of projectID in the given export format.
// Zip responses are extracted to destRoot/export_project_<id>, whose path is
// returned.
func (c *Client) Export(ctx context.Context, projectID int, format, destRoot string) (string, error) {
	if format == "" {
		format = DefaultExportFormat
	}
	path := fmt.Sprintf("/api/projects/%d/export?exportType=%s", projectID, url.QueryEscape(format))

	c.logger.Info("Exporting annotations", zap.Int("project", projectID), zap.String("format", format))

	body, err := c.get(ctx, path, fmt.Sprintf("export annotations for project %d", projectID))
	if err != nil {
		return "", err
	}

	if !bytes.HasPrefix(body, []byte("PK")) {
		if json.Valid(body) {
			return "", fmt.Errorf("project %d: %w", projectID, ErrJSONExport)
		}
		return "", fmt.Errorf("project %d: unexpected export response: %s", projectID, snippet(body, 200))
	}

	dest := filepath.Join(destRoot, ExportDirName(projectID))
	n, err := Extract(body, dest)
	if err != nil {
		return "", fmt.Errorf("failed to extract export for project %d: %w", projectID, err)
	}

	c.logger.Info("Exported files extracted", zap.String("dir", dest), zap.Int("files", n))
	return dest, nil
}

// Extract unpacks the zip archive in data into dest and returns the number of
// files written. Entries that would land outside dest are rejected.
func Extract(data []byte, dest string) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid zip archive: %w", err)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, err
	}

	root, err := filepath.Abs(dest)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return n, fmt.Errorf("illegal path in archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return n, err
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", f.Name, err)
	}
	return out.Close()
}
