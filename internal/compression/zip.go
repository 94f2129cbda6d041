package compression

import (
	"archive/zip"
	"errors"
	"fmt"
)

// extractZip writes the regular files of a zip archive into res.Dir.
func extractZip(archivePath string, res *ExtractResult, keep func(string) bool) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !f.Mode().IsRegular() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		err = writeEntry(res, f.Name, rc, keep)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
