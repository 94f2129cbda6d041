package compression

import (
	"archive/tar"
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
)

// extractTar writes the regular files of a (possibly compressed) tarball
// into res.Dir.
func extractTar(archivePath string, kind ArchiveKind, res *ExtractResult, keep func(string) bool) error {
	f, err := os.Open(archivePath) // #nosec G304 - User-specified icon archive
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	switch kind {
	case TarGz:
		r, err = NewReader(r, Gzip)
	case TarXz:
		r, err = NewReader(r, Xz)
	case TarBz2:
		r = bzip2.NewReader(r)
	}
	if err != nil {
		return err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("failed to read tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := writeEntry(res, header.Name, tr, keep); err != nil {
			return err
		}
	}
}
