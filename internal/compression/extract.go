package compression

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MaxEntrySize caps the decompressed size of a single archive entry.
const MaxEntrySize = 16 << 20

// ErrEntryTooLarge is returned when an entry exceeds MaxEntrySize.
var ErrEntryTooLarge = errors.New("archive entry exceeds size limit")

// ArchiveKind identifies an icon archive container.
type ArchiveKind int

const (
	// NotArchive marks a path that is not a supported archive.
	NotArchive ArchiveKind = iota
	// Zip is a zip archive.
	Zip
	// TarGz is a gzip-compressed tarball.
	TarGz
	// TarXz is an xz-compressed tarball.
	TarXz
	// TarBz2 is a bzip2-compressed tarball.
	TarBz2
	// Tar is an uncompressed tarball.
	Tar
)

// ArchiveKindFromPath detects the archive kind from the file name.
func ArchiveKindFromPath(p string) ArchiveKind {
	name := strings.ToLower(filepath.Base(p))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return Zip
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return TarGz
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return TarXz
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz"), strings.HasSuffix(name, ".tbz2"):
		return TarBz2
	case strings.HasSuffix(name, ".tar"):
		return Tar
	default:
		return NotArchive
	}
}

// IsArchive reports whether p names a supported archive.
func IsArchive(p string) bool {
	return ArchiveKindFromPath(p) != NotArchive
}

// ExtractResult describes an archive extraction.
type ExtractResult struct {
	// Dir is the directory the entries were written to.
	Dir string
	// Extracted counts entries written to Dir.
	Extracted int
	// Skipped counts regular entries rejected by the filter or whose base
	// name was already extracted.
	Skipped int

	seen map[string]bool
}

// Extract flattens the regular files of an archive into destDir. Entries are
// written under their base name, so directory structure in the archive is
// ignored and no entry can escape destDir. When several entries share a base
// name the first one in archive order wins. keep filters entries by name; a
// nil keep accepts everything.
func Extract(archivePath, destDir string, keep func(name string) bool) (*ExtractResult, error) {
	kind := ArchiveKindFromPath(archivePath)
	if kind == NotArchive {
		return nil, fmt.Errorf("unsupported archive: %s", archivePath)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil { // #nosec G301 - Extraction directory needs standard permissions
		return nil, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	res := &ExtractResult{Dir: destDir, seen: make(map[string]bool)}
	var err error
	if kind == Zip {
		err = extractZip(archivePath, res, keep)
	} else {
		err = extractTar(archivePath, kind, res, keep)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// entryName returns the flattened name for an archive entry, or "" when the
// entry has no usable base name.
func entryName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || strings.HasPrefix(base, ".") {
		return ""
	}
	return base
}

// writeEntry copies one entry into the result directory.
func writeEntry(res *ExtractResult, name string, r io.Reader, keep func(string) bool) error {
	base := entryName(name)
	if base == "" {
		return nil
	}
	if (keep != nil && !keep(base)) || res.seen[base] {
		res.Skipped++
		return nil
	}
	res.seen[base] = true

	dest := filepath.Join(res.Dir, base)
	out, err := os.Create(dest) // #nosec G304 - Base name inside a caller-chosen directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	n, copyErr := io.Copy(out, io.LimitReader(r, MaxEntrySize+1))
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		return fmt.Errorf("failed to extract %s: %w", name, copyErr)
	case n > MaxEntrySize:
		return fmt.Errorf("%s: %w", name, ErrEntryTooLarge)
	case closeErr != nil:
		return fmt.Errorf("failed to close %s: %w", dest, closeErr)
	}
	res.Extracted++
	return nil
}
