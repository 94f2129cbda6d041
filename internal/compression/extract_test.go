package compression

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

var archiveEntries = map[string]string{
	"emojis/1f600.png": "grinning",
	"emojis/2764.png":  "heart",
	"../escape.png":    "traversal",
	"README.txt":       "not an icon",
	"emojis/.hidden":   "dotfile",
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeTar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(w)
	if err := tw.WriteHeader(&tar.Header{Name: "emojis/", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		t.Fatal(err)
	}
	for name, body := range entries {
		hdr := &tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func pngOnly(name string) bool {
	return strings.HasSuffix(name, ".png")
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		write func(*testing.T, string, map[string]string)
	}{
		{"icons.zip", writeZip},
		{"icons.tar", writeTar},
		{"icons.tar.gz", writeTar},
		{"icons.tar.xz", writeTar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, tt.name)
			tt.write(t, archive, archiveEntries)
			dest := filepath.Join(dir, "out", "icons")

			res, err := Extract(archive, dest, pngOnly)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if res.Dir != dest || res.Extracted != 3 || res.Skipped != 1 {
				t.Errorf("result = %+v, want 3 extracted and 1 skipped", res)
			}

			entries, err := os.ReadDir(dest)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			sort.Strings(names)
			if got := strings.Join(names, ","); got != "1f600.png,2764.png,escape.png" {
				t.Errorf("extracted files = %s", got)
			}

			data, err := os.ReadFile(filepath.Join(dest, "2764.png"))
			if err != nil || string(data) != "heart" {
				t.Errorf("2764.png = %q, %v", data, err)
			}
			if _, err := os.Stat(filepath.Join(dir, "out", "escape.png")); !os.IsNotExist(err) {
				t.Error("traversal entry escaped the destination directory")
			}
		})
	}
}

func TestExtractNilFilter(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "all.zip")
	writeZip(t, archive, map[string]string{"a.png": "a", "notes.txt": "b"})

	res, err := Extract(archive, filepath.Join(dir, "out"), nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Extracted != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestExtractDuplicateBaseNames(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "sizes.tar")
	w, err := Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(w)
	for _, e := range []struct{ name, body string }{
		{"png/72/1f600.png", "small"},
		{"png/128/1f600.png", "large"},
		{"png/72/2764.png", "heart"},
	} {
		if err := tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(e.body))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	res, err := Extract(archive, filepath.Join(dir, "out"), pngOnly)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Extracted != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 2 extracted and 1 skipped", res)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", "1f600.png"))
	if err != nil || string(data) != "small" {
		t.Errorf("1f600.png = %q, %v; want first entry kept", data, err)
	}
}

func TestExtractErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Extract(filepath.Join(dir, "icons.rar"), dir, nil); err == nil {
		t.Error("Extract() of unsupported archive expected error")
	}
	if _, err := Extract(filepath.Join(dir, "missing.zip"), dir, nil); err == nil {
		t.Error("Extract() of missing archive expected error")
	}

	bad := filepath.Join(dir, "bad.tar.gz")
	if err := os.WriteFile(bad, []byte("not gzip"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(bad, filepath.Join(dir, "out"), nil); err == nil {
		t.Error("Extract() of corrupt tarball expected error")
	}
}

func TestExtractEntryTooLarge(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "big.tar")
	writeTar(t, archive, map[string]string{"big.png": strings.Repeat("x", MaxEntrySize+1)})

	_, err := Extract(archive, filepath.Join(dir, "out"), nil)
	if !errors.Is(err, ErrEntryTooLarge) {
		t.Errorf("Extract() error = %v, want ErrEntryTooLarge", err)
	}
}

func TestArchiveKindFromPath(t *testing.T) {
	tests := map[string]ArchiveKind{
		"icons.zip":      Zip,
		"Icons.ZIP":      Zip,
		"icons.tar.gz":   TarGz,
		"icons.tgz":      TarGz,
		"icons.tar.xz":   TarXz,
		"icons.tar.bz2":  TarBz2,
		"icons.tbz2":     TarBz2,
		"icons.tar":      Tar,
		"emojis":         NotArchive,
		"data.jsonl.gz":  NotArchive,
		"zip.dir/1f600":  NotArchive,
	}
	for path, want := range tests {
		if got := ArchiveKindFromPath(path); got != want {
			t.Errorf("ArchiveKindFromPath(%q) = %v, want %v", path, got, want)
		}
	}
	if IsArchive("emojis/") {
		t.Error("IsArchive(directory) = true")
	}
}
