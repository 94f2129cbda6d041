package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestFileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1f600.png")
	writePNG(t, path, solidImage(4, 3, color.NRGBA{G: 255, A: 255}))

	img, err := NewFileLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("Load() bounds = %v, want 4x3", b)
	}
}

func TestFileLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.png")},
		{name: "directory", path: dir},
		{name: "undecodable", path: garbage},
	}

	loader := NewFileLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loader.Load(tt.path); err == nil {
				t.Errorf("Load(%q) expected error", tt.path)
			}
		})
	}
}

func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	img := solidImage(1, 1, color.White)
	writePNG(t, filepath.Join(dir, "1f9e1.png"), img)
	writePNG(t, filepath.Join(dir, "1f600.png"), img)
	if err := os.WriteFile(filepath.Join(dir, "LIST_OF_EMOJI.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ScanDirectoryForImages() = %v, want 2 files", files)
	}
	if filepath.Base(files[0]) != "1f600.png" || filepath.Base(files[1]) != "1f9e1.png" {
		t.Errorf("ScanDirectoryForImages() not sorted: %v", files)
	}

	if _, err := ScanDirectoryForImages(t.TempDir()); err == nil {
		t.Error("expected error for directory without images")
	}
}

func TestCodeFromPath(t *testing.T) {
	tests := map[string]string{
		"emojis/1f600.png":         "1f600",
		"1f468-200d-1f4bb.png":     "1f468-200d-1f4bb",
		"/abs/path/2764-fe0f.webp": "2764-fe0f",
		"noext":                    "noext",
	}
	for in, want := range tests {
		if got := CodeFromPath(in); got != want {
			t.Errorf("CodeFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.png":  "image/png",
		"a.JPG":  "image/jpeg",
		"a.webp": "image/webp",
		"a.gif":  "image/gif",
	}
	for in, want := range tests {
		if got := MIMEType(in); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", in, got, want)
		}
	}
}
