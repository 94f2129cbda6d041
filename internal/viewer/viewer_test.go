package viewer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/emojiart/internal/art"
	"github.com/jmylchreest/emojiart/internal/dataset"
)

func items() []dataset.MCQItem {
	return []dataset.MCQItem{
		{
			ArtRecord: dataset.ArtRecord{
				Name:     "red heart",
				Unicode:  "2764",
				Category: "Smileys & Emotion",
				EmojiArt: "🟥" + art.Blank + "\n" + art.Blank + "🟥",
				Colors:   []string{"🟥"},
				ASCIIArt: "@@" + art.Blank + "\n" + art.Blank + "@@",
			},
			Choices: []string{"<b>bold</b>", "red heart", "ghost", "fire"},
			Labels:  []int{0, 1, 0, 0},
		},
		{
			ArtRecord: dataset.ArtRecord{Name: "ghost", Unicode: "1f47b", Category: "Smileys & Emotion", EmojiArt: "⬜", ASCIIArt: ".."},
			Choices:   []string{"ghost", "red heart", "fire", "skull"},
			Labels:    []int{1, 0, 0, 0},
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, items(), Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	if got := strings.Count(out, `<div class="sample"`); got != 2 {
		t.Errorf("sample blocks = %d, want 2", got)
	}
	if !strings.Contains(out, "<title>"+DefaultTitle+"</title>") {
		t.Error("default title missing")
	}
	if strings.Contains(out, "<b>bold</b>") || !strings.Contains(out, "&lt;b&gt;bold&lt;/b&gt;") {
		t.Error("choice text is not escaped")
	}
	if !strings.Contains(out, "Smileys &amp; Emotion") {
		t.Error("category is not escaped")
	}
	if got := strings.Count(out, `<span class="cell empty"></span>`); got != 2 {
		t.Errorf("blank cells = %d, want 2", got)
	}
	if !strings.Contains(out, `data-answer="1"`) || !strings.Contains(out, `data-answer="0"`) {
		t.Error("answer indices missing")
	}
	if !strings.Contains(out, "B: red heart") {
		t.Error("lettered choice missing")
	}
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.html")
	if err := RenderFile(path, items(), Options{Title: "Test set"}); err != nil {
		t.Fatalf("RenderFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<h1>Test set</h1>") {
		t.Error("custom title missing")
	}
}

func TestGrid(t *testing.T) {
	g := grid("🟥" + art.Blank + "\n\u2b1b\uFE0F🟦")
	if len(g) != 2 || len(g[0]) != 2 || len(g[1]) != 2 {
		t.Fatalf("grid shape = %v", g)
	}
	if g[0][0].Blank || !g[0][1].Blank {
		t.Errorf("row 0 = %+v", g[0])
	}
	if g[1][0].Glyph != "\u2b1b\uFE0F" {
		t.Errorf("variation selector split from glyph: %q", g[1][0].Glyph)
	}
}
