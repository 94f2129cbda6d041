// Package viewer renders quiz items as a self-contained, self-grading HTML
// page.
package viewer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/emojiart/internal/art"
	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/eval"
)

//go:embed *.tmpl
var templates embed.FS

var page = template.Must(template.New("viewer.html.tmpl").ParseFS(templates, "viewer.html.tmpl"))

// DefaultTitle heads the page when Options.Title is empty.
const DefaultTitle = "Emoji Art MCQ Dataset Viewer"

// Options configures Render.
type Options struct {
	Title string
}

type cell struct {
	Glyph string
	Blank bool
}

type choice struct {
	Letter string
	Text   string
}

type sample struct {
	Index    int
	Name     string
	Unicode  string
	Category string
	Colors   string
	Grid     [][]cell
	Choices  []choice
	Answer   int
}

type pageData struct {
	Title   string
	Samples []sample
}

// Render writes the page for items to w.
func Render(w io.Writer, items []dataset.MCQItem, opts Options) error {
	data := pageData{Title: opts.Title, Samples: make([]sample, 0, len(items))}
	if data.Title == "" {
		data.Title = DefaultTitle
	}

	for i := range items {
		item := &items[i]
		s := sample{
			Index:    i,
			Name:     item.Name,
			Unicode:  item.Unicode,
			Category: item.Category,
			Colors:   strings.Join(item.Colors, " "),
			Grid:     grid(item.EmojiArt),
			Answer:   item.Answer(),
		}
		for j, c := range item.Choices {
			s.Choices = append(s.Choices, choice{Letter: eval.Letter(j), Text: c})
		}
		data.Samples = append(data.Samples, s)
	}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render viewer: %w", err)
	}
	return nil
}

// RenderFile writes the page to path.
func RenderFile(path string, items []dataset.MCQItem, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Render(f, items, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func grid(emojiArt string) [][]cell {
	var rows [][]cell
	for _, row := range strings.Split(emojiArt, "\n") {
		var cells []cell
		for _, g := range art.Cells(row) {
			cells = append(cells, cell{Glyph: g, Blank: g == art.Blank})
		}
		rows = append(rows, cells)
	}
	return rows
}
