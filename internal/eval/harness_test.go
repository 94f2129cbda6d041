package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jmylchreest/emojiart/internal/dataset"
)

type fakeBackend struct {
	mu    sync.Mutex
	reply func(Request) (string, error)
	seen  []Request
}

func (f *fakeBackend) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, req)
	f.mu.Unlock()
	return f.reply(req)
}

func item(code, name, category string, choices []string) dataset.MCQItem {
	labels := make([]int, len(choices))
	for i, c := range choices {
		if c == name {
			labels[i] = 1
		}
	}
	return dataset.MCQItem{
		ArtRecord: dataset.ArtRecord{
			Name:     name,
			Unicode:  code,
			Category: category,
			EmojiArt: "🟥⬜",
			Colors:   []string{"🟥", "⬜"},
			ASCIIArt: "@@..",
		},
		Choices: choices,
		Labels:  labels,
	}
}

func quiz() []dataset.MCQItem {
	return []dataset.MCQItem{
		item("1f34e", "apple", "Food", []string{"apple", "pear", "kiwi", "lime"}),
		item("1f350", "pear", "Food", []string{"kiwi", "pear", "apple", "lime"}),
		item("1f436", "dog", "Animals", []string{"cat", "cow", "dog", "pig"}),
		item("1f431", "cat", "Animals", []string{"pig", "cow", "dog", "cat"}),
	}
}

func TestHarnessRun(t *testing.T) {
	backend := &fakeBackend{reply: func(req Request) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "A: apple"):
			return "The answer is A", nil
		case strings.Contains(req.Prompt, "A: kiwi"):
			return "C", nil
		case strings.Contains(req.Prompt, "A: cat"):
			return "", errors.New("rate limited")
		default:
			return "it is the cat", nil
		}
	}}

	h := &Harness{Backend: backend, Model: "test-model", Mode: ModeText, Concurrency: 2}
	report, err := h.Run(context.Background(), quiz())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Overall.Total != 4 || report.Overall.Correct != 2 || report.Overall.Errors != 1 {
		t.Errorf("overall = %+v, want 4 total, 2 correct, 1 error", report.Overall)
	}
	if report.Overall.Accuracy != 0.5 {
		t.Errorf("micro accuracy = %f, want 0.5", report.Overall.Accuracy)
	}

	food, animals := report.PerCategory["Food"], report.PerCategory["Animals"]
	if food == nil || food.Accuracy != 0.5 || animals == nil || animals.Accuracy != 0.5 {
		t.Errorf("per category = %+v / %+v", food, animals)
	}
	if math.Abs(report.MacroAccuracy-0.5) > 1e-12 {
		t.Errorf("macro accuracy = %f, want 0.5", report.MacroAccuracy)
	}

	// Results stay in input order regardless of concurrency.
	for i, want := range []string{"1f34e", "1f350", "1f436", "1f431"} {
		if report.Results[i].Unicode != want {
			t.Errorf("result %d = %s, want %s", i, report.Results[i].Unicode, want)
		}
	}
	failed := report.Results[2]
	if failed.Error == "" || failed.Correct || failed.Response != "" {
		t.Errorf("failed call result = %+v", failed)
	}
	if r := report.Results[3]; !r.Correct || r.Answer != "D" || r.Target != "D" {
		t.Errorf("fallback result = %+v", r)
	}
}

func TestHarnessMacroDiffersFromMicro(t *testing.T) {
	items := append(quiz(), item("1f95d", "kiwi", "Food", []string{"kiwi", "pear", "apple", "lime"}))
	backend := &fakeBackend{reply: func(req Request) (string, error) {
		if strings.Contains(req.Prompt, "A: apple") || strings.Contains(req.Prompt, "A: kiwi") {
			return "A", nil
		}
		return "none of these", nil
	}}

	report, err := (&Harness{Backend: backend, Mode: ModeText}).Run(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	// Food: apple right, pear wrong, kiwi right. Animals: both wrong.
	if got, want := report.Overall.Accuracy, 2.0/5.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("micro = %f, want %f", got, want)
	}
	if got, want := report.MacroAccuracy, (2.0/3.0+0)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("macro = %f, want %f", got, want)
	}
}

func TestHarnessImageMode(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1f34e.png"), []byte("png bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	backend := &fakeBackend{reply: func(req Request) (string, error) { return "A", nil }}
	h := &Harness{Backend: backend, Mode: ModeImage, IconDir: dir, Concurrency: 1}

	report, err := h.Run(context.Background(), quiz()[:2])
	if err != nil {
		t.Fatal(err)
	}

	if len(backend.seen) != 1 {
		t.Fatalf("backend called %d times, want 1", len(backend.seen))
	}
	req := backend.seen[0]
	if string(req.Image) != "png bytes" || req.ImageMIME != "image/png" {
		t.Errorf("request image = %q %q", req.Image, req.ImageMIME)
	}
	if strings.Contains(req.Prompt, "🟥") {
		t.Errorf("image prompt embeds emoji art: %q", req.Prompt)
	}
	if report.Results[1].Error == "" {
		t.Errorf("missing icon should be an error result: %+v", report.Results[1])
	}
}

func TestHarnessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := &fakeBackend{reply: func(Request) (string, error) { return "A", nil }}
	if _, err := (&Harness{Backend: backend}).Run(ctx, quiz()); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestSelect(t *testing.T) {
	items := quiz()
	tests := []struct {
		name       string
		start, end int
		category   string
		want       int
		wantErr    bool
	}{
		{name: "all", want: 4},
		{name: "slice", start: 1, end: 3, want: 2},
		{name: "category", category: "Animals", want: 2},
		{name: "slice and category", start: 1, end: 3, category: "Animals", want: 1},
		{name: "start out of range", start: 4, wantErr: true},
		{name: "end out of range", end: 5, wantErr: true},
		{name: "negative start", start: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(items, tt.start, tt.end, tt.category)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.want {
				t.Errorf("Select() = %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReportJSON(t *testing.T) {
	report := NewReport("m", ModeText, []Result{
		{Unicode: "1", Category: "Food & Drink", Target: "A", Answer: "A", Correct: true},
		{Unicode: "2", Category: "Food & Drink", Target: "B", Error: "timeout"},
	})

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"Food & Drink"`) {
		t.Errorf("category name escaped: %s", buf.String())
	}

	var decoded struct {
		Overall     Tally            `json:"overall"`
		PerCategory map[string]Tally `json:"per_category"`
		Results     []Result         `json:"detailed_results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Overall.Errors != 1 || decoded.PerCategory["Food & Drink"].Total != 2 || len(decoded.Results) != 2 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestNewReportEmpty(t *testing.T) {
	r := NewReport("m", ModeText, nil)
	if r.Overall.Accuracy != 0 || r.MacroAccuracy != 0 || len(r.Categories()) != 0 {
		t.Errorf("empty report = %+v", r)
	}
}
