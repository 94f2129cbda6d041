package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Result is the graded outcome of one item. Error is set, and Response
// empty, when the model could not be asked.
type Result struct {
	Unicode  string `json:"unicode"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Response string `json:"response,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Target   string `json:"target"`
	Correct  bool   `json:"correct"`
	Error    string `json:"error,omitempty"`
}

// Tally counts answers for a group of items.
type Tally struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Errors   int     `json:"errors"`
	Accuracy float64 `json:"accuracy"`
}

func (t *Tally) add(r Result) {
	t.Total++
	if r.Correct {
		t.Correct++
	}
	if r.Error != "" {
		t.Errors++
	}
}

func (t *Tally) finish() {
	if t.Total > 0 {
		t.Accuracy = float64(t.Correct) / float64(t.Total)
	}
}

// Report summarises an evaluation run.
type Report struct {
	Model string `json:"model"`
	Mode  Mode   `json:"mode"`

	// Overall is the micro accuracy across all items.
	Overall Tally `json:"overall"`

	// MacroAccuracy is the unweighted mean of per-category accuracies.
	MacroAccuracy float64 `json:"macro_accuracy"`

	PerCategory map[string]*Tally `json:"per_category"`
	Results     []Result          `json:"detailed_results"`
}

// NewReport aggregates results. Failed calls count as answered wrongly.
func NewReport(model string, mode Mode, results []Result) *Report {
	r := &Report{
		Model:       model,
		Mode:        mode,
		PerCategory: make(map[string]*Tally),
		Results:     results,
	}
	for _, res := range results {
		r.Overall.add(res)
		t := r.PerCategory[res.Category]
		if t == nil {
			t = &Tally{}
			r.PerCategory[res.Category] = t
		}
		t.add(res)
	}
	r.Overall.finish()

	if len(r.PerCategory) > 0 {
		accuracies := make([]float64, 0, len(r.PerCategory))
		for _, cat := range r.Categories() {
			t := r.PerCategory[cat]
			t.finish()
			accuracies = append(accuracies, t.Accuracy)
		}
		r.MacroAccuracy = stat.Mean(accuracies, nil)
	}
	return r
}

// Categories returns the category names in sorted order.
func (r *Report) Categories() []string {
	out := make([]string, 0, len(r.PerCategory))
	for cat := range r.PerCategory {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Save writes the report to path.
func (r *Report) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
