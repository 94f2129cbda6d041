package eval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/image"
	"github.com/jmylchreest/emojiart/internal/security"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 2 * time.Minute

// Harness asks a Backend every quiz item and grades the answers.
type Harness struct {
	Backend Backend
	Model   string
	Mode    Mode

	// IconDir holds <unicode>.png icons for image mode.
	IconDir string

	// Concurrency bounds calls in flight. Zero means GOMAXPROCS.
	Concurrency int

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	Logger hclog.Logger
}

// Select returns items[start:end] restricted to category. end <= 0 means
// the end of items and an empty category keeps every item.
func Select(items []dataset.MCQItem, start, end int, category string) ([]dataset.MCQItem, error) {
	if end <= 0 {
		end = len(items)
	}
	if start < 0 || (len(items) > 0 && start >= len(items)) {
		return nil, fmt.Errorf("invalid start index %d for %d items", start, len(items))
	}
	if end > len(items) || end < start {
		return nil, fmt.Errorf("invalid end index %d for %d items", end, len(items))
	}

	selected := items[start:end]
	if category == "" {
		return selected, nil
	}
	var out []dataset.MCQItem
	for _, item := range selected {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out, nil
}

// Run evaluates items in order. A failed model call is recorded as an
// error result and counted against accuracy; only cancellation of ctx
// stops the run.
func (h *Harness) Run(ctx context.Context, items []dataset.MCQItem) (*Report, error) {
	if h.Backend == nil {
		return nil, errors.New("no backend configured")
	}
	logger := h.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("eval")

	workers := h.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = h.ask(gctx, &items[i])
			r := &results[i]
			switch {
			case r.Error != "":
				logger.Warn("model call failed", "icon", r.Unicode, "error", r.Error)
			default:
				logger.Debug("graded", "icon", r.Unicode, "correct", r.Correct, "answer", r.Answer, "target", r.Target)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return NewReport(h.Model, h.Mode, results), nil
}

func (h *Harness) ask(ctx context.Context, item *dataset.MCQItem) Result {
	res := Result{
		Unicode:  item.Unicode,
		Name:     item.Name,
		Category: item.Category,
		Target:   Letter(item.Answer()),
	}

	req := Request{Model: h.Model, Prompt: BuildPrompt(item, h.Mode)}
	if h.Mode == ModeImage {
		data, mime, err := h.icon(item.Unicode)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		req.Image, req.ImageMIME = data, mime
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := h.Backend.Complete(callCtx, req)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Response = response
	res.Answer, _ = ExtractAnswer(response, item.Choices)
	res.Correct = res.Answer != "" && res.Answer == res.Target
	return res
}

func (h *Harness) icon(code string) ([]byte, string, error) {
	name := code + ".png"
	if err := security.ValidateFilePath(name, h.IconDir); err != nil {
		return nil, "", fmt.Errorf("icon %s: %w", code, err)
	}
	path := filepath.Join(h.IconDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read icon: %w", err)
	}
	return data, image.MIMEType(path), nil
}
