package dataset

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/emojiart/internal/art"
	"github.com/jmylchreest/emojiart/internal/colour"
	"github.com/jmylchreest/emojiart/internal/image"
	"github.com/jmylchreest/emojiart/internal/registry"
)

// DefaultThreshold is the largest mean CIEDE2000 error an icon may have and
// still be admitted.
const DefaultThreshold = 30.0

// Outcome is what happened to a single icon.
type Outcome int

const (
	// OutcomeAccepted means a record was produced.
	OutcomeAccepted Outcome = iota
	// OutcomeRejected means the icon failed the quality gate.
	OutcomeRejected
	// OutcomeSkipped means the icon's name is not on the allow-list.
	OutcomeSkipped
	// OutcomeFailed means the icon could not be read or rendered.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// GateError reports an icon whose mosaic is too far from the source.
type GateError struct {
	Code      string
	MeanError float64
	Threshold float64
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s: mean colour difference %.2f exceeds threshold %.2f", e.Code, e.MeanError, e.Threshold)
}

// Options configures a Builder.
type Options struct {
	// Size is the edge length of the normalised grid.
	Size int

	// AlphaThreshold marks pixels with lower alpha as blank.
	AlphaThreshold uint8

	// Threshold is the quality gate on mean error.
	Threshold float64

	// Workers bounds the number of icons processed concurrently.
	Workers int

	Palette   *colour.Palette
	Registry  *registry.Registry
	AllowList registry.AllowList
	Loader    image.Loader
	Logger    hclog.Logger
}

// DefaultOptions returns options with the standard palette, a 10×10 grid,
// alpha threshold 128 and quality threshold 30.
func DefaultOptions() Options {
	return Options{
		Size:           image.DefaultSize,
		AlphaThreshold: art.DefaultAlphaThreshold,
		Threshold:      DefaultThreshold,
		Workers:        runtime.GOMAXPROCS(0),
		Palette:        colour.DefaultPalette(),
		Loader:         image.NewFileLoader(),
	}
}

// Builder turns icon files into ArtRecords.
type Builder struct {
	opts   Options
	logger hclog.Logger
}

// NewBuilder validates opts. Configuration problems are reported here,
// before any icon is touched.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Palette.Len() == 0 {
		return nil, colour.ErrEmptyPalette
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", image.ErrInvalidSize, opts.Size)
	}
	if opts.Threshold < 0 {
		return nil, fmt.Errorf("quality threshold must not be negative: %f", opts.Threshold)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Loader == nil {
		opts.Loader = image.NewFileLoader()
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Builder{opts: opts, logger: logger.Named("build")}, nil
}

// IconResult is the outcome of processing one icon.
type IconResult struct {
	Path    string
	Code    string
	Outcome Outcome

	// MissingName is set when the registry had no entry for Code and a
	// placeholder name was used.
	MissingName bool

	// Record is set for accepted icons.
	Record *ArtRecord

	// Err explains rejected and failed icons.
	Err error
}

// Process runs one icon through lookup, normalisation, rendering and the
// quality gate. It never panics on bad input; every problem is reported in
// the result.
func (b *Builder) Process(path string) IconResult {
	code := image.CodeFromPath(path)
	res := IconResult{Path: path, Code: code}

	entry, ok := b.opts.Registry.Lookup(code)
	if !ok {
		res.MissingName = true
		entry = registry.Entry{
			Code:     code,
			Name:     "emoji " + code,
			Category: registry.UnknownCategory,
		}
	}

	if !b.opts.AllowList.Allows(entry.Name) {
		res.Outcome = OutcomeSkipped
		return res
	}

	src, err := b.opts.Loader.Load(path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	norm, err := image.Normalize(src, b.opts.Size)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	rendered, err := art.Render(norm, b.opts.Palette, art.Options{AlphaThreshold: b.opts.AlphaThreshold})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if rendered.MeanError > b.opts.Threshold {
		res.Outcome = OutcomeRejected
		res.Err = &GateError{Code: code, MeanError: rendered.MeanError, Threshold: b.opts.Threshold}
		return res
	}

	colors := make([]string, len(rendered.Symbols))
	for i, s := range rendered.Symbols {
		colors[i] = string(s)
	}

	res.Outcome = OutcomeAccepted
	res.Record = &ArtRecord{
		Name:     entry.Name,
		Unicode:  code,
		Category: entry.Category,
		EmojiArt: rendered.EmojiArt,
		Colors:   colors,
		ASCIIArt: rendered.ASCIIArt,
		Quality:  rendered.MeanError,
	}
	return res
}

// Summary aggregates icon outcomes for a batch.
type Summary struct {
	Total        int `json:"total"`
	Accepted     int `json:"accepted"`
	Rejected     int `json:"rejected"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	MissingNames int `json:"missing_names"`
}

// Processed returns the number of icons that reached an outcome.
func (s Summary) Processed() int {
	return s.Accepted + s.Rejected + s.Skipped + s.Failed
}

func (s *Summary) add(r IconResult) {
	switch r.Outcome {
	case OutcomeAccepted:
		s.Accepted++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	if r.MissingName {
		s.MissingNames++
	}
}

// Build processes paths with up to Options.Workers icons in flight and calls
// emit for every accepted record, in input order. Icon failures are counted
// and logged but never stop the batch. An error from emit, or cancellation
// of ctx, stops scheduling further icons; records already emitted stay
// valid.
func (b *Builder) Build(ctx context.Context, paths []string, emit func(ArtRecord) error) (Summary, error) {
	summary := Summary{Total: len(paths)}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		i   int
		res IconResult
	}
	results := make(chan indexed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	go func() {
		defer close(results)
		for i, path := range paths {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				r := b.Process(path)
				select {
				case results <- indexed{i: i, res: r}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	pending := make(map[int]IconResult)
	next := 0
	var emitErr error
	for ir := range results {
		if emitErr != nil {
			continue
		}
		pending[ir.i] = ir.res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			summary.add(r)
			b.log(r)
			if r.Record == nil {
				continue
			}
			if err := emit(*r.Record); err != nil {
				emitErr = fmt.Errorf("failed to write record %s: %w", r.Code, err)
				cancel()
				break
			}
		}
	}

	if emitErr != nil {
		return summary, emitErr
	}
	if err := ctx.Err(); err != nil && next < len(paths) {
		return summary, err
	}
	return summary, nil
}

func (b *Builder) log(r IconResult) {
	if r.MissingName {
		b.logger.Warn("missing name, using placeholder", "icon", r.Code)
	}
	switch r.Outcome {
	case OutcomeAccepted:
		b.logger.Debug("processed", "icon", r.Code, "name", r.Record.Name, "quality", r.Record.Quality)
	case OutcomeSkipped:
		b.logger.Trace("not in allow-list", "icon", r.Code)
	case OutcomeRejected:
		var gate *GateError
		if errors.As(r.Err, &gate) {
			b.logger.Info("rejected", "icon", r.Code, "mean_error", gate.MeanError, "threshold", gate.Threshold)
		}
	case OutcomeFailed:
		b.logger.Warn("failed", "icon", r.Code, "error", r.Err)
	}
}
