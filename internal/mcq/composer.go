// Package mcq turns accepted emoji-art records into four-way multiple-choice
// quiz items whose distractors come from the same category.
package mcq

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/emojiart/internal/dataset"
)

// Distractors is the number of wrong choices per item.
const Distractors = dataset.ChoiceCount - 1

// InsufficientDistractorsError reports a record whose category does not
// hold enough other names to fill the choices.
type InsufficientDistractorsError struct {
	Name      string
	Unicode   string
	Category  string
	Available int
}

func (e *InsufficientDistractorsError) Error() string {
	return fmt.Sprintf("%s (%s): category %q has %d distractors, need %d",
		e.Name, e.Unicode, e.Category, e.Available, Distractors)
}

// Composer builds MCQItems. A Composer is not safe for concurrent use
// because it owns its random source.
type Composer struct {
	rng    *rand.Rand
	logger hclog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithSeed makes composition reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Composer) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand uses r as the random source.
func WithRand(r *rand.Rand) Option {
	return func(c *Composer) {
		c.rng = r
	}
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(l hclog.Logger) Option {
	return func(c *Composer) {
		c.logger = l.Named("mcq")
	}
}

// NewComposer returns a Composer. Without WithSeed or WithRand it draws
// from a randomly seeded source.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

// categoryIndex maps a category to its distinct names in first-seen order.
type categoryIndex map[string][]string

func buildIndex(records []dataset.ArtRecord) categoryIndex {
	idx := make(categoryIndex)
	seen := make(map[string]map[string]bool)
	for _, r := range records {
		names := seen[r.Category]
		if names == nil {
			names = make(map[string]bool)
			seen[r.Category] = names
		}
		if names[r.Name] {
			continue
		}
		names[r.Name] = true
		idx[r.Category] = append(idx[r.Category], r.Name)
	}
	return idx
}

// pool returns the names in category other than name.
func (idx categoryIndex) pool(category, name string) []string {
	var out []string
	for _, n := range idx[category] {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// Compose turns every record into an item. It fails on the first record
// whose category cannot supply enough distractors.
func (c *Composer) Compose(records []dataset.ArtRecord) ([]dataset.MCQItem, error) {
	idx := buildIndex(records)
	items := make([]dataset.MCQItem, 0, len(records))
	for _, r := range records {
		item, err := c.compose(idx, r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ComposeLenient is Compose, except that records without enough
// distractors are left out and reported in the returned slice of errors.
func (c *Composer) ComposeLenient(records []dataset.ArtRecord) ([]dataset.MCQItem, []error) {
	idx := buildIndex(records)
	items := make([]dataset.MCQItem, 0, len(records))
	var skipped []error
	for _, r := range records {
		item, err := c.compose(idx, r)
		if err != nil {
			c.logger.Warn("skipping record", "icon", r.Unicode, "error", err)
			skipped = append(skipped, err)
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

func (c *Composer) compose(idx categoryIndex, r dataset.ArtRecord) (dataset.MCQItem, error) {
	pool := idx.pool(r.Category, r.Name)
	if len(pool) < Distractors {
		return dataset.MCQItem{}, &InsufficientDistractorsError{
			Name:      r.Name,
			Unicode:   r.Unicode,
			Category:  r.Category,
			Available: len(pool),
		}
	}

	// Partial Fisher-Yates: the first Distractors slots become a uniform
	// sample without replacement.
	for i := 0; i < Distractors; i++ {
		j := i + c.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	choices := make([]string, 0, dataset.ChoiceCount)
	choices = append(choices, r.Name)
	choices = append(choices, pool[:Distractors]...)
	c.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	labels := make([]int, len(choices))
	for i, name := range choices {
		if name == r.Name {
			labels[i] = 1
		}
	}

	return dataset.MCQItem{ArtRecord: r, Choices: choices, Labels: labels}, nil
}

// Categories returns the number of distinct names per category, sorted by
// category name. Useful to explain why records were skipped.
func Categories(records []dataset.ArtRecord) []CategoryCount {
	idx := buildIndex(records)
	out := make([]CategoryCount, 0, len(idx))
	for cat, names := range idx {
		out = append(out, CategoryCount{Category: cat, Names: len(names)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// CategoryCount is one row of Categories.
type CategoryCount struct {
	Category string
	Names    int
}

// IsInsufficient reports whether err is an InsufficientDistractorsError.
func IsInsufficient(err error) bool {
	var target *InsufficientDistractorsError
	return errors.As(err, &target)
}
