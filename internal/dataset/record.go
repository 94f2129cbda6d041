// Package dataset defines the emoji-art records and quiz items, their
// newline-delimited JSON stores, and the builder that turns a directory of
// icons into records.
package dataset

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/emojiart/internal/art"
)

// ChoiceCount is the number of choices in every quiz item.
const ChoiceCount = 4

// ArtRecord is one accepted icon.
type ArtRecord struct {
	Name     string   `json:"name"`
	Unicode  string   `json:"unicode"`
	Category string   `json:"category"`
	EmojiArt string   `json:"emoji_art"`
	Colors   []string `json:"colors"`
	ASCIIArt string   `json:"ascii_art"`

	// Quality is the mean perceptual error the record was admitted with.
	// It is not part of the stored form.
	Quality float64 `json:"-"`
}

// Validate checks that the record is complete and that both grids describe
// the same cells.
func (r *ArtRecord) Validate() error {
	if r.Name == "" {
		return errors.New("record has no name")
	}
	if r.Unicode == "" {
		return fmt.Errorf("record %q has no unicode identifier", r.Name)
	}
	if err := art.CheckLockstep(r.EmojiArt, r.ASCIIArt); err != nil {
		return fmt.Errorf("record %s: %w", r.Unicode, err)
	}
	return nil
}

// MCQItem is an ArtRecord posed as a four-way multiple-choice question.
type MCQItem struct {
	ArtRecord

	Choices []string `json:"choices"`
	Labels  []int    `json:"labels"`
}

// Answer returns the index of the correct choice, or -1 when the label
// vector is not one-hot.
func (m *MCQItem) Answer() int {
	idx := -1
	for i, l := range m.Labels {
		switch l {
		case 0:
		case 1:
			if idx >= 0 {
				return -1
			}
			idx = i
		default:
			return -1
		}
	}
	return idx
}

// Validate checks the embedded record and the quiz invariants: exactly
// ChoiceCount choices, a one-hot label vector of the same length, and the
// labelled choice equal to the record's name.
func (m *MCQItem) Validate() error {
	if err := m.ArtRecord.Validate(); err != nil {
		return err
	}
	if len(m.Choices) != ChoiceCount {
		return fmt.Errorf("item %s: %d choices, want %d", m.Unicode, len(m.Choices), ChoiceCount)
	}
	if len(m.Labels) != ChoiceCount {
		return fmt.Errorf("item %s: %d labels, want %d", m.Unicode, len(m.Labels), ChoiceCount)
	}
	idx := m.Answer()
	if idx < 0 {
		return fmt.Errorf("item %s: labels %v are not one-hot", m.Unicode, m.Labels)
	}
	if m.Choices[idx] != m.Name {
		return fmt.Errorf("item %s: labelled choice %q does not match name %q", m.Unicode, m.Choices[idx], m.Name)
	}
	return nil
}
