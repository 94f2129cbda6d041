package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/jmylchreest/emojiart/internal/compression"
)

// maxLineSize bounds a single JSONL line. Emoji-art grids are small, so
// this leaves generous headroom.
const maxLineSize = 4 * 1024 * 1024

// Writer appends values to a newline-delimited JSON stream. Each value is
// encoded fully before a single write, so every line is written whole.
// It is safe for concurrent use.
type Writer[T any] struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

// NewWriter returns a Writer on w.
func NewWriter[T any](w io.Writer) *Writer[T] {
	return &Writer[T]{w: w}
}

// Write encodes v as one line.
func (w *Writer[T]) Write(v T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode line: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write line %d: %w", w.n+1, err)
	}
	w.n++
	return nil
}

// Count returns the number of lines written.
func (w *Writer[T]) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// ReadLines decodes every non-empty line of r into a T.
func ReadLines[T any](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	return out, nil
}

// WriteLines writes every value as one line.
func WriteLines[T any](w io.Writer, values []T) error {
	lw := NewWriter[T](w)
	for _, v := range values {
		if err := lw.Write(v); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecords reads and validates an ArtRecord store.
func ReadRecords(r io.Reader) ([]ArtRecord, error) {
	records, err := ReadLines[ArtRecord](r)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return records, nil
}

// ReadItems reads and validates an MCQItem store.
func ReadItems(r io.Reader) ([]MCQItem, error) {
	items, err := ReadLines[MCQItem](r)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return items, nil
}

// LoadRecords reads an ArtRecord store from a possibly compressed file.
func LoadRecords(path string) ([]ArtRecord, error) {
	return loadFile(path, ReadRecords)
}

// LoadItems reads an MCQItem store from a possibly compressed file.
func LoadItems(path string) ([]MCQItem, error) {
	return loadFile(path, ReadItems)
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := compression.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	out, err := read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// SaveItems writes an MCQItem store to a possibly compressed file.
func SaveItems(path string, items []MCQItem) error {
	return saveFile(path, items)
}

// SaveRecords writes an ArtRecord store to a possibly compressed file.
func SaveRecords(path string, records []ArtRecord) error {
	return saveFile(path, records)
}

func saveFile[T any](path string, values []T) error {
	wc, err := compression.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLines(wc, values); err != nil {
		wc.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
