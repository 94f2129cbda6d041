package registry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// AllowList is the curated set of display names admitted into the dataset.
// A nil AllowList admits every name.
type AllowList map[string]struct{}

// Allows reports whether name is admitted.
func (a AllowList) Allows(name string) bool {
	if a == nil {
		return true
	}
	_, ok := a[name]
	return ok
}

// ParseAllowList reads one name per line, ignoring blank lines.
func ParseAllowList(r io.Reader) (AllowList, error) {
	list := make(AllowList)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			list[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read allow-list: %w", err)
	}
	return list, nil
}

// LoadAllowList reads an allow-list file. An empty path yields a nil list,
// which admits everything.
func LoadAllowList(path string) (AllowList, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path) // #nosec G304 - User-specified allow-list
	if err != nil {
		return nil, fmt.Errorf("failed to open allow-list: %w", err)
	}
	defer f.Close()
	return ParseAllowList(f)
}
