package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// choiceFlag is a string flag restricted to a fixed set of values, so a
// typo fails during flag parsing with the accepted values listed.
type choiceFlag struct {
	value   *string
	choices []string
}

var _ pflag.Value = (*choiceFlag)(nil)

func newChoiceFlag(value *string, def string, choices ...string) *choiceFlag {
	*value = def
	return &choiceFlag{value: value, choices: choices}
}

func (f *choiceFlag) String() string { return *f.value }

func (f *choiceFlag) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(f.choices, s) {
		return fmt.Errorf("must be one of %s", strings.Join(f.choices, ", "))
	}
	*f.value = s
	return nil
}

func (f *choiceFlag) Type() string { return "string" }
