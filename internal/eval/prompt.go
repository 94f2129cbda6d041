// Package eval runs quiz items against a language model and grades the
// free-text answers.
package eval

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/emojiart/internal/dataset"
)

// Mode selects what the model is shown.
type Mode string

const (
	// ModeText embeds the emoji art in the prompt.
	ModeText Mode = "text"
	// ModeImage attaches the source icon instead.
	ModeImage Mode = "image"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeText:
		return ModeText, nil
	case ModeImage:
		return ModeImage, nil
	default:
		return "", fmt.Errorf("invalid mode %q (use text or image)", s)
	}
}

const textPrompt = `The following picture is an emoji drawn with coloured square emoji. Each row of the picture is on its own line.

%s

Which emoji does the picture show?
%s

Answer with the letter of the correct choice.`

const imagePrompt = `The attached image is an emoji.

Which emoji does the image show?
%s

Answer with the letter of the correct choice.`

// FormatChoices renders choices as lettered lines, each preceded by a
// newline.
func FormatChoices(choices []string) string {
	var b strings.Builder
	for i, c := range choices {
		if i >= len(Letters) {
			break
		}
		fmt.Fprintf(&b, "\n%s: %s", Letter(i), c)
	}
	return b.String()
}

// BuildPrompt returns the question for item in mode.
func BuildPrompt(item *dataset.MCQItem, mode Mode) string {
	if mode == ModeImage {
		return fmt.Sprintf(imagePrompt, FormatChoices(item.Choices))
	}
	return fmt.Sprintf(textPrompt, item.EmojiArt, FormatChoices(item.Choices))
}
