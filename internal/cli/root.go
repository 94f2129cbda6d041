// Package cli provides the command-line interface for emojiart.
package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/emojiart/internal/version"
)

const (
	envGoogleAPIKey = "GOOGLE_API_KEY"
	envOpenAIAPIKey = "OPENAI_API_KEY"
	envModel        = "EMOJIART_MODEL"
)

// NewRootCmd builds the command tree. Each call returns independent
// commands and flag values.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "emojiart",
		Short: "Build and evaluate emoji-art multiple-choice datasets",
		Long: `emojiart draws emoji icons as mosaics of nine coloured square emoji,
keeps the mosaics that stay perceptually close to the source, turns them
into four-way multiple-choice questions and scores language models on them.

A typical run:
  emojiart build --icons emojis/ --names list_of_emoji.txt --categories emoji-test.txt -o data/art.jsonl
  emojiart mcq -i data/art.jsonl -o data/test.jsonl --seed 1
  emojiart eval -i data/test.jsonl --model gemini-2.5-flash -o results.json
  emojiart view -i data/test.jsonl -o view.html`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newBuildCmd(),
		newMCQCmd(),
		newEvalCmd(),
		newViewCmd(),
		newConvertCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// newLogger returns the logger for cmd: Info by default, Debug with
// --verbose and Error with --quiet. Logs go to the command's stderr.
func newLogger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = hclog.Debug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "emojiart",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
