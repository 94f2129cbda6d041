package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/mcq"
)

type mcqOptions struct {
	input            string
	output           string
	seed             uint64
	skipInsufficient bool
}

func newMCQCmd() *cobra.Command {
	opts := &mcqOptions{}
	cmd := &cobra.Command{
		Use:   "mcq",
		Short: "Turn emoji-art records into multiple-choice questions",
		Long: `Pose every record as a four-way multiple-choice question. The three wrong
choices are drawn at random from other names in the same category and the
four choices are shuffled.

A category with fewer than four distinct names cannot supply three
distractors. By default that stops the command; --skip-insufficient leaves
such records out instead.

Examples:
  # Reproducible questions
  emojiart mcq -i data/art.jsonl -o data/test.jsonl --seed 1

  # Leave out records from small categories
  emojiart mcq -i data/art.jsonl -o data/test.jsonl --skip-insufficient`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCQ(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "record store to read (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "question store to write (required)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one at random)")
	cmd.Flags().BoolVar(&opts.skipInsufficient, "skip-insufficient", false, "skip records whose category is too small")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runMCQ(cmd *cobra.Command, opts *mcqOptions) error {
	logger := newLogger(cmd)

	records, err := dataset.LoadRecords(opts.input)
	if err != nil {
		return err
	}

	composerOpts := []mcq.Option{mcq.WithLogger(logger)}
	if opts.seed != 0 {
		composerOpts = append(composerOpts, mcq.WithSeed(opts.seed))
	}
	composer := mcq.NewComposer(composerOpts...)

	var items []dataset.MCQItem
	skipped := 0
	if opts.skipInsufficient {
		var errs []error
		items, errs = composer.ComposeLenient(records)
		skipped = len(errs)
	} else {
		items, err = composer.Compose(records)
		if err != nil {
			return fmt.Errorf("%w (use --skip-insufficient to leave such records out)", err)
		}
	}

	if err := dataset.SaveItems(opts.output, items); err != nil {
		return err
	}

	table := NewTable([]string{"Category", "Names"})
	for _, c := range mcq.Categories(records) {
		table.AddRow([]string{c.Category, strconv.Itoa(c.Names)})
	}
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d questions written to %s (%d records skipped)\n", len(items), opts.output, skipped)
	return nil
}
