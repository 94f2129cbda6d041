package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/viewer"
)

func newViewCmd() *cobra.Command {
	var input, output, title string
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Write a self-grading HTML page for a question store",
		Long: `Write a single HTML page that shows every question's emoji art with
clickable choices. Open it in a browser; answers are checked in the page.

Examples:
  emojiart view -i data/test.jsonl -o view.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := dataset.LoadItems(input)
			if err != nil {
				return err
			}
			if err := viewer.RenderFile(output, items, viewer.Options{Title: title}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d questions written to %s\n", len(items), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "question store to read (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "emoji_dataset_view.html", "HTML file to write")
	cmd.Flags().StringVar(&title, "title", viewer.DefaultTitle, "page title")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
