package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/eval"
	"github.com/jmylchreest/emojiart/internal/security"
)

type evalOptions struct {
	input         string
	output        string
	model         string
	backend       string
	mode          string
	icons         string
	category      string
	start         int
	end           int
	concurrency   int
	timeout       time.Duration
	baseURL       string
	vertex        bool
	allowInsecure bool
}

func newEvalCmd() *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score a language model on a question store",
		Long: `Ask a model every question and grade its free-text answers. The last
standalone letter A-D in a reply is taken as the answer; without one, the
choice whose text appears last is used. Failed calls are recorded as
errors and count as wrong answers.

Backends:
  genai   Gemini API (GOOGLE_API_KEY) or Vertex AI (--vertex)
  openai  OpenAI-compatible chat completions (OPENAI_API_KEY, --base-url)
  auto    genai for gemini* models, otherwise openai

The model defaults to $EMOJIART_MODEL.

Examples:
  # Text mode with Gemini
  emojiart eval -i data/test.jsonl --model gemini-2.5-flash -o results.json

  # Image mode against the source icons
  emojiart eval -i data/test.jsonl --model gpt-4o --mode image --icons emojis/

  # A local OpenAI-compatible server, first 100 questions only
  emojiart eval -i data/test.jsonl --model llama3 --backend openai \
    --base-url http://localhost:11434/v1 --allow-insecure --end 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "question store to read (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the detailed JSON report here")
	cmd.Flags().StringVarP(&opts.model, "model", "m", os.Getenv(envModel), "model name (env "+envModel+")")
	cmd.Flags().Var(newChoiceFlag(&opts.backend, string(eval.BackendAuto),
		string(eval.BackendAuto), string(eval.BackendGenAI), string(eval.BackendOpenAI)), "backend", "backend (auto, genai, openai)")
	cmd.Flags().Var(newChoiceFlag(&opts.mode, string(eval.ModeText),
		string(eval.ModeText), string(eval.ModeImage)), "mode", "what the model sees (text, image)")
	cmd.Flags().StringVar(&opts.icons, "icons", "emojis", "icon directory for image mode")
	cmd.Flags().StringVar(&opts.category, "category", "", "only ask questions from this category")
	cmd.Flags().IntVar(&opts.start, "start", 0, "first question index (inclusive)")
	cmd.Flags().IntVar(&opts.end, "end", 0, "last question index (exclusive, 0 for all)")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", runtime.GOMAXPROCS(0), "requests in flight")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", eval.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", eval.DefaultOpenAIBaseURL, "OpenAI-compatible API base URL")
	cmd.Flags().BoolVar(&opts.vertex, "vertex", false, "use Vertex AI instead of the Gemini API")
	cmd.Flags().BoolVar(&opts.allowInsecure, "allow-insecure", false, "allow http and private-network base URLs")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEval(cmd *cobra.Command, opts *evalOptions) error {
	logger := newLogger(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.model == "" {
		return fmt.Errorf("no model given (use --model or %s)", envModel)
	}
	mode, err := eval.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	items, err := dataset.LoadItems(opts.input)
	if err != nil {
		return err
	}
	items, err = eval.Select(items, opts.start, opts.end, opts.category)
	if err != nil {
		return err
	}

	backend, err := newBackend(ctx, opts)
	if err != nil {
		return err
	}

	logger.Info("evaluating", "model", opts.model, "mode", mode, "questions", len(items))
	h := &eval.Harness{
		Backend:     backend,
		Model:       opts.model,
		Mode:        mode,
		IconDir:     opts.icons,
		Concurrency: opts.concurrency,
		Timeout:     opts.timeout,
		Logger:      logger,
	}
	report, err := h.Run(ctx, items)
	if err != nil {
		return err
	}

	printReport(cmd, report)

	if opts.output != "" {
		if err := report.Save(opts.output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nDetailed results saved to %s\n", opts.output)
	}
	return nil
}

func newBackend(ctx context.Context, opts *evalOptions) (eval.Backend, error) {
	kind, err := eval.ResolveBackend(eval.BackendKind(opts.backend), opts.model)
	if err != nil {
		return nil, err
	}

	switch kind {
	case eval.BackendGenAI:
		b, err := eval.NewGenAIBackend(ctx, eval.GenAIConfig{
			APIKey:   os.Getenv(envGoogleAPIKey),
			VertexAI: opts.vertex,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		policy := security.URLPolicy{AllowHTTP: opts.allowInsecure, AllowPrivate: opts.allowInsecure}
		if err := security.ValidateHTTPURL(opts.baseURL, policy); err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		return eval.NewOpenAIBackend(eval.OpenAIConfig{
			BaseURL: opts.baseURL,
			APIKey:  os.Getenv(envOpenAIAPIKey),
			Timeout: opts.timeout,
		}), nil
	}
}

func printReport(cmd *cobra.Command, r *eval.Report) {
	out := cmd.OutOrStdout()
	table := NewTable([]string{"Category", "Correct", "Total", "Errors", "Accuracy"})
	table.SetColumnMaxWidth(0, 30)
	for _, cat := range r.Categories() {
		t := r.PerCategory[cat]
		table.AddRow([]string{cat, strconv.Itoa(t.Correct), strconv.Itoa(t.Total), strconv.Itoa(t.Errors), percent(t.Accuracy)})
	}
	fmt.Fprint(out, table.Render())

	fmt.Fprintf(out, "\nQuestions: %d  Correct: %d  Errors: %d\n", r.Overall.Total, r.Overall.Correct, r.Overall.Errors)
	fmt.Fprintf(out, "Micro accuracy: %s  Macro accuracy: %s\n", percent(r.Overall.Accuracy), percent(r.MacroAccuracy))
}

func percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
