package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/emojiart/internal/art"
	"github.com/jmylchreest/emojiart/internal/compression"
	"github.com/jmylchreest/emojiart/internal/dataset"
	"github.com/jmylchreest/emojiart/internal/image"
	"github.com/jmylchreest/emojiart/internal/registry"
	"github.com/jmylchreest/emojiart/internal/security"
	"github.com/jmylchreest/emojiart/internal/util/cache"
)

type buildOptions struct {
	icons          string
	names          string
	categories     string
	allowList      string
	output         string
	size           int
	alphaThreshold uint8
	threshold      float64
	workers        int
	cacheDir       string
	refresh        bool
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render a directory of icons into an emoji-art record store",
		Long: `Render every icon in a directory as emoji art and keep those whose mean
CIEDE2000 difference from the source stays within the threshold.

Icons are named by code point (1f600.png) and read from a directory or
from a .zip, .tar, .tar.gz, .tar.xz or .tar.bz2 archive. Names come from a list of
"<glyph> - <name> - <file>" lines; categories from the Unicode
emoji-test.txt file, given as a path or an https URL. Downloaded category
files are cached and reused until --refresh is given. Without a category
file every record is filed under "Unknown".

The output is newline-delimited JSON, compressed when the name ends in
.gz or .xz.

Examples:
  # Build with categories and the curated allow-list
  emojiart build --icons emojis/ --names list_of_emoji.txt \
    --categories emoji-test.txt --allow-list curated.txt -o data/art.jsonl

  # Fetch categories from unicode.org, read icons from an archive and
  # compress the output
  emojiart build --icons emojis.zip --names list_of_emoji.txt \
    --categories https://unicode.org/Public/emoji/latest/emoji-test.txt -o art.jsonl.xz

  # Stricter quality gate on a 16x16 grid
  emojiart build --icons emojis/ --names list_of_emoji.txt --size 16 --threshold 20 -o art.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.icons, "icons", "", "icon directory or archive, images named by code point (required)")
	cmd.Flags().StringVar(&opts.names, "names", "", "name list file (required)")
	cmd.Flags().StringVar(&opts.categories, "categories", "", "emoji-test.txt path or https URL")
	cmd.Flags().StringVar(&opts.allowList, "allow-list", "", "file of display names to keep, one per line")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output record store (required)")
	cmd.Flags().IntVar(&opts.size, "size", image.DefaultSize, "grid edge length")
	cmd.Flags().Uint8Var(&opts.alphaThreshold, "alpha-threshold", art.DefaultAlphaThreshold, "pixels with lower alpha are blank")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", dataset.DefaultThreshold, "maximum mean colour difference")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.GOMAXPROCS(0), "icons processed concurrently")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "directory for downloaded category files (default user cache)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "download the category file even if cached")
	_ = cmd.MarkFlagRequired("icons")
	_ = cmd.MarkFlagRequired("names")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	logger := newLogger(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	names, err := registry.LoadNames(opts.names)
	if err != nil {
		return err
	}
	var cats registry.CategoryIndex
	if opts.categories != "" {
		cats, err = loadCategories(ctx, opts)
		if err != nil {
			return err
		}
	}
	reg := registry.New(names, cats)
	logger.Info("registry loaded", "names", len(names), "resolved", reg.Len(), "uncategorised", reg.Uncategorised)

	allow, err := registry.LoadAllowList(opts.allowList)
	if err != nil {
		return err
	}

	bopts := dataset.DefaultOptions()
	bopts.Size = opts.size
	bopts.AlphaThreshold = opts.alphaThreshold
	bopts.Threshold = opts.threshold
	bopts.Workers = opts.workers
	bopts.Registry = reg
	bopts.AllowList = allow
	bopts.Logger = logger
	builder, err := dataset.NewBuilder(bopts)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	iconDir := opts.icons
	if compression.IsArchive(opts.icons) {
		tmp, err := os.MkdirTemp("", "emojiart-icons-")
		if err != nil {
			return fmt.Errorf("failed to create extraction directory: %w", err)
		}
		defer os.RemoveAll(tmp)

		res, err := compression.Extract(opts.icons, tmp, image.IsImageFile)
		if err != nil {
			return err
		}
		logger.Debug("extracted icon archive", "archive", opts.icons, "icons", res.Extracted, "ignored", res.Skipped)
		iconDir = res.Dir
	}

	paths, err := image.ScanDirectoryForImages(iconDir)
	if err != nil {
		return err
	}
	logger.Info("building", "icons", len(paths), "workers", opts.workers, "threshold", opts.threshold)

	out, err := compression.Create(opts.output)
	if err != nil {
		return err
	}
	w := dataset.NewWriter[dataset.ArtRecord](out)

	summary, buildErr := builder.Build(ctx, paths, w.Write)
	if err := out.Close(); err != nil && buildErr == nil {
		buildErr = fmt.Errorf("failed to close %s: %w", opts.output, err)
	}

	printBuildSummary(cmd, summary, opts.output)
	return buildErr
}

// loadCategories reads the category index from a file, or from an https
// URL through the download cache.
func loadCategories(ctx context.Context, opts *buildOptions) (registry.CategoryIndex, error) {
	src := opts.categories
	if !strings.HasPrefix(src, "https://") && !strings.HasPrefix(src, "http://") {
		return registry.LoadCategories(src)
	}
	if err := security.ValidateHTTPURL(src, security.URLPolicy{}); err != nil {
		return nil, fmt.Errorf("invalid category URL: %w", err)
	}
	path, err := cache.Download(ctx, src, cache.Options{Dir: opts.cacheDir, Refresh: opts.refresh})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return registry.LoadCategories(path)
}

func printBuildSummary(cmd *cobra.Command, s dataset.Summary, output string) {
	table := NewTable([]string{"Outcome", "Icons"})
	table.AddRow([]string{"accepted", strconv.Itoa(s.Accepted)})
	table.AddRow([]string{"rejected", strconv.Itoa(s.Rejected)})
	table.AddRow([]string{"skipped", strconv.Itoa(s.Skipped)})
	table.AddRow([]string{"failed", strconv.Itoa(s.Failed)})
	table.AddRow([]string{"missing names", strconv.Itoa(s.MissingNames)})
	table.AddRow([]string{"total", strconv.Itoa(s.Total)})
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d records written to %s\n", s.Accepted, output)
}
