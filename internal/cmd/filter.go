package cmd

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/atikulmunna/sieve/internal/config"
	"github.com/atikulmunna/sieve/internal/failure"
	"github.com/atikulmunna/sieve/internal/filter"
	"github.com/atikulmunna/sieve/internal/model"
	"github.com/atikulmunna/sieve/internal/partition"
	"github.com/atikulmunna/sieve/internal/pipeline"
	"github.com/atikulmunna/sieve/internal/report"
	"github.com/atikulmunna/sieve/internal/source"
)

var (
	force        bool
	reportFmt    string
	manifestPath string
)

var filterCmd = &cobra.Command{
	Use:   "filter [input]",
	Short: "Filter, reorder and split a wordlist",
	Long: `Filter a wordlist read from a file, a glob of files, or standard input
("-" or no argument). Gzip and zstd inputs are decoded transparently.

Every configured predicate must pass for a line to survive. Survivors may
be deduplicated (first occurrence wins), sorted, and shuffled, in that order.

Memory: filtering and dedup stream the input. --sort, --randomize and
--split-pct hold every surviving line in memory; --dedup holds every
distinct survivor.

Output goes to stdout, to --output, or to <base>_part_<NN><ext> files when
--split-size or --split-pct is given. Existing outputs are only replaced
after confirmation (--force, or an interactive prompt).

Examples:
  sieve filter rockyou.txt --min-length 8 --min-digits 1 --min-special 1
  sieve filter "lists/**/*.txt.gz" --dedup --sort -o merged.txt
  cat words | sieve filter --exclude '^[0-9]+$' --whitespace forbid
  sieve filter words.txt --randomize --seed 7 -o set.txt --split-pct 80,10,10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

func init() {
	f := filterCmd.Flags()

	f.Int(config.KeyMinLength, 0, "minimum length in characters")
	f.Int(config.KeyMaxLength, 0, "maximum length in characters")
	f.Float64(config.KeyMinEntropy, 0, "minimum Shannon entropy (bits per character)")
	f.Float64(config.KeyMaxEntropy, 0, "maximum Shannon entropy (bits per character)")
	f.Int(config.KeyMinDigits, 0, "minimum number of digits")
	f.Int(config.KeyMaxDigits, 0, "maximum number of digits")
	f.Int(config.KeyMinLower, 0, "minimum number of lowercase letters")
	f.Int(config.KeyMaxLower, 0, "maximum number of lowercase letters")
	f.Int(config.KeyMinUpper, 0, "minimum number of uppercase letters")
	f.Int(config.KeyMaxUpper, 0, "maximum number of uppercase letters")
	f.Int(config.KeyMinSpecial, 0, "minimum number of special (non-alphanumeric) characters")
	f.Int(config.KeyMaxSpecial, 0, "maximum number of special (non-alphanumeric) characters")

	f.String(config.KeyInclude, "", "keep only lines matching this POSIX regex")
	f.String(config.KeyExclude, "", "drop lines matching this POSIX regex")
	f.Bool(config.KeyBasicRegex, false, "read --include/--exclude as basic (BRE) instead of extended regex")
	f.BoolP(config.KeyIgnoreCase, "i", false, "case-insensitive --include/--exclude")
	f.String(config.KeyWhitespace, "any", "whitespace policy: any, require, forbid")

	f.Bool(config.KeyDedup, false, "drop repeated lines, keeping the first")
	f.Bool(config.KeySort, false, "sort survivors (buffers all survivors)")
	f.Bool(config.KeyRandomize, false, "shuffle survivors (buffers all survivors)")
	f.Uint64(config.KeySeed, 0, "seed for --randomize, for reproducible output")

	f.StringP(config.KeyOutput, "o", "", "output file (default: stdout)")
	f.String(config.KeySplitSize, "", "split output into parts of at most this size, e.g. 500K, 10M")
	f.StringSlice(config.KeySplitPct, nil, "split output by line percentages, e.g. 30,30,40")

	f.BoolVarP(&force, "force", "f", false, "overwrite existing outputs without asking")
	f.StringVar(&reportFmt, "report", "text", "report format: text, json")
	f.StringVar(&manifestPath, "manifest", "", "also write the JSON report to this file")

	f.VisitAll(func(fl *pflag.Flag) {
		if isSpecKey(fl.Name) {
			cobra.CheckErr(viper.BindPFlag(fl.Name, fl))
		}
	})

	rootCmd.AddCommand(filterCmd)
}

func isSpecKey(name string) bool {
	switch name {
	case "force", "report", "manifest":
		return false
	}
	return true
}

func runFilter(cmd *cobra.Command, args []string) error {
	input := source.Stdin
	if len(args) == 1 {
		input = args[0]
	}

	opts := filterOptions{
		input:     input,
		stdin:     cmd.InOrStdin(),
		stdout:    cmd.OutOrStdout(),
		stderr:    cmd.ErrOrStderr(),
		reportFmt: strings.ToLower(reportFmt),
		manifest:  manifestPath,
		quiet:     quiet,
	}
	opts.confirm = newConfirmer(force, opts.stdin, opts.stderr, input == source.Stdin)

	_, err := execFilter(viper.GetViper(), opts)
	return err
}

// filterOptions carries everything a filter run needs beyond the spec.
type filterOptions struct {
	input     string
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	confirm   partition.Confirmer
	reportFmt string
	manifest  string
	quiet     bool
}

// execFilter runs one filter invocation end to end and reports it. The
// returned Report lists only artifacts that were completed.
func execFilter(v *viper.Viper, opts filterOptions) (report.Report, error) {
	started := time.Now()

	spec, err := config.Build(v)
	if err != nil {
		return report.Report{}, err
	}
	if opts.reportFmt != "" && opts.reportFmt != "text" && opts.reportFmt != "json" {
		return report.Report{}, failure.InvalidSpec("--report: unknown format %q", opts.reportFmt)
	}

	stats := model.NewRunStats()
	src, err := source.Open(opts.input, opts.stdin)
	if err != nil {
		rep := report.New([]string{opts.input}, spec, nil, stats, started, err)
		return rep, finish(opts, spec, rep, err)
	}

	logger.Debug("starting filter",
		"sources", src.Names(),
		"predicates", filter.New(spec).Active(),
		"mode", spec.Output.Kind,
		"buffered", spec.Buffered(),
	)

	var arts []model.Artifact
	lines, err := pipeline.Build(src, spec, stats)
	if err == nil {
		lines, err = guardInPlace(src.Names(), spec.Output, lines)
	}
	if err == nil {
		if _, ok := lines.(*pipeline.Buffer); ok {
			logger.Debug("survivors materialized", "lines", stats.Emitted())
		}
		arts, err = partition.New(opts.stdout, opts.confirm).Write(lines, spec.Output)
	}

	rep := report.New(src.Names(), spec, arts, stats, started, err)
	return rep, finish(opts, spec, rep, err)
}

// guardInPlace reads a lazy stream in full when one of the sources is
// also an output, so the file is consumed before it is truncated.
func guardInPlace(sources []string, mode model.OutputMode, lines pipeline.Lines) (pipeline.Lines, error) {
	if _, ok := lines.(*pipeline.Stream); !ok {
		return lines, nil
	}
	overlap, err := partition.Overlaps(sources, mode)
	if err != nil {
		return nil, failure.New(failure.KindWriteFailure, failure.StagePartition, "checking existing outputs", err)
	}
	if !overlap {
		return lines, nil
	}
	logger.Debug("input is also an output, buffering before write", "output", mode.Path)
	return pipeline.Collect(lines)
}

// finish renders the report and writes the manifest. runErr takes
// precedence over reporting errors.
func finish(opts filterOptions, spec model.FilterSpec, rep report.Report, runErr error) error {
	if !opts.quiet {
		// Lines own stdout when no output file is set.
		w := opts.stdout
		if spec.Output.Kind == model.OutputSingle && spec.Output.Path == "" {
			w = opts.stderr
		}
		var r report.Renderer = report.NewTextRenderer(w)
		if opts.reportFmt == "json" {
			r = report.NewJSONRenderer(w)
		}
		if err := r.Render(rep); err != nil {
			logger.Warn("report render failed", "err", err)
		}
	}

	if opts.manifest != "" {
		if err := report.SaveManifest(opts.manifest, rep); err != nil {
			if runErr == nil {
				return failure.New(failure.KindWriteFailure, failure.StageWrite, opts.manifest, err)
			}
			logger.Warn("manifest save failed", "path", opts.manifest, "err", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	logger.Debug("filter finished", "artifacts", len(rep.Artifacts), "bytes", rep.TotalBytes(), "elapsed", rep.Elapsed)
	return nil
}
