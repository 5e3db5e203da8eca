package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/doclint/internal/config"
	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/discovery"
	"github.com/mvp-joe/doclint/internal/engine"
	"github.com/mvp-joe/doclint/internal/output"
	"github.com/mvp-joe/doclint/internal/watcher"
)

var (
	quietFlag       bool
	watchFlag       bool
	noColorFlag     bool
	formatFlag      string
	minSeverityFlag string
	jobsFlag        int
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check documentation comments",
	Long: `Lint parses JavaScript and TypeScript files and checks their JSDoc
comments against the declarations they document.

Files named explicitly are always linted; directories are searched using
paths.include and paths.ignore from .doclint/config.yml.

Examples:
  # Lint the current directory
  doclint lint

  # Lint a directory and a file, JSON output for tooling
  doclint lint src lib/util.js --format json

  # Fail only on errors
  doclint lint --min-severity error

  # Re-lint changed files as they are saved
  doclint lint --watch
`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bar and the summary of clean runs")
	lintCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and re-lint them")
	lintCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	lintCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (text|json)")
	lintCmd.Flags().StringVar(&minSeverityFlag, "min-severity", "", "Lowest severity that fails the run (info|warning|error)")
	lintCmd.Flags().IntVarP(&jobsFlag, "jobs", "j", 0, "Files linted in parallel (0 = GOMAXPROCS)")
}

// lintParams holds everything a lint run needs besides the config files.
type lintParams struct {
	rootDir    string
	configFile string
	targets    []string

	format      string
	minSeverity string
	jobs        int
	jobsSet     bool
	noColor     bool
	quiet       bool
	watch       bool

	stdout io.Writer
	stderr io.Writer
	log    logrus.FieldLogger
}

func runLint(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log, err := newLogger(cmd.ErrOrStderr(), verbose, logFormat)
	if err != nil {
		return err
	}

	return executeLint(ctx, lintParams{
		rootDir:     ".",
		configFile:  cfgFile,
		targets:     args,
		format:      formatFlag,
		minSeverity: minSeverityFlag,
		jobs:        jobsFlag,
		jobsSet:     cmd.Flags().Changed("jobs"),
		noColor:     noColorFlag,
		quiet:       quietFlag,
		watch:       watchFlag,
		stdout:      cmd.OutOrStdout(),
		stderr:      cmd.ErrOrStderr(),
		log:         log,
	})
}

// loadConfig loads the project config and applies command-line overrides.
func loadConfig(p lintParams) (*config.Config, error) {
	loader := config.NewLoader(p.rootDir)
	if p.configFile != "" {
		loader = config.NewFileLoader(p.configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if p.format != "" {
		cfg.Output.Format = p.format
	}
	if p.minSeverity != "" {
		cfg.Lint.MinSeverity = p.minSeverity
	}
	if p.jobsSet {
		cfg.Lint.Jobs = p.jobs
	}
	if p.noColor {
		cfg.Output.Color = "never"
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func executeLint(ctx context.Context, p lintParams) error {
	cfg, err := loadConfig(p)
	if err != nil {
		return err
	}
	threshold, err := cfg.Threshold()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	finder, err := discovery.NewFinder(p.rootDir, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return err
	}
	files, err := finder.Find(p.targets...)
	if err != nil {
		return err
	}
	p.log.WithField("files", len(files)).Debug("discovered files")

	opts, err := cfg.EngineOptions(p.log)
	if err != nil {
		return err
	}
	// progress goes to stderr, so it never mixes with JSON on stdout
	if format == output.FormatText && !p.quiet && !p.watch && isTerminalWriter(p.stderr) {
		opts = append(opts, engine.WithProgress(NewCLIProgressReporter(p.stderr, false)))
	}
	eng := engine.New(opts...)
	defer eng.Close()

	r := &renderer{
		w:      p.stdout,
		format: format,
		text:   output.TextOpts{Color: output.UseColor(cfg.Output.Color, asFile(p.stdout)), Quiet: p.quiet},
	}

	report, err := eng.LintFiles(ctx, files)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("lint cancelled")
		}
		return err
	}
	if err := r.render(report); err != nil {
		return err
	}

	if p.watch {
		return watchLint(ctx, p, cfg, finder, eng, r)
	}

	if report.Exceeds(threshold) || report.Failed() {
		return errProblems
	}
	return nil
}

// watchLint re-lints changed files until ctx is cancelled.
func watchLint(ctx context.Context, p lintParams, cfg *config.Config, finder *discovery.Finder, eng *engine.Engine, r *renderer) error {
	w, err := watcher.New(finder.Root(), finder, func(ctx context.Context, files []string) {
		report, err := eng.LintFiles(ctx, files)
		if err != nil {
			if ctx.Err() == nil {
				p.log.WithError(err).Error("re-lint failed")
			}
			return
		}
		if err := r.render(report); err != nil {
			p.log.WithError(err).Error("failed to write report")
		}
	}, watcher.WithDebounce(cfg.Debounce()), watcher.WithLogger(p.log))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	p.log.Info("watching for changes")
	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}

// renderer writes reports in the selected format.
type renderer struct {
	w      io.Writer
	format output.Format
	text   output.TextOpts
}

func (r *renderer) render(report *diag.Report) error {
	if r.format == output.FormatJSON {
		return output.JSON(r.w, report, uuid.NewString())
	}
	return output.Text(r.w, report, r.text)
}

func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

func isTerminalWriter(w io.Writer) bool {
	return output.IsTerminal(asFile(w))
}
