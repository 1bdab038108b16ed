package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/cfb-analytics/internal/app"
	"github.com/riskibarqy/cfb-analytics/internal/config"
	"github.com/riskibarqy/cfb-analytics/internal/observability"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/riskibarqy/cfb-analytics/internal/usecase"
)

type runArgs struct {
	year   int
	start  int
	end    int
	rawDir string
	outDir string
}

func main() {
	args, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(args, cfg, logger, os.Stdout); err != nil {
		logger.Error("season build failed", "error", err)
		os.Exit(1)
	}
}

func run(args runArgs, cfg config.Config, logger *logging.Logger, out io.Writer) error {
	shutdown, err := observability.Start(cfg, "builder", logger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("observability shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder, err := app.NewBuilder(ctx, cfg, app.Options{
		RawDir:       args.rawDir,
		OutDir:       args.outDir,
		SeasonSubdir: args.isRange(),
	}, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := builder.Close(); err != nil {
			logger.Warn("close builder resources", "error", err)
		}
	}()

	if !args.isRange() {
		result, err := builder.Seasons.RunSeason(ctx, args.year)
		if err != nil {
			return err
		}
		printResult(out, result)
		return nil
	}

	results, err := builder.Seasons.RunRange(ctx, args.start, args.end)
	for _, result := range results {
		printResult(out, result)
	}
	return err
}

func parseArgs(argv []string, stderr io.Writer) (runArgs, error) {
	var args runArgs
	fs := flag.NewFlagSet("builder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&args.year, "year", 0, "single season to build")
	fs.IntVar(&args.start, "start", 0, "first season of an inclusive range")
	fs.IntVar(&args.end, "end", 0, "last season of an inclusive range")
	fs.StringVar(&args.rawDir, "rawdir", "", "raw input root (overrides RAW_DIR)")
	fs.StringVar(&args.outDir, "outdir", "", "output root (overrides OUT_DIR)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: builder -year Y | -start A -end B [-rawdir DIR] [-outdir DIR]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return runArgs{}, err
	}

	switch {
	case args.year > 0 && (args.start > 0 || args.end > 0):
		return runArgs{}, fmt.Errorf("-year cannot be combined with -start/-end")
	case args.year > 0:
		return args, nil
	case args.start > 0 && args.end >= args.start:
		return args, nil
	case args.start > 0 || args.end > 0:
		return runArgs{}, fmt.Errorf("invalid season range %d..%d", args.start, args.end)
	default:
		return runArgs{}, fmt.Errorf("either -year or -start/-end is required")
	}
}

func (a runArgs) isRange() bool {
	return a.year == 0
}

func printResult(out io.Writer, result usecase.SeasonRunResult) {
	fmt.Fprintf(out, "season %d: plays=%d passing=%d rushing=%d receiving=%d defense=%d issues=%d (%dms)\n",
		result.Season, result.PlayCount, result.Passing, result.Rushing, result.Receiving, result.Defense,
		len(result.Issues), result.DurationMs)
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
}
