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
)

type pullArgs struct {
	start  int
	end    int
	rawDir string
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
		logger.Error("season pull failed", "error", err)
		os.Exit(1)
	}
}

func run(args pullArgs, cfg config.Config, logger *logging.Logger, out io.Writer) error {
	shutdown, err := observability.Start(cfg, "puller", logger)
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

	puller, err := app.NewPuller(cfg, args.rawDir, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for season := args.start; season <= args.end; season++ {
		result, err := puller.Seasons.PullSeason(ctx, season)
		if err != nil {
			return fmt.Errorf("pull season=%d: %w", season, err)
		}
		fmt.Fprintf(out, "season %d: teams=%d roster=%d plays=%d games=%d skipped_teams=%d skipped_weeks=%d (%dms)\n",
			result.Season, result.Teams, result.RosterEntries, result.Plays, result.Games,
			result.SkippedTeams, result.SkippedWeeks, result.DurationMs)
	}
	return nil
}

// parseArgs accepts -year Y or -start A -end B. A bare -start pulls one season.
func parseArgs(argv []string, stderr io.Writer) (pullArgs, error) {
	var (
		args pullArgs
		year int
	)
	fs := flag.NewFlagSet("puller", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&year, "year", 0, "single season to pull")
	fs.IntVar(&args.start, "start", 0, "first season of an inclusive range")
	fs.IntVar(&args.end, "end", 0, "last season of an inclusive range")
	fs.StringVar(&args.rawDir, "rawdir", "", "raw output root (overrides RAW_DIR)")
	if err := fs.Parse(argv); err != nil {
		return pullArgs{}, err
	}

	if year > 0 {
		if args.start > 0 || args.end > 0 {
			return pullArgs{}, fmt.Errorf("-year cannot be combined with -start/-end")
		}
		args.start, args.end = year, year
	}
	if args.start > 0 && args.end == 0 {
		args.end = args.start
	}
	if args.start <= 0 || args.end < args.start {
		return pullArgs{}, fmt.Errorf("a season (-year) or an inclusive range (-start/-end) is required")
	}
	return args, nil
}
