package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	cfbdapi "github.com/riskibarqy/cfb-analytics/external/cfbd"
	"github.com/riskibarqy/cfb-analytics/internal/config"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/publisher"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/repository/postgres"
	sinkcsv "github.com/riskibarqy/cfb-analytics/internal/infrastructure/sink/csvfile"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/sink/rawfile"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/source/cfbd"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/source/csvfile"
	"github.com/riskibarqy/cfb-analytics/internal/platform/cache"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/riskibarqy/cfb-analytics/internal/usecase"
)

// Options are per-invocation overrides taken from CLI flags.
type Options struct {
	RawDir string
	OutDir string
	// SeasonSubdir writes each season's CSVs under <out>/<season>/.
	SeasonSubdir bool
}

// Builder is the wired season pipeline plus the resources it owns.
type Builder struct {
	Seasons *usecase.SeasonService
	Memory  *memory.PlayerSeasonStatsRepository

	closers []func() error
	logger  *logging.Logger
}

func NewBuilder(ctx context.Context, cfg config.Config, opts Options, logger *logging.Logger) (*Builder, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rawDir := firstNonEmpty(opts.RawDir, cfg.RawDir)
	outDir := firstNonEmpty(opts.OutDir, cfg.OutDir)
	b := &Builder{logger: logger}

	plays, err := newPlayRepository(cfg.PBPFormat, rawDir, logger)
	if err != nil {
		return nil, err
	}

	layout := csvfile.Layout{Root: rawDir}
	rosterOpts := []csvfile.RosterOption{
		csvfile.WithRosterCache(cache.NewStore[[]roster.Entry](cfg.RosterCacheTTL)),
	}
	if strings.TrimSpace(cfg.RosterFile) != "" {
		rosterOpts = append(rosterOpts, csvfile.WithRosterFile(cfg.RosterFile))
	}
	rosters := csvfile.NewRosterRepository(layout, logger, rosterOpts...)
	parts := csvfile.NewParticipationRepository(layout, logger)

	writers := make([]playerstats.Writer, 0, len(cfg.Sinks))
	for _, sink := range cfg.Sinks {
		switch sink {
		case config.SinkCSV:
			var writerOpts []sinkcsv.Option
			if opts.SeasonSubdir {
				writerOpts = append(writerOpts, sinkcsv.WithSeasonSubdir())
			}
			writers = append(writers, sinkcsv.NewWriter(outDir, logger, writerOpts...))
		case config.SinkPostgres:
			db, err := openDB(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary, cfg.ServiceName)
			if err != nil {
				_ = b.Close()
				return nil, err
			}
			b.closers = append(b.closers, db.Close)
			writers = append(writers, postgres.NewPlayerSeasonStatsRepository(db))
		case config.SinkMemory:
			b.Memory = memory.NewPlayerSeasonStatsRepository()
			writers = append(writers, b.Memory)
		default:
			_ = b.Close()
			return nil, fmt.Errorf("unknown sink %q", sink)
		}
	}

	var pub playerstats.Publisher
	if strings.TrimSpace(cfg.RedisURL) != "" {
		client, err := publisher.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		pub = newStreamPublisher(client, cfg, logger)
	}

	builder := usecase.NewSeasonBuilder(usecase.NewEPAService(cfg.EPModel()), cfg.AggregateWorkers, logger)
	b.Seasons = usecase.NewSeasonService(plays, rosters, parts, builder, writers, pub, logger)

	logger.Info("season builder wired",
		"raw_dir", rawDir,
		"out_dir", outDir,
		"pbp_format", cfg.PBPFormat,
		"sinks", strings.Join(cfg.Sinks, ","),
		"publisher", pub != nil,
		"workers", cfg.AggregateWorkers,
	)
	return b, nil
}

// Close releases database and redis connections.
func (b *Builder) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func newPlayRepository(format, rawDir string, logger *logging.Logger) (play.Repository, error) {
	switch format {
	case config.PBPFormatCSV, "":
		return csvfile.NewPlayRepository(csvfile.Layout{Root: rawDir}, logger), nil
	case config.PBPFormatCFBD:
		return cfbd.NewPlayRepository(rawDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown pbp format %q", format)
	}
}

func newStreamPublisher(client *redis.Client, cfg config.Config, logger *logging.Logger) *publisher.RedisStreamPublisher {
	return publisher.NewRedisStreamPublisher(client, publisher.RedisStreamPublisherConfig{
		Stream:         cfg.PublishStream,
		MaxLen:         cfg.PublishMaxLen,
		CircuitBreaker: cfg.PublishCircuit,
	}, logger)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Puller is the wired CFBD download pipeline.
type Puller struct {
	Seasons *usecase.PullService
}

// NewPuller wires the CFBD API client to a raw store under rawDir, falling
// back to cfg.RawDir.
func NewPuller(cfg config.Config, rawDir string, logger *logging.Logger) (*Puller, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.CFBDAPIKey) == "" {
		return nil, fmt.Errorf("CFBD_API_KEY is required to pull seasons")
	}
	rawDir = firstNonEmpty(rawDir, cfg.RawDir)

	client := cfbdapi.NewClient(cfbdapi.ClientConfig{
		BaseURL:        cfg.CFBDBaseURL,
		APIKey:         cfg.CFBDAPIKey,
		Timeout:        cfg.CFBDTimeout,
		MaxRetries:     cfg.CFBDMaxRetries,
		Logger:         logger,
		CircuitBreaker: cfg.CFBDCircuit,
	})
	store := rawfile.NewStore(rawDir, logger)

	logger.Info("cfbd puller wired", "raw_dir", rawDir, "weeks", cfg.CFBDWeeks, "concurrency", cfg.CFBDConcurrency)
	return &Puller{
		Seasons: usecase.NewPullService(client, store, cfg.CFBDWeeks, cfg.CFBDConcurrency, logger),
	}, nil
}
