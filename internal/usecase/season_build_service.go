package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/cfb-analytics/internal/domain/participation"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const defaultAggregateWorkers = 4

// BuildInput is one season of raw inputs. Plays from other seasons are ignored.
type BuildInput struct {
	Season        int
	Plays         play.Table
	Roster        []roster.Entry
	Participation participation.Table
}

// SeasonBuilder runs transitions, EPA attribution, the four role aggregators
// and validation over one season held in memory.
type SeasonBuilder struct {
	epa     *EPAService
	workers int
	logger  *logging.Logger
}

func NewSeasonBuilder(epa *EPAService, workers int, logger *logging.Logger) *SeasonBuilder {
	if epa == nil {
		epa = NewEPAService(nil)
	}
	if workers <= 0 {
		workers = defaultAggregateWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonBuilder{epa: epa, workers: workers, logger: logger}
}

func (b *SeasonBuilder) Build(ctx context.Context, input BuildInput) (playerstats.SeasonTables, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonBuilder.Build",
		attribute.Int("cfb.season", input.Season),
		attribute.Int("cfb.plays", len(input.Plays.Records)),
	)
	defer span.End()

	if input.Season <= 0 {
		return playerstats.SeasonTables{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}

	start := time.Now()
	records := make([]play.Record, 0, len(input.Plays.Records))
	skipped := 0
	for _, r := range input.Plays.Records {
		// A missing season still fails below as a missing identity.
		if r.Season > 0 && r.Season != input.Season {
			skipped++
			continue
		}
		if err := r.Validate(); err != nil {
			return playerstats.SeasonTables{}, classifyPlayError(err)
		}
		records = append(records, r)
	}
	if skipped > 0 {
		b.logger.WarnContext(ctx, "skip plays from other seasons", "season", input.Season, "skipped", skipped)
	}

	annotated, err := b.epa.Attribute(ctx, play.ApplyTransitions(records))
	if err != nil {
		return playerstats.SeasonTables{}, fmt.Errorf("attribute epa season=%d: %w", input.Season, err)
	}

	directory := roster.NewDirectory(input.Season, input.Roster)
	if input.Participation.Empty() {
		b.logger.DebugContext(ctx, "no participation counters, games and snaps stay undefined", "season", input.Season)
	}
	aggInput := AggregateInput{
		Season:        input.Season,
		Plays:         input.Plays.WithRecords(annotated),
		Roster:        directory,
		Participation: input.Participation,
	}
	tables, err := b.aggregate(aggInput)
	if err != nil {
		return playerstats.SeasonTables{}, err
	}
	tables.PlayCount = len(annotated)
	tables.Issues = ValidateSeason(tables)

	b.logger.InfoContext(ctx, "season aggregated",
		"season", input.Season,
		"plays", len(annotated),
		"roster", directory.Len(),
		"passing", len(tables.Passing),
		"rushing", len(tables.Rushing),
		"receiving", len(tables.Receiving),
		"defense", len(tables.Defense),
		"elapsed", time.Since(start),
	)
	for _, issue := range tables.Issues {
		b.logger.WarnContext(ctx, "validation issue", "season", input.Season, "issue", issue)
	}
	return tables, nil
}

// aggregate fans the four independent aggregators out on a worker pool. Each
// task writes a distinct field of out.
func (b *SeasonBuilder) aggregate(in AggregateInput) (playerstats.SeasonTables, error) {
	out := playerstats.SeasonTables{Season: in.Season}
	tasks := []func(){
		func() { out.Passing = AssemblePassing(in) },
		func() { out.Rushing = AssembleRushing(in) },
		func() { out.Receiving = AssembleReceiving(in) },
		func() { out.Defense = AssembleDefense(in) },
	}

	workerCount := b.workers
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return playerstats.SeasonTables{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			task()
		}); err != nil {
			workers.Done()
			workers.Wait()
			return playerstats.SeasonTables{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()
	return out, nil
}
