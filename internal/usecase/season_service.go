package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/cfb-analytics/internal/domain/participation"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// SeasonRunResult summarizes one built and persisted season.
type SeasonRunResult struct {
	Season     int      `json:"season"`
	PlayCount  int      `json:"play_count"`
	Passing    int      `json:"passing"`
	Rushing    int      `json:"rushing"`
	Receiving  int      `json:"receiving"`
	Defense    int      `json:"defense"`
	Issues     []string `json:"issues"`
	DurationMs int64    `json:"duration_ms"`
}

// SeasonService loads one season's inputs, builds the role tables and hands
// them to every configured writer and the optional publisher.
type SeasonService struct {
	plays         play.Repository
	rosters       roster.Repository
	participation participation.Repository
	builder       *SeasonBuilder
	writers       []playerstats.Writer
	publisher     playerstats.Publisher
	logger        *logging.Logger
}

func NewSeasonService(
	plays play.Repository,
	rosters roster.Repository,
	parts participation.Repository,
	builder *SeasonBuilder,
	writers []playerstats.Writer,
	publisher playerstats.Publisher,
	logger *logging.Logger,
) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	if builder == nil {
		builder = NewSeasonBuilder(nil, 0, logger)
	}

	return &SeasonService{
		plays:         plays,
		rosters:       rosters,
		participation: parts,
		builder:       builder,
		writers:       writers,
		publisher:     publisher,
		logger:        logger,
	}
}

// RunSeason loads, builds, saves and announces one season.
func (s *SeasonService) RunSeason(ctx context.Context, season int) (SeasonRunResult, error) {
	ctx, span := startSeasonSpan(ctx, "usecase.SeasonService.RunSeason", season)
	result, err := s.runSeason(ctx, season)
	endSpan(span, err)
	return result, err
}

func (s *SeasonService) runSeason(ctx context.Context, season int) (SeasonRunResult, error) {
	if season <= 0 {
		return SeasonRunResult{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	if s.plays == nil || s.rosters == nil {
		return SeasonRunResult{}, fmt.Errorf("%w: play and roster sources are required", ErrDependencyUnavailable)
	}

	start := time.Now()
	input, err := s.load(ctx, season)
	if err != nil {
		return SeasonRunResult{}, err
	}

	tables, err := s.builder.Build(ctx, input)
	if err != nil {
		return SeasonRunResult{}, fmt.Errorf("build season=%d: %w", season, err)
	}

	for _, w := range s.writers {
		if err := w.SaveSeason(ctx, tables); err != nil {
			return SeasonRunResult{}, fmt.Errorf("save season=%d: %w", season, err)
		}
	}
	if s.publisher != nil {
		// Downstream notification is best effort; outputs are already saved.
		if err := s.publisher.PublishSeason(ctx, tables); err != nil {
			s.logger.WarnContext(ctx, "publish season failed", "season", season, "error", err)
		}
	}

	result := SeasonRunResult{
		Season:     season,
		PlayCount:  tables.PlayCount,
		Passing:    len(tables.Passing),
		Rushing:    len(tables.Rushing),
		Receiving:  len(tables.Receiving),
		Defense:    len(tables.Defense),
		Issues:     tables.Issues,
		DurationMs: time.Since(start).Milliseconds(),
	}
	s.logger.InfoContext(ctx, "season build completed",
		"season", season,
		"plays", result.PlayCount,
		"issues", len(result.Issues),
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// RunRange builds seasons start..end inclusive in order and stops at the
// first failing season.
func (s *SeasonService) RunRange(ctx context.Context, start, end int) ([]SeasonRunResult, error) {
	if start <= 0 || end < start {
		return nil, fmt.Errorf("%w: invalid season range %d..%d", ErrInvalidInput, start, end)
	}

	results := make([]SeasonRunResult, 0, end-start+1)
	for season := start; season <= end; season++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.RunSeason(ctx, season)
		if err != nil {
			s.logger.ErrorContext(ctx, "season range aborted", "season", season, "error", err)
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// load reads plays, rosters and participation concurrently.
func (s *SeasonService) load(ctx context.Context, season int) (BuildInput, error) {
	input := BuildInput{Season: season}
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		table, err := s.plays.LoadSeason(ctx, season)
		if err != nil {
			return fmt.Errorf("load plays season=%d: %w", season, err)
		}
		input.Plays = table
		return nil
	})
	p.Go(func(ctx context.Context) error {
		entries, err := s.rosters.ListBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("load rosters season=%d: %w", season, err)
		}
		input.Roster = entries
		return nil
	})
	if s.participation != nil {
		p.Go(func(ctx context.Context) error {
			table, err := s.participation.LoadSeason(ctx, season)
			if err != nil {
				return fmt.Errorf("load participation season=%d: %w", season, err)
			}
			input.Participation = table
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return BuildInput{}, err
	}
	return input, nil
}
