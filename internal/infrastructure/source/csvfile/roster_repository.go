package csvfile

import (
	"context"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/platform/cache"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

const RosterFileName = "rosters.csv"

var ErrRosterColumn = errors.New("required roster column is missing")

// RosterRepository reads rosters from <root>/<season>/rosters.csv, or from a
// single multi-season file when File is set. Parsed files are cached by path.
type RosterRepository struct {
	layout   Layout
	file     string
	cache    *cache.Store[[]roster.Entry]
	validate *validator.Validate
	logger   *logging.Logger
}

type RosterOption func(*RosterRepository)

// WithRosterFile reads every season from one file instead of the per-season layout.
func WithRosterFile(path string) RosterOption {
	return func(r *RosterRepository) { r.file = path }
}

func WithRosterCache(store *cache.Store[[]roster.Entry]) RosterOption {
	return func(r *RosterRepository) { r.cache = store }
}

func NewRosterRepository(layout Layout, logger *logging.Logger, opts ...RosterOption) *RosterRepository {
	if logger == nil {
		logger = logging.Default()
	}
	r := &RosterRepository{
		layout:   layout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.NewStore[[]roster.Entry](0)
	}
	return r
}

func (r *RosterRepository) ListBySeason(ctx context.Context, season int) ([]roster.Entry, error) {
	path := r.file
	if path == "" {
		path = r.layout.Path(season, RosterFileName)
	}

	all, err := r.cache.GetOrLoad(ctx, path, func(ctx context.Context) ([]roster.Entry, error) {
		return r.readFile(ctx, path)
	})
	if err != nil {
		return nil, err
	}

	out := make([]roster.Entry, 0, len(all))
	for _, e := range all {
		if e.Season == season {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *RosterRepository) readFile(ctx context.Context, path string) ([]roster.Entry, error) {
	s, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	if err := s.require(ErrRosterColumn, "season", "player_id"); err != nil {
		return nil, err
	}

	entries := make([]roster.Entry, 0, len(s.rows))
	skipped := 0
	err = s.each(func(c cells) error {
		season, err := c.intOr("season", 0)
		if err != nil {
			return err
		}
		e := roster.Entry{
			Season:        season,
			PlayerID:      c.str("player_id"),
			PlayerName:    c.str("player_name"),
			TeamID:        c.str("team_id"),
			TeamName:      c.str("team_name"),
			Conference:    c.str("conference"),
			Position:      c.str("position"),
			PositionGroup: c.str("position_group"),
		}
		if err := r.validate.Struct(e); err != nil {
			skipped++
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "decode roster %s", path)
	}
	if skipped > 0 {
		r.logger.WarnContext(ctx, "skip invalid roster rows", "path", path, "skipped", skipped)
	}
	r.logger.InfoContext(ctx, "roster loaded", "path", path, "entries", len(entries))
	return entries, nil
}
