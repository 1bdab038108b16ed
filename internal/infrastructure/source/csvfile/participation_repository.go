package csvfile

import (
	"context"
	"errors"
	"io/fs"
	"os"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-analytics/internal/domain/participation"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

const ParticipationFileName = "participation.csv"

var ErrParticipationColumn = errors.New("required participation column is missing")

var participationColumns = []participation.Column{
	participation.ColumnGames,
	participation.ColumnStarts,
	participation.ColumnSnaps,
	participation.ColumnRoutes,
	participation.ColumnDefSnaps,
}

// ParticipationRepository reads the optional <root>/<season>/participation.csv.
// A missing file yields an empty table.
type ParticipationRepository struct {
	layout Layout
	logger *logging.Logger
}

func NewParticipationRepository(layout Layout, logger *logging.Logger) *ParticipationRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &ParticipationRepository{layout: layout, logger: logger}
}

func (r *ParticipationRepository) LoadSeason(ctx context.Context, season int) (participation.Table, error) {
	path := r.layout.Path(season, ParticipationFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r.logger.WarnContext(ctx, "participation file not found, counters left undefined", "season", season, "path", path)
		return participation.Table{}, nil
	}

	s, err := readSheet(path)
	if err != nil {
		return participation.Table{}, err
	}
	if err := s.require(ErrParticipationColumn, "player_id"); err != nil {
		return participation.Table{}, err
	}

	available := make([]participation.Column, 0, len(participationColumns))
	for _, col := range participationColumns {
		if s.has(string(col)) {
			available = append(available, col)
		}
	}

	rows := make([]participation.Counters, 0, len(s.rows))
	err = s.each(func(c cells) error {
		row := participation.Counters{PlayerID: c.str("player_id")}
		var err error
		if row.Games, err = c.optInt("games"); err != nil {
			return err
		}
		if row.Starts, err = c.optInt("starts"); err != nil {
			return err
		}
		if row.Snaps, err = c.optInt("snaps"); err != nil {
			return err
		}
		if row.Routes, err = c.optInt("routes"); err != nil {
			return err
		}
		if row.DefSnaps, err = c.optInt("def_snaps"); err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return participation.Table{}, crerr.Wrapf(err, "decode participation %s", path)
	}

	r.logger.InfoContext(ctx, "participation loaded", "season", season, "path", path, "players", len(rows), "columns", len(available))
	return participation.NewTable(rows, available...), nil
}
