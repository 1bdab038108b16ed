package csvfile

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

const PlayFileName = "pbp.csv"

// PlayRepository reads <root>/<season>/pbp.csv in the canonical play schema.
type PlayRepository struct {
	layout Layout
	logger *logging.Logger
}

func NewPlayRepository(layout Layout, logger *logging.Logger) *PlayRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayRepository{layout: layout, logger: logger}
}

func (r *PlayRepository) LoadSeason(ctx context.Context, season int) (play.Table, error) {
	path := r.layout.Path(season, PlayFileName)
	s, err := readSheet(path)
	if err != nil {
		return play.Table{}, err
	}
	table, err := decodePlays(&s)
	if err != nil {
		return play.Table{}, err
	}
	r.logger.InfoContext(ctx, "plays loaded", "season", season, "path", path, "plays", len(table.Records), "optional_columns", len(table.Columns))
	return table, nil
}

// signalDecoders fill one optional signal from its column.
var signalDecoders = map[play.Column]func(c cells, col string, s *play.Signals) error{
	play.ColumnScramble:            intSignal(func(s *play.Signals) **int { return &s.Scramble }),
	play.ColumnDrop:                intSignal(func(s *play.Signals) **int { return &s.Drop }),
	play.ColumnFumbleLost:          intSignal(func(s *play.Signals) **int { return &s.FumbleLost }),
	play.ColumnAirYards:            floatSignal(func(s *play.Signals) **float64 { return &s.AirYards }),
	play.ColumnYAC:                 floatSignal(func(s *play.Signals) **float64 { return &s.YAC }),
	play.ColumnPressure:            intSignal(func(s *play.Signals) **int { return &s.Pressure }),
	play.ColumnYardsBeforeContact:  floatSignal(func(s *play.Signals) **float64 { return &s.YardsBeforeContact }),
	play.ColumnBrokenTackles:       intSignal(func(s *play.Signals) **int { return &s.BrokenTackles }),
	play.ColumnForcedMissedTackles: intSignal(func(s *play.Signals) **int { return &s.ForcedMissedTackles }),
	play.ColumnRPO:                 intSignal(func(s *play.Signals) **int { return &s.RPO }),
	play.ColumnReadOption:          intSignal(func(s *play.Signals) **int { return &s.ReadOption }),
	play.ColumnDefendersInBox:      intSignal(func(s *play.Signals) **int { return &s.DefendersInBox }),
	play.ColumnSlotAligned:         intSignal(func(s *play.Signals) **int { return &s.SlotAligned }),
	play.ColumnWideAligned:         intSignal(func(s *play.Signals) **int { return &s.WideAligned }),
	play.ColumnInlineAligned:       intSignal(func(s *play.Signals) **int { return &s.InlineAligned }),
	play.ColumnVsMan:               intSignal(func(s *play.Signals) **int { return &s.VsMan }),
	play.ColumnVsZone:              intSignal(func(s *play.Signals) **int { return &s.VsZone }),
	play.ColumnSeparation:          floatSignal(func(s *play.Signals) **float64 { return &s.Separation }),
	play.ColumnPrimaryDefenderID:   idSignal(func(s *play.Signals) *string { return &s.PrimaryDefenderID }),
	play.ColumnPassRusherID:        idSignal(func(s *play.Signals) *string { return &s.PassRusherID }),
	play.ColumnSackerID:            idSignal(func(s *play.Signals) *string { return &s.SackerID }),
	play.ColumnDefenderID:          idSignal(func(s *play.Signals) *string { return &s.DefenderID }),
	play.ColumnTacklePrimary:       intSignal(func(s *play.Signals) **int { return &s.TacklePrimary }),
	play.ColumnTackleAssist:        intSignal(func(s *play.Signals) **int { return &s.TackleAssist }),
	play.ColumnMissedTackle:        intSignal(func(s *play.Signals) **int { return &s.MissedTackle }),
	play.ColumnTFL:                 intSignal(func(s *play.Signals) **int { return &s.TFL }),
	play.ColumnStop:                intSignal(func(s *play.Signals) **int { return &s.Stop }),
	play.ColumnForcedFumble:        intSignal(func(s *play.Signals) **int { return &s.ForcedFumble }),
	play.ColumnFumbleRecoveryFlag:  intSignal(func(s *play.Signals) **int { return &s.FumbleRecoveryFlag }),
	play.ColumnDefensiveTD:         intSignal(func(s *play.Signals) **int { return &s.DefensiveTD }),
}

func intSignal(field func(*play.Signals) **int) func(cells, string, *play.Signals) error {
	return func(c cells, col string, s *play.Signals) error {
		v, err := c.optInt(col)
		*field(s) = v
		return err
	}
}

func floatSignal(field func(*play.Signals) **float64) func(cells, string, *play.Signals) error {
	return func(c cells, col string, s *play.Signals) error {
		v, err := c.optFloat(col)
		*field(s) = v
		return err
	}
}

func idSignal(field func(*play.Signals) *string) func(cells, string, *play.Signals) error {
	return func(c cells, col string, s *play.Signals) error {
		*field(s) = c.str(col)
		return nil
	}
}

func decodePlays(s *sheet) (play.Table, error) {
	if err := s.require(play.ErrMissingColumn, "season", "game_id"); err != nil {
		return play.Table{}, err
	}

	available := make([]play.Column, 0, len(play.OptionalColumns))
	for _, col := range play.OptionalColumns {
		if s.has(string(col)) {
			available = append(available, col)
		}
	}

	records := make([]play.Record, 0, len(s.rows))
	err := s.each(func(c cells) error {
		r, err := decodePlay(c, available)
		if err != nil {
			return err
		}
		if r.PlayNumber == 0 {
			r.PlayNumber = len(records) + 1
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return play.Table{}, err
	}
	return play.Table{Records: records, Columns: play.NewColumnSet(available...)}, nil
}

func decodePlay(c cells, available []play.Column) (play.Record, error) {
	var (
		r   play.Record
		err error
	)
	collect := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	season, e := c.intOr("season", 0)
	collect(e)
	r.Season = season
	r.GameID = c.str("game_id")
	if v, e := c.intOr("play_number", 0); e == nil && v != 0 {
		r.PlayNumber = v
	} else {
		collect(e)
	}

	r.Down, e = c.optInt("down")
	collect(e)
	r.Distance, e = c.optInt("distance")
	collect(e)
	r.YardLine100, e = c.optInt("yardline_100")
	collect(e)
	r.YardsGained, e = c.intOr("yards_gained", 0)
	collect(e)
	r.SackYards, e = c.intOr("sack_yards", 0)
	collect(e)
	r.PointsScored, e = c.optInt("points_scored")
	collect(e)

	flags := []struct {
		column string
		dst    *bool
	}{
		{"is_pass", &r.IsPass}, {"is_rush", &r.IsRush}, {"complete", &r.Complete},
		{"touchdown", &r.Touchdown}, {"safety", &r.Safety}, {"interception", &r.Interception},
		{"sack", &r.Sack}, {"fumble", &r.Fumble}, {"fg_attempt", &r.FGAttempt}, {"punt_attempt", &r.PuntAttempt},
	}
	for _, f := range flags {
		*f.dst, e = c.flag(f.column)
		collect(e)
	}

	r.Passer = participant(c, "passer_player_id", "passer_player_name")
	r.Rusher = participant(c, "rusher_player_id", "rusher_player_name")
	r.Receiver = participant(c, "receiver_player_id", "receiver_player_name")
	r.FumbleRecovery = participant(c, "fumble_recovery_id", "fumble_recovery_name")

	for _, col := range available {
		if decode, ok := signalDecoders[col]; ok {
			collect(decode(c, string(col), &r.Signals))
		}
	}

	if err != nil {
		return play.Record{}, crerr.Wrapf(err, "decode play %s:%d", c.sheet.path, c.line)
	}
	return r, nil
}

func participant(c cells, idColumn, nameColumn string) *play.Participant {
	p := &play.Participant{ID: c.str(idColumn), Name: c.str(nameColumn)}
	if !p.Known() {
		return nil
	}
	return p
}
