package rawfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/source/cfbd"
	"github.com/riskibarqy/cfb-analytics/internal/infrastructure/source/csvfile"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

var rosterHeader = []string{"season", "player_id", "player_name", "team_id", "team_name", "conference", "position", "position_group"}

// Store writes pulled inputs under <root>/<season>/ in the layout the
// csvfile and cfbd loaders read.
type Store struct {
	root   string
	logger *logging.Logger
}

func NewStore(root string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{root: root, logger: logger}
}

func (s *Store) seasonDir(season int) (string, error) {
	dir := filepath.Join(s.root, strconv.Itoa(season))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", crerr.Wrapf(err, "create raw dir %s", dir)
	}
	return dir, nil
}

func (s *Store) SaveRoster(ctx context.Context, season int, entries []roster.Entry) error {
	dir, err := s.seasonDir(season)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, csvfile.RosterFileName)

	err = writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(rosterHeader); err != nil {
			return err
		}
		for _, e := range entries {
			record := []string{
				strconv.Itoa(e.Season), e.PlayerID, e.PlayerName, e.TeamID,
				e.TeamName, e.Conference, e.Position, e.PositionGroup,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		return crerr.Wrapf(err, "write roster %s", path)
	}
	s.logger.InfoContext(ctx, "roster written", "season", season, "path", path, "entries", len(entries))
	return nil
}

// SavePlays writes one JSON object per line.
func (s *Store) SavePlays(ctx context.Context, season int, plays []map[string]any) error {
	dir, err := s.seasonDir(season)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, cfbd.PlayFileName)

	err = writeAtomic(path, func(f *os.File) error {
		buf := bufio.NewWriterSize(f, 1<<20)
		for i, p := range plays {
			line, err := sonic.ConfigStd.Marshal(p)
			if err != nil {
				return crerr.Wrapf(err, "encode play %d", i)
			}
			if _, err := buf.Write(line); err != nil {
				return err
			}
			if err := buf.WriteByte('\n'); err != nil {
				return err
			}
		}
		return buf.Flush()
	})
	if err != nil {
		return crerr.Wrapf(err, "write plays %s", path)
	}
	s.logger.InfoContext(ctx, "raw plays written", "season", season, "path", path, "plays", len(plays))
	return nil
}

func writeAtomic(path string, fill func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
