package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

// Writer writes players_<role>_<season>.csv tables and validation_<season>.json
// into a directory. With per-season directories enabled files land in
// <dir>/<season>/.
type Writer struct {
	dir          string
	seasonSubdir bool
	logger       *logging.Logger
}

type Option func(*Writer)

func WithSeasonSubdir() Option {
	return func(w *Writer) { w.seasonSubdir = true }
}

func NewWriter(dir string, logger *logging.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	w := &Writer{dir: dir, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ValidationReport is the JSON document written next to the tables.
type ValidationReport struct {
	Season int      `json:"season"`
	Plays  int      `json:"plays"`
	Issues []string `json:"issues"`
}

func TableFileName(role playerstats.Role, season int) string {
	return fmt.Sprintf("players_%s_%d.csv", role, season)
}

func ReportFileName(season int) string {
	return fmt.Sprintf("validation_%d.json", season)
}

// SeasonDir returns the directory the season's files are written to.
func (w *Writer) SeasonDir(season int) string {
	if w.seasonSubdir {
		return filepath.Join(w.dir, strconv.Itoa(season))
	}
	return w.dir
}

func (w *Writer) SaveSeason(ctx context.Context, tables playerstats.SeasonTables) error {
	dir := w.SeasonDir(tables.Season)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create output dir %s", dir)
	}

	for _, table := range tables.Tables() {
		path := filepath.Join(dir, TableFileName(table.Role, table.Season))
		if err := writeAtomic(path, func(f *os.File) error { return encodeTable(f, table) }); err != nil {
			return crerr.Wrapf(err, "write %s table", table.Role)
		}
		w.logger.InfoContext(ctx, "table written", "season", table.Season, "role", string(table.Role), "rows", len(table.Rows), "path", path)
	}

	issues := tables.Issues
	if issues == nil {
		issues = []string{}
	}
	report, err := sonic.ConfigStd.MarshalIndent(ValidationReport{Season: tables.Season, Plays: tables.PlayCount, Issues: issues}, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "encode validation report")
	}
	path := filepath.Join(dir, ReportFileName(tables.Season))
	if err := writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(append(report, '\n'))
		return err
	}); err != nil {
		return crerr.Wrap(err, "write validation report")
	}
	return nil
}

func encodeTable(f *os.File, table playerstats.Table) error {
	out := csv.NewWriter(f)
	if err := out.Write(table.Columns); err != nil {
		return err
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row.Values() {
			record[i] = FormatCell(v)
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// FormatCell renders one table cell; undefined values are empty.
func FormatCell(v any) string {
	switch x := playerstats.Unwrap(v).(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// writeAtomic writes through a temp file in the target directory so readers
// never observe a partial table.
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
