package csvfile

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// Layout resolves per-season raw input files under <root>/<season>/.
type Layout struct {
	Root string
}

func (l Layout) Path(season int, name string) string {
	return filepath.Join(l.Root, strconv.Itoa(season), name)
}

// sheet is a parsed CSV file addressed by header name.
type sheet struct {
	path   string
	header map[string]int
	rows   [][]string
}

func readSheet(path string) (sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return sheet{}, crerr.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return parseSheet(path, f)
}

func parseSheet(path string, r io.Reader) (sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	records, err := reader.ReadAll()
	if err != nil {
		return sheet{}, crerr.Wrapf(err, "read csv %s", path)
	}
	if len(records) == 0 {
		return sheet{path: path, header: map[string]int{}}, nil
	}

	header := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := header[name]; !dup {
			header[name] = idx
		}
	}
	return sheet{path: path, header: header, rows: records[1:]}, nil
}

func (s sheet) has(column string) bool {
	_, ok := s.header[column]
	return ok
}

func (s sheet) require(sentinel error, columns ...string) error {
	for _, c := range columns {
		if !s.has(c) {
			return crerr.Wrapf(sentinel, "%s: column %q", s.path, c)
		}
	}
	return nil
}

// cells reads one row by column name; absent columns and blank or NA values
// read as undefined.
type cells struct {
	sheet *sheet
	row   []string
	line  int
}

func (s *sheet) each(fn func(c cells) error) error {
	for i, row := range s.rows {
		if err := fn(cells{sheet: s, row: row, line: i + 2}); err != nil {
			return err
		}
	}
	return nil
}

func (c cells) raw(column string) (string, bool) {
	idx, ok := c.sheet.header[column]
	if !ok || idx >= len(c.row) {
		return "", false
	}
	v := strings.TrimSpace(c.row[idx])
	if isMissing(v) {
		return "", false
	}
	return v, true
}

func (c cells) str(column string) string {
	v, _ := c.raw(column)
	return normalizeID(v)
}

func (c cells) optInt(column string) (*int, error) {
	v, ok := c.raw(column)
	if !ok {
		return nil, nil
	}
	n, err := parseInt(v)
	if err != nil {
		return nil, crerr.Wrapf(err, "%s:%d column %q", c.sheet.path, c.line, column)
	}
	return &n, nil
}

func (c cells) intOr(column string, fallback int) (int, error) {
	v, err := c.optInt(column)
	if err != nil || v == nil {
		return fallback, err
	}
	return *v, nil
}

func (c cells) optFloat(column string) (*float64, error) {
	v, ok := c.raw(column)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, crerr.Wrapf(err, "%s:%d column %q", c.sheet.path, c.line, column)
	}
	return &f, nil
}

// flag reads 0/1 or boolean text; undefined reads as false.
func (c cells) flag(column string) (bool, error) {
	v, ok := c.raw(column)
	if !ok {
		return false, nil
	}
	switch strings.ToLower(v) {
	case "true", "t", "yes":
		return true, nil
	case "false", "f", "no":
		return false, nil
	}
	n, err := parseInt(v)
	if err != nil {
		return false, crerr.Wrapf(err, "%s:%d column %q", c.sheet.path, c.line, column)
	}
	return n != 0, nil
}

func isMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "nan", "null", "none", "<na>":
		return true
	}
	return false
}

// parseInt accepts integral floats such as "12.0", which pandas writes for
// integer columns holding missing values.
func parseInt(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, crerr.Newf("not a number: %q", v)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, crerr.Newf("not an integer: %q", v)
	}
	return int(f), nil
}

// normalizeID strips the ".0" suffix pandas leaves on numeric ids.
func normalizeID(v string) string {
	if strings.HasSuffix(v, ".0") {
		if _, err := strconv.Atoi(strings.TrimSuffix(v, ".0")); err == nil {
			return strings.TrimSuffix(v, ".0")
		}
	}
	return v
}
