package participation

import "strings"

// Column names an optional participation counter.
type Column string

const (
	ColumnGames    Column = "games"
	ColumnStarts   Column = "starts"
	ColumnSnaps    Column = "snaps"
	ColumnRoutes   Column = "routes"
	ColumnDefSnaps Column = "def_snaps"
)

// Counters are per-player participation totals; nil means not supplied.
type Counters struct {
	PlayerID string
	Games    *int
	Starts   *int
	Snaps    *int
	Routes   *int
	DefSnaps *int
}

// Table is an optional participation source keyed by player id. The zero
// value is an empty table with no columns.
type Table struct {
	byID    map[string]Counters
	columns map[Column]struct{}
}

// NewTable indexes rows by player id, keeping the first row per player.
func NewTable(rows []Counters, columns ...Column) Table {
	t := Table{
		byID:    make(map[string]Counters, len(rows)),
		columns: make(map[Column]struct{}, len(columns)),
	}
	for _, c := range columns {
		t.columns[c] = struct{}{}
	}
	for _, row := range rows {
		id := strings.TrimSpace(row.PlayerID)
		if id == "" {
			continue
		}
		if _, exists := t.byID[id]; exists {
			continue
		}
		t.byID[id] = row
	}
	return t
}

func (t Table) Empty() bool {
	return len(t.byID) == 0
}

func (t Table) Has(c Column) bool {
	_, ok := t.columns[c]
	return ok
}

// Lookup returns the counters for a player, restricted to available columns.
func (t Table) Lookup(playerID string) Counters {
	row, ok := t.byID[strings.TrimSpace(playerID)]
	if !ok {
		return Counters{PlayerID: playerID}
	}
	if !t.Has(ColumnGames) {
		row.Games = nil
	}
	if !t.Has(ColumnStarts) {
		row.Starts = nil
	}
	if !t.Has(ColumnSnaps) {
		row.Snaps = nil
	}
	if !t.Has(ColumnRoutes) {
		row.Routes = nil
	}
	if !t.Has(ColumnDefSnaps) {
		row.DefSnaps = nil
	}
	return row
}
