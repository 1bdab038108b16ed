package roster

import "strings"

// Entry is one player on a team roster for a season.
type Entry struct {
	Season        int    `validate:"gt=0"`
	PlayerID      string `validate:"required"`
	PlayerName    string
	TeamID        string
	TeamName      string
	Conference    string
	Position      string
	PositionGroup string
}

// Group returns the position group, falling back to the position.
func (e Entry) Group() string {
	if strings.TrimSpace(e.PositionGroup) != "" {
		return e.PositionGroup
	}
	return e.Position
}

// Directory is a season-scoped lookup of roster entries by player id.
type Directory struct {
	byID map[string]Entry
}

// NewDirectory keeps entries of the given season; the first entry seen for a
// player wins.
func NewDirectory(season int, entries []Entry) Directory {
	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Season != season {
			continue
		}
		id := strings.TrimSpace(e.PlayerID)
		if id == "" {
			continue
		}
		if _, exists := byID[id]; exists {
			continue
		}
		byID[id] = e
	}
	return Directory{byID: byID}
}

func (d Directory) Len() int {
	return len(d.byID)
}

func (d Directory) Lookup(playerID string) (Entry, bool) {
	e, ok := d.byID[strings.TrimSpace(playerID)]
	return e, ok
}
