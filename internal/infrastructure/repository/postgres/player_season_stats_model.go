package postgres

import (
	"database/sql"
	"time"
)

const (
	playerSeasonStatsTable = "player_season_stats"
	seasonBuildsTable      = "season_builds"
)

var playerSeasonStatsColumns = []string{
	"season", "role", "player_id", "player_name", "team_id", "team_name", "conference", "position", "stats", "built_at",
}

type playerSeasonStatsTableModel struct {
	Season     int            `db:"season"`
	Role       string         `db:"role"`
	PlayerID   string         `db:"player_id"`
	PlayerName sql.NullString `db:"player_name"`
	TeamID     sql.NullString `db:"team_id"`
	TeamName   sql.NullString `db:"team_name"`
	Conference sql.NullString `db:"conference"`
	Position   sql.NullString `db:"position"`
	Stats      []byte         `db:"stats"`
	BuiltAt    time.Time      `db:"built_at"`
}

func (m playerSeasonStatsTableModel) values() []any {
	return []any{
		m.Season, m.Role, m.PlayerID, m.PlayerName, m.TeamID, m.TeamName, m.Conference, m.Position, string(m.Stats), m.BuiltAt,
	}
}

type seasonBuildTableModel struct {
	Season    int       `db:"season"`
	PlayCount int       `db:"play_count"`
	Issues    any       `db:"issues"`
	BuiltAt   time.Time `db:"built_at"`
}
