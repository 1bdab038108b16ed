package playerstats

import "context"

// StoredRow is a persisted aggregate row keyed by column name.
type StoredRow struct {
	Season   int
	Role     Role
	PlayerID string
	Stats    map[string]any
}

// Writer persists a season's tables, replacing any earlier build of the season.
type Writer interface {
	SaveSeason(ctx context.Context, tables SeasonTables) error
}

type Repository interface {
	Writer
	ListSeason(ctx context.Context, season int, role Role) ([]StoredRow, error)
}

// Publisher announces a completed season build to downstream consumers.
type Publisher interface {
	PublishSeason(ctx context.Context, tables SeasonTables) error
}
