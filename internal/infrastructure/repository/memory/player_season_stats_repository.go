package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
)

// PlayerSeasonStatsRepository keeps built seasons in process, for dry runs
// and tests.
type PlayerSeasonStatsRepository struct {
	mu      sync.RWMutex
	seasons map[int]map[playerstats.Role][]playerstats.StoredRow
}

func NewPlayerSeasonStatsRepository() *PlayerSeasonStatsRepository {
	return &PlayerSeasonStatsRepository{
		seasons: make(map[int]map[playerstats.Role][]playerstats.StoredRow),
	}
}

func (r *PlayerSeasonStatsRepository) SaveSeason(_ context.Context, tables playerstats.SeasonTables) error {
	byRole := make(map[playerstats.Role][]playerstats.StoredRow, len(playerstats.AllRoles))
	for _, table := range tables.Tables() {
		rows := make([]playerstats.StoredRow, 0, len(table.Rows))
		for i, row := range table.Rows {
			rows = append(rows, playerstats.StoredRow{
				Season:   table.Season,
				Role:     table.Role,
				PlayerID: row.Key(),
				Stats:    table.Record(i),
			})
		}
		byRole[table.Role] = rows
	}

	r.mu.Lock()
	r.seasons[tables.Season] = byRole
	r.mu.Unlock()
	return nil
}

func (r *PlayerSeasonStatsRepository) ListSeason(_ context.Context, season int, role playerstats.Role) ([]playerstats.StoredRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.seasons[season][role]
	out := make([]playerstats.StoredRow, 0, len(rows))
	out = append(out, rows...)
	return out, nil
}

// Seasons lists stored seasons in ascending order.
func (r *PlayerSeasonStatsRepository) Seasons() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int, 0, len(r.seasons))
	for season := range r.seasons {
		out = append(out, season)
	}
	sort.Ints(out)
	return out
}
