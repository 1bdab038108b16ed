package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
)

func TestPlayerSeasonStatsRepository_SaveReplacesSeason(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerSeasonStatsRepository()

	first := playerstats.SeasonTables{
		Season:  2019,
		Rushing: []playerstats.RushingRow{{Identity: playerstats.Identity{Season: 2019, PlayerID: "rb1"}, RushAtt: 10}},
		Passing: []playerstats.PassingRow{{Identity: playerstats.Identity{Season: 2019, PlayerID: "qb1"}}},
	}
	if err := repo.SaveSeason(ctx, first); err != nil {
		t.Fatalf("save season: %v", err)
	}
	if err := repo.SaveSeason(ctx, playerstats.SeasonTables{Season: 2020}); err != nil {
		t.Fatalf("save second season: %v", err)
	}

	rows, err := repo.ListSeason(ctx, 2019, playerstats.RoleRushing)
	if err != nil {
		t.Fatalf("list season: %v", err)
	}
	if len(rows) != 1 || rows[0].PlayerID != "rb1" || rows[0].Stats["rush_att"] != 10 {
		t.Fatalf("unexpected rushing rows: %+v", rows)
	}

	first.Passing = nil
	if err := repo.SaveSeason(ctx, first); err != nil {
		t.Fatalf("rebuild season: %v", err)
	}
	rows, _ = repo.ListSeason(ctx, 2019, playerstats.RolePassing)
	if len(rows) != 0 {
		t.Fatalf("expected rebuild to replace passing rows, got %d", len(rows))
	}

	seasons := repo.Seasons()
	if len(seasons) != 2 || seasons[0] != 2019 || seasons[1] != 2020 {
		t.Fatalf("unexpected seasons: %v", seasons)
	}
}

func TestPlayerSeasonStatsRepository_UnknownSeasonIsEmpty(t *testing.T) {
	rows, err := NewPlayerSeasonStatsRepository().ListSeason(context.Background(), 1999, playerstats.RoleDefense)
	if err != nil {
		t.Fatalf("list unknown season: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
