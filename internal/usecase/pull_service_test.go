package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
)

type fakeProvider struct {
	mu         sync.Mutex
	teams      []ExternalTeam
	rosters    map[string][]ExternalRosterPlayer
	plays      map[int][]map[string]any
	stats      map[string][]ExternalPlayStat
	statsCalls map[string]int
}

func (f *fakeProvider) FetchTeams(context.Context, int) ([]ExternalTeam, error) {
	return f.teams, nil
}

func (f *fakeProvider) FetchRoster(_ context.Context, _ int, team string) ([]ExternalRosterPlayer, error) {
	players, ok := f.rosters[team]
	if !ok {
		return nil, errors.New("roster not found")
	}
	return players, nil
}

func (f *fakeProvider) FetchPlays(_ context.Context, _ int, week int) ([]map[string]any, error) {
	plays, ok := f.plays[week]
	if !ok {
		return nil, errors.New("week unavailable")
	}
	return plays, nil
}

func (f *fakeProvider) FetchPlayStats(_ context.Context, gameID string) ([]ExternalPlayStat, error) {
	f.mu.Lock()
	f.statsCalls[gameID]++
	f.mu.Unlock()
	return f.stats[gameID], nil
}

type recordingStore struct {
	roster []roster.Entry
	plays  []map[string]any
}

func (s *recordingStore) SaveRoster(_ context.Context, _ int, entries []roster.Entry) error {
	s.roster = entries
	return nil
}

func (s *recordingStore) SavePlays(_ context.Context, _ int, plays []map[string]any) error {
	s.plays = plays
	return nil
}

func TestPullService_PullSeason(t *testing.T) {
	provider := &fakeProvider{
		teams: []ExternalTeam{
			{ID: "99", School: "LSU", Conference: "SEC"},
			{ID: "333", School: "Alabama", Conference: "SEC"},
		},
		rosters: map[string][]ExternalRosterPlayer{
			"LSU": {
				{ID: "4", FirstName: "Joe", LastName: "Burrow", Position: "QB"},
				{ID: "1", FirstName: "Ja'Marr", LastName: "Chase", Position: "WR"},
				{ID: "", FirstName: "No", LastName: "Id"},
			},
		},
		plays: map[int][]map[string]any{
			1: {
				{"id": "p1", "gameId": float64(401110723), "playType": "Pass Reception", "yardsGained": float64(12)},
				{"id": "p2", "gameId": float64(401110723), "playType": "Rush", "yardsGained": float64(5)},
			},
			2: {
				{"id": "p3", "gameId": float64(401110723), "playType": "Sack", "yardsGained": float64(-7)},
			},
		},
		stats: map[string][]ExternalPlayStat{
			"401110723": {
				{PlayID: "p1", AthleteID: "4", AthleteName: "Joe Burrow", StatType: "Completion", Stat: 12},
				{PlayID: "p1", AthleteID: "1", AthleteName: "Ja'Marr Chase", StatType: "Reception", Stat: 12},
				{PlayID: "p2", AthleteID: "22", AthleteName: "Clyde Edwards-Helaire", StatType: "Rush", Stat: 5},
				{PlayID: "p3", AthleteID: "4", AthleteName: "Joe Burrow", StatType: "Sack Taken", Stat: -7},
			},
		},
		statsCalls: map[string]int{},
	}
	store := &recordingStore{}

	svc := NewPullService(provider, store, 3, 2, nil)
	result, err := svc.PullSeason(context.Background(), 2019)
	if err != nil {
		t.Fatalf("pull season: %v", err)
	}

	if result.Teams != 2 || result.SkippedTeams != 1 || result.RosterEntries != 2 {
		t.Fatalf("unexpected roster result: %+v", result)
	}
	if result.Plays != 3 || result.Games != 1 || result.SkippedWeeks != 1 {
		t.Fatalf("unexpected play result: %+v", result)
	}
	if provider.statsCalls["401110723"] != 1 {
		t.Fatalf("expected play stats fetched once per game, got %d", provider.statsCalls["401110723"])
	}

	if store.roster[0].PlayerID != "1" || store.roster[1].PlayerName != "Joe Burrow" || store.roster[1].TeamName != "LSU" {
		t.Fatalf("unexpected roster entries: %+v", store.roster)
	}

	first := store.plays[0]
	if first["season"] != 2019 || first["game_id"] != "401110723" {
		t.Fatalf("expected season and game id on play, got %+v", first)
	}
	if first["passer_player_id"] != "4" || first["receiver_player_name"] != "Ja'Marr Chase" || first["completion"] != true {
		t.Fatalf("unexpected passing credits: %+v", first)
	}
	if store.plays[1]["rusher_player_id"] != "22" {
		t.Fatalf("unexpected rushing credit: %+v", store.plays[1])
	}
	sack := store.plays[2]
	if sack["sack"] != true || sack["sack_yards"] != float64(7) || sack["passer_player_name"] != "Joe Burrow" {
		t.Fatalf("unexpected sack credits: %+v", sack)
	}
}

func TestPullService_Validation(t *testing.T) {
	svc := NewPullService(nil, nil, 0, 0, nil)
	if _, err := svc.PullSeason(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.PullSeason(context.Background(), 2019); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestCreditPlayStats_TurnoverCredits(t *testing.T) {
	play := map[string]any{}
	CreditPlayStats(play, []ExternalPlayStat{
		{StatType: "Interception Thrown", AthleteID: "4", AthleteName: "Joe Burrow"},
		{StatType: "Fumble Recovered", AthleteID: "d-44", AthleteName: "Linebacker"},
		{StatType: "Touchdown", AthleteID: "d-44"},
		{StatType: "Tackle", AthleteID: "d-50"},
	})
	if play["interception"] != true || play["fumble"] != true || play["touchdown"] != true {
		t.Fatalf("expected turnover flags, got %+v", play)
	}
	if play["fumble_recovery_id"] != "d-44" || play["passer_player_id"] != "4" {
		t.Fatalf("unexpected credits: %+v", play)
	}
	if _, ok := play["rusher_player_id"]; ok {
		t.Fatalf("unexpected rusher credit")
	}
}
