package usecase

import (
	"sort"

	"github.com/riskibarqy/cfb-analytics/internal/domain/participation"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/domain/statvalue"
)

const (
	explosivePassYards = 20
	explosiveRushYards = 10
	deepAirYards       = 20
	lightBoxMax        = 6
	heavyBoxMin        = 7
	redZoneYardline    = 20
	shortDistanceMax   = 2
)

// AggregateInput is the read-only view every role aggregator works from.
// Plays must already be EPA-annotated.
type AggregateInput struct {
	Season        int
	Plays         play.Table
	Roster        roster.Directory
	Participation participation.Table
}

// groupPlays keeps plays accepted by keep, groups them by key and returns
// the non-empty keys in ascending order.
func groupPlays(records []play.Record, keep func(play.Record) bool, key func(play.Record) string) ([]string, map[string][]play.Record) {
	groups := make(map[string][]play.Record)
	for _, r := range records {
		if !keep(r) {
			continue
		}
		id := key(r)
		if id == "" {
			continue
		}
		groups[id] = append(groups[id], r)
	}
	return sortedKeys(groups), groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// identityFor joins season-scoped roster fields. byGroup selects the
// position group instead of the position.
func identityFor(in AggregateInput, playerID string, byGroup bool) playerstats.Identity {
	id := playerstats.Identity{Season: in.Season, PlayerID: playerID}
	entry, ok := in.Roster.Lookup(playerID)
	if !ok {
		return id
	}
	id.PlayerName = statvalue.String(entry.PlayerName)
	id.TeamID = statvalue.String(entry.TeamID)
	id.TeamName = statvalue.String(entry.TeamName)
	id.Conference = statvalue.String(entry.Conference)
	if byGroup {
		id.Position = statvalue.String(entry.Group())
	} else {
		id.Position = statvalue.String(entry.Position)
	}
	return id
}

func flagged(v *int) bool {
	return v != nil && *v > 0
}

func epaValues(plays []play.Record, keep func(play.Record) bool) []float64 {
	out := make([]float64, 0, len(plays))
	for _, r := range plays {
		if keep == nil || keep(r) {
			out = append(out, r.EPA)
		}
	}
	return out
}

func epaTotal(plays []play.Record) float64 {
	total := 0.0
	for _, r := range plays {
		total += r.EPA
	}
	return total
}

func shareOf(plays []play.Record, hit func(play.Record) bool) *float64 {
	flags := make([]bool, len(plays))
	for i, r := range plays {
		flags[i] = hit(r)
	}
	return statvalue.Share(flags)
}

// sumIntSignal totals an optional count column; nil when the column is unavailable.
func sumIntSignal(available bool, plays []play.Record, get func(play.Record) *int) *int {
	if !available {
		return nil
	}
	total := 0
	for _, r := range plays {
		if v := get(r); v != nil {
			total += *v
		}
	}
	return &total
}

func sumFloatSignal(available bool, plays []play.Record, get func(play.Record) *float64) *float64 {
	if !available {
		return nil
	}
	total := 0.0
	for _, r := range plays {
		if v := get(r); v != nil {
			total += *v
		}
	}
	return &total
}

// meanIntSignal averages the defined values of an optional flag column.
func meanIntSignal(available bool, plays []play.Record, get func(play.Record) *int) *float64 {
	if !available {
		return nil
	}
	values := make([]float64, 0, len(plays))
	for _, r := range plays {
		if v := get(r); v != nil {
			values = append(values, float64(*v))
		}
	}
	return statvalue.Mean(values)
}

func meanFloatSignal(available bool, plays []play.Record, get func(play.Record) *float64) *float64 {
	if !available {
		return nil
	}
	values := make([]float64, 0, len(plays))
	for _, r := range plays {
		if v := get(r); v != nil {
			values = append(values, *v)
		}
	}
	return statvalue.Mean(values)
}

func derefOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
