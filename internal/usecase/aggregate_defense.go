package usecase

import (
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/statvalue"
)

type coverageTally struct {
	targets    int
	receptions int
	yards      int
	touchdowns int
	plays      []play.Record
}

// defenderSignal maps a per-play defender count column onto its output field.
type defenderSignal struct {
	column play.Column
	get    func(play.Record) *int
	set    func(*playerstats.DefenseRow, *int)
}

var defenderSignals = []defenderSignal{
	{play.ColumnTacklePrimary, func(r play.Record) *int { return r.Signals.TacklePrimary }, func(d *playerstats.DefenseRow, v *int) { d.SoloTackles = v }},
	{play.ColumnTackleAssist, func(r play.Record) *int { return r.Signals.TackleAssist }, func(d *playerstats.DefenseRow, v *int) { d.Assists = v }},
	{play.ColumnMissedTackle, func(r play.Record) *int { return r.Signals.MissedTackle }, func(d *playerstats.DefenseRow, v *int) { d.MissedTackles = v }},
	{play.ColumnTFL, func(r play.Record) *int { return r.Signals.TFL }, func(d *playerstats.DefenseRow, v *int) { d.TacklesForLoss = v }},
	{play.ColumnStop, func(r play.Record) *int { return r.Signals.Stop }, func(d *playerstats.DefenseRow, v *int) { d.Stops = v }},
	{play.ColumnForcedFumble, func(r play.Record) *int { return r.Signals.ForcedFumble }, func(d *playerstats.DefenseRow, v *int) { d.ForcedFumbles = v }},
	{play.ColumnFumbleRecoveryFlag, func(r play.Record) *int { return r.Signals.FumbleRecoveryFlag }, func(d *playerstats.DefenseRow, v *int) { d.FumbleRecoveries = v }},
	{play.ColumnDefensiveTD, func(r play.Record) *int { return r.Signals.DefensiveTD }, func(d *playerstats.DefenseRow, v *int) { d.DefensiveTDs = v }},
}

// AssembleDefense builds one row per defender named by any available signal.
// Each signal contributes independently; a defender absent from a signal
// keeps that signal's fields undefined.
func AssembleDefense(in AggregateInput) []playerstats.DefenseRow {
	has := in.Plays.Has
	records := in.Plays.Records
	rows := make(map[string]*playerstats.DefenseRow)
	rowFor := func(id string) *playerstats.DefenseRow {
		row, ok := rows[id]
		if !ok {
			row = &playerstats.DefenseRow{}
			rows[id] = row
		}
		return row
	}

	coverage := make(map[string]*coverageTally)
	if has(play.ColumnPrimaryDefenderID) {
		for _, r := range records {
			id := r.Signals.PrimaryDefenderID
			if !r.IsPass || id == "" {
				continue
			}
			tally, ok := coverage[id]
			if !ok {
				tally = &coverageTally{}
				coverage[id] = tally
			}
			tally.targets++
			tally.yards += r.YardsGained
			if r.Complete {
				tally.receptions++
			}
			if r.Touchdown {
				tally.touchdowns++
			}
			tally.plays = append(tally.plays, r)
		}
	}
	for id, tally := range coverage {
		row := rowFor(id)
		row.Targets = statvalue.Int(tally.targets)
		row.ReceptionsAllowed = statvalue.Int(tally.receptions)
		row.YardsAllowed = statvalue.Int(tally.yards)
		row.TDAllowed = statvalue.Int(tally.touchdowns)
		row.CoverageSuccessRateAllowed = shareOf(tally.plays, func(r play.Record) bool { return r.EPA <= 0 })
		row.ExplosiveAllowedRate = shareOf(tally.plays, func(r play.Record) bool { return r.YardsGained >= explosivePassYards })
	}

	if has(play.ColumnPressure) && has(play.ColumnPassRusherID) {
		counts := countBy(records, func(r play.Record) string {
			if !flagged(r.Signals.Pressure) {
				return ""
			}
			return r.Signals.PassRusherID
		})
		for id, n := range counts {
			rowFor(id).Pressures = statvalue.Int(n)
		}
	}

	if has(play.ColumnSackerID) {
		counts := countBy(records, func(r play.Record) string {
			if !r.Sack {
				return ""
			}
			return r.Signals.SackerID
		})
		for id, n := range counts {
			rowFor(id).Sacks = statvalue.Int(n)
		}
	}

	if has(play.ColumnDefenderID) {
		for _, signal := range defenderSignals {
			if !has(signal.column) {
				continue
			}
			totals := make(map[string]int)
			for _, r := range records {
				id := r.Signals.DefenderID
				if id == "" {
					continue
				}
				totals[id] += derefOr(signal.get(r), 0)
			}
			for id, total := range totals {
				signal.set(rowFor(id), statvalue.Int(total))
			}
		}
	}

	hasTackles := has(play.ColumnDefenderID) && has(play.ColumnTacklePrimary) && has(play.ColumnTackleAssist)
	hasMissed := hasTackles && has(play.ColumnMissedTackle)

	out := make([]playerstats.DefenseRow, 0, len(rows))
	for _, id := range sortedKeys(rows) {
		row := *rows[id]
		row.Identity = identityFor(in, id, true)

		counters := in.Participation.Lookup(id)
		row.Games = counters.Games
		row.Starts = counters.Starts
		row.DefSnaps = counters.DefSnaps

		if hasTackles {
			row.TotalTackles = statvalue.Int(derefOr(row.SoloTackles, 0) + derefOr(row.Assists, 0))
		}
		row.CompletionPctAllowed = statvalue.DivideOpt(statvalue.IntToFloat(row.ReceptionsAllowed), statvalue.IntToFloat(row.Targets))
		row.YardsPerTargetAllowed = statvalue.DivideOpt(statvalue.IntToFloat(row.YardsAllowed), statvalue.IntToFloat(row.Targets))
		if hasMissed && row.MissedTackles != nil && row.SoloTackles != nil && row.Assists != nil {
			attempts := *row.SoloTackles + *row.Assists + *row.MissedTackles
			row.MissedTackleRate = statvalue.DivideInts(*row.MissedTackles, attempts)
		}

		// Per-snap rush, coverage grading and EPA-saved signals are not sourced;
		// these stay undefined rather than zero.
		row.Interceptions = nil
		row.PassBreakups = nil
		row.PressureRate = nil
		row.WinRate = nil
		row.PasserRatingAllowed = nil
		row.StopRate = nil
		row.DefEPASavedTotal = nil
		row.DefEPASavedPerSnap = nil

		out = append(out, row)
	}
	return out
}

func countBy(records []play.Record, key func(play.Record) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if id := key(r); id != "" {
			counts[id]++
		}
	}
	return counts
}
