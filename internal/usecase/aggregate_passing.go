package usecase

import (
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/statvalue"
)

// AssemblePassing builds one row per passer over pass plays.
func AssemblePassing(in AggregateInput) []playerstats.PassingRow {
	hasScramble := in.Plays.Has(play.ColumnScramble)
	hasPressure := in.Plays.Has(play.ColumnPressure)
	hasAirYards := in.Plays.Has(play.ColumnAirYards)
	hasYAC := in.Plays.Has(play.ColumnYAC)

	keys, groups := groupPlays(in.Plays.Records,
		func(r play.Record) bool { return r.IsPass },
		func(r play.Record) string { return r.Passer.PlayerID() },
	)

	rows := make([]playerstats.PassingRow, 0, len(keys))
	for _, id := range keys {
		plays := groups[id]
		row := playerstats.PassingRow{Identity: identityFor(in, id, false)}

		scrambles := 0
		for _, r := range plays {
			row.PassAttempts++
			row.PassYards += r.YardsGained
			row.SacksYardsLost += r.SackYards
			if r.Complete {
				row.Completions++
			}
			if r.Touchdown {
				row.PassTD++
			}
			if r.Interception {
				row.Interceptions++
			}
			if r.Sack {
				row.SacksTaken++
			}
			if hasScramble && flagged(r.Signals.Scramble) {
				scrambles++
			}
		}
		row.Dropbacks = row.PassAttempts + row.SacksTaken + scrambles
		row.PressuresFaced = sumIntSignal(hasPressure, plays, func(r play.Record) *int { return r.Signals.Pressure })
		row.AirYards = sumFloatSignal(hasAirYards, plays, func(r play.Record) *float64 { return r.Signals.AirYards })
		row.YAC = sumFloatSignal(hasYAC, plays, func(r play.Record) *float64 { return r.Signals.YAC })

		counters := in.Participation.Lookup(id)
		row.Games = counters.Games
		row.Starts = counters.Starts

		attempts := float64(row.PassAttempts)
		dropbacks := float64(row.Dropbacks)
		row.CompletionPct = statvalue.DivideInts(row.Completions, row.PassAttempts)
		row.YardsPerAtt = statvalue.DivideInts(row.PassYards, row.PassAttempts)
		row.AdjYardsPerAtt = statvalue.Divide(float64(row.PassYards+20*row.PassTD-45*row.Interceptions), attempts)
		row.YardsPerDropback = statvalue.DivideInts(row.PassYards, row.Dropbacks)
		row.TDRate = statvalue.DivideInts(row.PassTD, row.PassAttempts)
		row.IntRate = statvalue.DivideInts(row.Interceptions, row.PassAttempts)
		row.AirYardsPerAtt = statvalue.DivideOpt(row.AirYards, statvalue.Float(attempts))
		row.YACPerComp = statvalue.DivideOpt(row.YAC, statvalue.Float(float64(row.Completions)))
		row.PressureRate = statvalue.DivideOpt(statvalue.IntToFloat(row.PressuresFaced), statvalue.Float(dropbacks))
		row.SackRate = statvalue.DivideInts(row.SacksTaken, row.Dropbacks)

		row.EPATotalPass = epaTotal(plays)
		row.EPAPerDropback = statvalue.Divide(row.EPATotalPass, dropbacks)
		row.SuccessRate = shareOf(plays, func(r play.Record) bool { return r.EPA > 0 })
		row.ExplosivePassRate = shareOf(plays, func(r play.Record) bool { return r.YardsGained >= explosivePassYards })

		rows = append(rows, row)
	}
	return rows
}
