package usecase

import (
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/statvalue"
)

// AssembleReceiving builds one row per targeted receiver.
func AssembleReceiving(in AggregateInput) []playerstats.ReceivingRow {
	has := in.Plays.Has

	keys, groups := groupPlays(in.Plays.Records,
		func(r play.Record) bool { return r.IsPass },
		func(r play.Record) string { return r.Receiver.PlayerID() },
	)

	rows := make([]playerstats.ReceivingRow, 0, len(keys))
	for _, id := range keys {
		plays := groups[id]
		row := playerstats.ReceivingRow{Identity: identityFor(in, id, false)}

		for _, r := range plays {
			row.Targets++
			row.RecYards += r.YardsGained
			if r.Complete {
				row.Receptions++
			}
			if r.Touchdown {
				row.RecTD++
			}
			if has(play.ColumnDrop) {
				row.Drops += derefOr(r.Signals.Drop, 0)
			}
			if has(play.ColumnFumbleLost) {
				row.Fumbles += derefOr(r.Signals.FumbleLost, 0)
			}
		}
		row.AirYards = sumFloatSignal(has(play.ColumnAirYards), plays, func(r play.Record) *float64 { return r.Signals.AirYards })
		row.YAC = sumFloatSignal(has(play.ColumnYAC), plays, func(r play.Record) *float64 { return r.Signals.YAC })

		counters := in.Participation.Lookup(id)
		row.Games = counters.Games
		row.Snaps = counters.Snaps
		row.Routes = counters.Routes

		targets := statvalue.Float(float64(row.Targets))
		row.TgtPerRoute = statvalue.DivideOpt(targets, statvalue.IntToFloat(row.Routes))
		row.ADOT = statvalue.DivideOpt(row.AirYards, targets)
		row.YardsPerRouteRun = statvalue.DivideOpt(statvalue.Float(float64(row.RecYards)), statvalue.IntToFloat(row.Routes))
		row.TargetsPerGame = statvalue.DivideIntOpt(row.Targets, row.Games)
		row.CatchPct = statvalue.DivideInts(row.Receptions, row.Targets)
		row.DropRate = statvalue.DivideInts(row.Drops, row.Targets)
		row.YdsPerTarget = statvalue.DivideInts(row.RecYards, row.Targets)
		row.TDsPerTarget = statvalue.DivideInts(row.RecTD, row.Targets)
		row.YACPerRec = statvalue.DivideOpt(row.YAC, statvalue.Float(float64(row.Receptions)))

		row.EPATotalRecv = epaTotal(plays)
		row.EPAPerTarget = statvalue.Divide(row.EPATotalRecv, float64(row.Targets))
		row.SuccessRate = shareOf(plays, func(r play.Record) bool { return r.EPA > 0 })
		row.ExplosiveRecRate = shareOf(plays, func(r play.Record) bool { return r.YardsGained >= explosivePassYards })

		row.SlotRate = meanIntSignal(has(play.ColumnSlotAligned), plays, func(r play.Record) *int { return r.Signals.SlotAligned })
		row.WideRate = meanIntSignal(has(play.ColumnWideAligned), plays, func(r play.Record) *int { return r.Signals.WideAligned })
		row.InlineTERate = meanIntSignal(has(play.ColumnInlineAligned), plays, func(r play.Record) *int { return r.Signals.InlineAligned })
		row.ManTgtRate = meanIntSignal(has(play.ColumnVsMan), plays, func(r play.Record) *int { return r.Signals.VsMan })
		row.ZoneTgtRate = meanIntSignal(has(play.ColumnVsZone), plays, func(r play.Record) *int { return r.Signals.VsZone })
		if has(play.ColumnVsMan) {
			row.EPAVsMan = statvalue.Mean(epaValues(plays, func(r play.Record) bool { return flagged(r.Signals.VsMan) }))
		}
		if has(play.ColumnVsZone) {
			row.EPAVsZone = statvalue.Mean(epaValues(plays, func(r play.Record) bool { return flagged(r.Signals.VsZone) }))
		}
		row.SeparationAvgYards = meanFloatSignal(has(play.ColumnSeparation), plays, func(r play.Record) *float64 { return r.Signals.Separation })

		if has(play.ColumnAirYards) {
			deep := func(r play.Record) bool {
				return r.Signals.AirYards != nil && *r.Signals.AirYards >= deepAirYards
			}
			row.EPAPerTargetDeep = statvalue.Mean(epaValues(plays, deep))
			row.EPAPerTargetShort = statvalue.Mean(epaValues(plays, func(r play.Record) bool { return !deep(r) }))
		}

		// Team air yards and team pass attempts are not modelled, so the
		// share columns stay undefined.
		row.AirYardsShare = nil
		row.TargetShare = nil

		rows = append(rows, row)
	}
	return rows
}
