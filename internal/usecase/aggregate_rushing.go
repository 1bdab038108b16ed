package usecase

import (
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/statvalue"
)

// AssembleRushing builds one row per rusher over rush plays.
func AssembleRushing(in AggregateInput) []playerstats.RushingRow {
	hasFumbleLost := in.Plays.Has(play.ColumnFumbleLost)
	hasBeforeContact := in.Plays.Has(play.ColumnYardsBeforeContact)
	hasBroken := in.Plays.Has(play.ColumnBrokenTackles)
	hasForcedMissed := in.Plays.Has(play.ColumnForcedMissedTackles)
	hasRPO := in.Plays.Has(play.ColumnRPO)
	hasReadOption := in.Plays.Has(play.ColumnReadOption)
	hasBox := in.Plays.Has(play.ColumnDefendersInBox)

	keys, groups := groupPlays(in.Plays.Records,
		func(r play.Record) bool { return r.IsRush },
		func(r play.Record) string { return r.Rusher.PlayerID() },
	)

	rows := make([]playerstats.RushingRow, 0, len(keys))
	for _, id := range keys {
		plays := groups[id]
		row := playerstats.RushingRow{Identity: identityFor(in, id, false)}

		for _, r := range plays {
			row.RushAtt++
			row.RushYards += r.YardsGained
			if r.Touchdown {
				row.RushTD++
			}
			switch {
			case hasFumbleLost:
				row.Fumbles += derefOr(r.Signals.FumbleLost, 0)
			case r.Fumble && r.FumbleRecovery.Known():
				// A named recoverer means the ball changed hands.
				row.Fumbles++
			}
		}
		row.YardsBeforeContact = sumFloatSignal(hasBeforeContact, plays, func(r play.Record) *float64 { return r.Signals.YardsBeforeContact })
		row.BrokenTackles = sumIntSignal(hasBroken, plays, func(r play.Record) *int { return r.Signals.BrokenTackles })
		row.ForcedMissedTackles = sumIntSignal(hasForcedMissed, plays, func(r play.Record) *int { return r.Signals.ForcedMissedTackles })

		counters := in.Participation.Lookup(id)
		row.Games = counters.Games
		row.Snaps = counters.Snaps

		row.YardsPerCarry = statvalue.DivideInts(row.RushYards, row.RushAtt)
		row.TDRate = statvalue.DivideInts(row.RushTD, row.RushAtt)
		row.FumbleRate = statvalue.DivideInts(row.Fumbles, row.RushAtt)

		row.EPATotalRush = epaTotal(plays)
		row.EPAPerRush = statvalue.Divide(row.EPATotalRush, float64(row.RushAtt))
		row.SuccessRate = shareOf(plays, func(r play.Record) bool { return r.EPA > 0 })
		row.ExplosiveRushRate = shareOf(plays, func(r play.Record) bool { return r.YardsGained >= explosiveRushYards })

		row.RPOCarryRate = meanIntSignal(hasRPO, plays, func(r play.Record) *int { return r.Signals.RPO })
		row.ReadOptionRate = meanIntSignal(hasReadOption, plays, func(r play.Record) *int { return r.Signals.ReadOption })

		row.EPARushEarly = statvalue.Mean(epaValues(plays, func(r play.Record) bool {
			return r.Down != nil && (*r.Down == 1 || *r.Down == 2)
		}))
		row.EPARushShort = statvalue.Mean(epaValues(plays, func(r play.Record) bool {
			return r.Distance != nil && *r.Distance <= shortDistanceMax
		}))
		row.EPARushRedZone = statvalue.Mean(epaValues(plays, func(r play.Record) bool {
			return r.YardLine100 != nil && *r.YardLine100 <= redZoneYardline
		}))

		if hasBox {
			// Plays without a box count are neither light nor heavy.
			row.AttLightBoxRate = shareOf(plays, func(r play.Record) bool {
				return r.Signals.DefendersInBox != nil && *r.Signals.DefendersInBox <= lightBoxMax
			})
			row.AttHeavyBoxRate = shareOf(plays, func(r play.Record) bool {
				return r.Signals.DefendersInBox != nil && *r.Signals.DefendersInBox >= heavyBoxMin
			})
		}

		rows = append(rows, row)
	}
	return rows
}
