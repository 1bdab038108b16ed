package usecase

import (
	"testing"

	"github.com/riskibarqy/cfb-analytics/internal/domain/participation"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
)

func testRoster() roster.Directory {
	return roster.NewDirectory(testSeason, []roster.Entry{
		{Season: testSeason, PlayerID: "qb1", PlayerName: "Joe Burrow", TeamID: "99", TeamName: "LSU", Conference: "SEC", Position: "QB"},
		{Season: testSeason, PlayerID: "wr1", PlayerName: "Ja'Marr Chase", TeamID: "99", TeamName: "LSU", Conference: "SEC", Position: "WR"},
		{Season: testSeason, PlayerID: "lb1", PlayerName: "Patrick Queen", TeamID: "99", TeamName: "LSU", Conference: "SEC", Position: "LB", PositionGroup: "LB"},
		{Season: testSeason - 1, PlayerID: "rb1", PlayerName: "Last Year", Position: "RB"},
	})
}

func aggregateInput(table play.Table, parts participation.Table) AggregateInput {
	return AggregateInput{
		Season:        testSeason,
		Plays:         table.WithRecords(annotate(table.Records)),
		Roster:        testRoster(),
		Participation: parts,
	}
}

func TestAssemblePassing_CountsAndRates(t *testing.T) {
	t.Parallel()

	complete := passPlay("qb1", "wr1", 1, 10, 75, 25)
	complete.Complete = true
	incomplete := passPlay("qb1", "wr1", 2, 10, 50, 0)
	sack := passPlay("qb1", "", 3, 10, 50, -7)
	sack.Sack = true
	sack.SackYards = 7
	pick := passPlay("qb1", "wr1", 3, 17, 57, 0)
	pick.Interception = true

	in := aggregateInput(play.Table{Records: []play.Record{complete, incomplete, sack, pick}}, participation.Table{})
	rows := AssemblePassing(in)
	if len(rows) != 1 {
		t.Fatalf("expected one passer, got %d", len(rows))
	}
	row := rows[0]

	if row.PassAttempts != 4 || row.Completions != 1 || row.SacksTaken != 1 || row.Interceptions != 1 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if row.Dropbacks != 5 {
		t.Fatalf("expected dropbacks attempts+sacks=5, got %d", row.Dropbacks)
	}
	if row.PassYards != 18 || row.SacksYardsLost != 7 {
		t.Fatalf("unexpected yards: pass=%d sack=%d", row.PassYards, row.SacksYardsLost)
	}
	if row.CompletionPct == nil || *row.CompletionPct != 0.25 {
		t.Fatalf("unexpected completion pct: %v", row.CompletionPct)
	}
	wantAdj := float64(18+0-45) / 4
	if row.AdjYardsPerAtt == nil || !almostEqual(*row.AdjYardsPerAtt, wantAdj) {
		t.Fatalf("unexpected adjusted yards per attempt: %v", row.AdjYardsPerAtt)
	}
	if row.ExplosivePassRate == nil || *row.ExplosivePassRate != 0.25 {
		t.Fatalf("unexpected explosive rate: %v", row.ExplosivePassRate)
	}
	if row.PressuresFaced != nil || row.AirYards != nil || row.PressureRate != nil || row.AirYardsPerAtt != nil {
		t.Fatalf("expected unavailable signals to stay undefined: %+v", row)
	}
	if row.Games != nil || row.Starts != nil {
		t.Fatalf("expected missing participation to stay undefined")
	}
	if row.PlayerName == nil || *row.PlayerName != "Joe Burrow" || row.Position == nil || *row.Position != "QB" {
		t.Fatalf("expected roster identity to be joined: %+v", row.Identity)
	}
}

func TestAssemblePassing_ZeroCompletionsAndNoAttempts(t *testing.T) {
	t.Parallel()

	misses := []play.Record{
		passPlay("qb2", "wr1", 1, 10, 75, 0),
		passPlay("qb2", "wr1", 2, 10, 75, 0),
	}
	handoff := rushPlay("qb3", 1, 10, 75, 3)

	in := aggregateInput(play.Table{Records: append(misses, handoff)}, participation.Table{})
	rows := AssemblePassing(in)
	if len(rows) != 1 || rows[0].PlayerID != "qb2" {
		t.Fatalf("expected only the passer with attempts, got %+v", rows)
	}
	if rows[0].CompletionPct == nil || *rows[0].CompletionPct != 0 {
		t.Fatalf("expected completion pct 0, got %v", rows[0].CompletionPct)
	}
	if rows[0].YACPerComp != nil {
		t.Fatalf("expected undefined yac per completion")
	}
	if rows[0].PlayerName != nil {
		t.Fatalf("expected unknown roster identity to be undefined")
	}
}

func TestAssemblePassing_OptionalSignals(t *testing.T) {
	t.Parallel()

	a := passPlay("qb1", "wr1", 1, 10, 75, 10)
	a.Complete = true
	a.Signals.Pressure = intPtr(1)
	a.Signals.AirYards = floatPtr(6)
	a.Signals.YAC = floatPtr(4)
	scramble := passPlay("qb1", "", 2, 10, 65, 5)
	scramble.Signals.Scramble = intPtr(1)

	table := play.Table{
		Records: []play.Record{a, scramble},
		Columns: play.NewColumnSet(play.ColumnPressure, play.ColumnAirYards, play.ColumnYAC, play.ColumnScramble),
	}
	parts := participation.NewTable([]participation.Counters{{PlayerID: "qb1", Games: intPtr(13), Starts: intPtr(13)}},
		participation.ColumnGames)

	row := AssemblePassing(aggregateInput(table, parts))[0]
	if row.Dropbacks != 3 {
		t.Fatalf("expected scramble to add a dropback, got %d", row.Dropbacks)
	}
	if row.PressuresFaced == nil || *row.PressuresFaced != 1 {
		t.Fatalf("unexpected pressures: %v", row.PressuresFaced)
	}
	if row.AirYardsPerAtt == nil || *row.AirYardsPerAtt != 3 {
		t.Fatalf("unexpected air yards per attempt: %v", row.AirYardsPerAtt)
	}
	if row.YACPerComp == nil || *row.YACPerComp != 4 {
		t.Fatalf("unexpected yac per completion: %v", row.YACPerComp)
	}
	if row.Games == nil || *row.Games != 13 {
		t.Fatalf("expected games from participation")
	}
	if row.Starts != nil {
		t.Fatalf("expected starts to be undefined when column is unavailable")
	}
}

func TestAssembleRushing_SituationalSplits(t *testing.T) {
	t.Parallel()

	early := rushPlay("rb1", 1, 10, 60, 12)
	short := rushPlay("rb1", 3, 1, 48, 2)
	redZone := rushPlay("rb1", 3, 5, 15, -1)
	redZone.Signals.FumbleLost = intPtr(1)
	early.Signals.DefendersInBox = intPtr(6)
	short.Signals.DefendersInBox = intPtr(8)

	table := play.Table{
		Records: []play.Record{early, short, redZone},
		Columns: play.NewColumnSet(play.ColumnFumbleLost, play.ColumnDefendersInBox),
	}
	rows := AssembleRushing(aggregateInput(table, participation.Table{}))
	if len(rows) != 1 {
		t.Fatalf("expected one rusher, got %d", len(rows))
	}
	row := rows[0]

	if row.RushAtt != 3 || row.RushYards != 13 || row.Fumbles != 1 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if row.ExplosiveRushRate == nil || !almostEqual(*row.ExplosiveRushRate, 1.0/3) {
		t.Fatalf("unexpected explosive rate: %v", row.ExplosiveRushRate)
	}
	if row.EPARushEarly == nil || row.EPARushShort == nil || row.EPARushRedZone == nil {
		t.Fatalf("expected situational splits to be defined")
	}
	annotated := annotate([]play.Record{early, short, redZone})
	if !almostEqual(*row.EPARushEarly, annotated[0].EPA) || !almostEqual(*row.EPARushShort, annotated[1].EPA) {
		t.Fatalf("unexpected split epa: early=%f short=%f", *row.EPARushEarly, *row.EPARushShort)
	}
	if !almostEqual(*row.AttLightBoxRate, 1.0/3) || !almostEqual(*row.AttHeavyBoxRate, 1.0/3) {
		t.Fatalf("unexpected box rates: light=%f heavy=%f", *row.AttLightBoxRate, *row.AttHeavyBoxRate)
	}
	if row.RPOCarryRate != nil || row.YardsOverExpectedPerAtt != nil || row.YardsBeforeContact != nil {
		t.Fatalf("expected unavailable rushing signals to stay undefined")
	}
	if row.PlayerName != nil {
		t.Fatalf("expected roster entry from another season to be ignored")
	}
}

func TestAssembleRushing_FumblesWithoutFumbleLostColumn(t *testing.T) {
	t.Parallel()

	lost := rushPlay("rb1", 1, 10, 60, 2)
	lost.Fumble = true
	lost.FumbleRecovery = &play.Participant{ID: "lb7"}
	kept := rushPlay("rb1", 2, 8, 58, 0)
	kept.Fumble = true
	clean := rushPlay("rb1", 1, 10, 40, 6)

	tables := []play.Table{
		{Records: []play.Record{lost, kept, clean}, Columns: play.NewColumnSet(play.ColumnSackYards)},
		{Records: []play.Record{lost, kept, clean}, Columns: play.NewColumnSet(play.ColumnFumbleLost)},
	}
	want := []int{1, 0}
	for i, table := range tables {
		row := AssembleRushing(aggregateInput(table, participation.Table{}))[0]
		if row.Fumbles != want[i] {
			t.Fatalf("table %d: unexpected fumbles got=%d want=%d", i, row.Fumbles, want[i])
		}
	}

	row := AssembleRushing(aggregateInput(tables[0], participation.Table{}))[0]
	if row.FumbleRate == nil || !almostEqual(*row.FumbleRate, 1.0/3) {
		t.Fatalf("unexpected fumble rate: %v", row.FumbleRate)
	}
}

func TestAssembleReceiving_TargetsAndRoutes(t *testing.T) {
	t.Parallel()

	deep := passPlay("qb1", "wr1", 1, 10, 75, 40)
	deep.Complete = true
	deep.Signals.AirYards = floatPtr(35)
	deep.Signals.YAC = floatPtr(5)
	deep.Signals.VsMan = intPtr(1)
	drop := passPlay("qb1", "wr1", 2, 10, 75, 0)
	drop.Signals.Drop = intPtr(1)
	drop.Signals.AirYards = floatPtr(8)
	drop.Signals.VsMan = intPtr(0)
	noTarget := passPlay("qb1", "", 3, 10, 75, 0)

	table := play.Table{
		Records: []play.Record{deep, drop, noTarget},
		Columns: play.NewColumnSet(play.ColumnAirYards, play.ColumnYAC, play.ColumnDrop, play.ColumnVsMan),
	}
	parts := participation.NewTable([]participation.Counters{{PlayerID: "wr1", Games: intPtr(2), Routes: intPtr(1), Snaps: intPtr(50)}},
		participation.ColumnGames, participation.ColumnRoutes, participation.ColumnSnaps)

	rows := AssembleReceiving(aggregateInput(table, parts))
	if len(rows) != 1 {
		t.Fatalf("expected one receiver, got %d", len(rows))
	}
	row := rows[0]
	if row.Targets != 2 || row.Receptions != 1 || row.Drops != 1 || row.RecYards != 40 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if row.ADOT == nil || *row.ADOT != 21.5 {
		t.Fatalf("unexpected adot: %v", row.ADOT)
	}
	if row.TgtPerRoute == nil || *row.TgtPerRoute != 2 || row.TargetsPerGame == nil || *row.TargetsPerGame != 1 {
		t.Fatalf("unexpected route rates: %v %v", row.TgtPerRoute, row.TargetsPerGame)
	}
	if row.ManTgtRate == nil || *row.ManTgtRate != 0.5 {
		t.Fatalf("unexpected man target rate: %v", row.ManTgtRate)
	}
	if row.EPAPerTargetDeep == nil || row.EPAPerTargetShort == nil || row.EPAVsMan == nil {
		t.Fatalf("expected deep/short/man splits")
	}
	if row.EPAVsZone != nil || row.SlotRate != nil || row.AirYardsShare != nil || row.TargetShare != nil {
		t.Fatalf("expected unavailable splits to stay undefined")
	}
	if ValidateReceiving(rows)[0] != "receiving: routes < targets" {
		t.Fatalf("expected routes < targets issue")
	}
}

func TestAssembleDefense_UnionsIndependentSignals(t *testing.T) {
	t.Parallel()

	covered := passPlay("qb1", "wr1", 1, 10, 75, 30)
	covered.Complete = true
	covered.Signals.PrimaryDefenderID = "cb1"
	covered.Signals.DefenderID = "s1"
	covered.Signals.TacklePrimary = intPtr(1)

	sack := passPlay("qb1", "", 2, 10, 75, -8)
	sack.Sack = true
	sack.Signals.SackerID = "lb1"
	sack.Signals.PassRusherID = "lb1"
	sack.Signals.Pressure = intPtr(1)
	sack.Signals.DefenderID = "lb1"
	sack.Signals.TacklePrimary = intPtr(1)
	sack.Signals.TFL = intPtr(1)

	run := rushPlay("rb1", 1, 10, 60, 3)
	run.Signals.DefenderID = "lb1"
	run.Signals.TackleAssist = intPtr(1)
	run.Signals.MissedTackle = intPtr(1)

	table := play.Table{
		Records: []play.Record{covered, sack, run},
		Columns: play.NewColumnSet(
			play.ColumnPrimaryDefenderID, play.ColumnSackerID, play.ColumnPassRusherID, play.ColumnPressure,
			play.ColumnDefenderID, play.ColumnTacklePrimary, play.ColumnTackleAssist, play.ColumnMissedTackle, play.ColumnTFL,
		),
	}
	rows := AssembleDefense(aggregateInput(table, participation.Table{}))
	if len(rows) != 3 {
		t.Fatalf("expected cb1, lb1, s1 rows, got %d", len(rows))
	}
	byID := make(map[string]playerstats.DefenseRow, len(rows))
	for _, r := range rows {
		byID[r.PlayerID] = r
	}
	if rows[0].PlayerID != "cb1" || rows[1].PlayerID != "lb1" || rows[2].PlayerID != "s1" {
		t.Fatalf("expected rows sorted by player id")
	}

	cb := byID["cb1"]
	if *cb.Targets != 1 || *cb.ReceptionsAllowed != 1 || *cb.YardsAllowed != 30 || *cb.CompletionPctAllowed != 1 {
		t.Fatalf("unexpected coverage stats: %+v", cb)
	}
	if *cb.ExplosiveAllowedRate != 1 || cb.SoloTackles != nil || cb.Sacks != nil {
		t.Fatalf("unexpected coverage-only fields: %+v", cb)
	}
	if cb.TotalTackles == nil || *cb.TotalTackles != 0 {
		t.Fatalf("expected total tackles to fill missing tackle counts with zero")
	}

	lb := byID["lb1"]
	if *lb.Sacks != 1 || *lb.Pressures != 1 || *lb.SoloTackles != 1 || *lb.Assists != 1 || *lb.TotalTackles != 2 {
		t.Fatalf("unexpected front seven stats: %+v", lb)
	}
	if lb.MissedTackleRate == nil || !almostEqual(*lb.MissedTackleRate, 1.0/3) {
		t.Fatalf("unexpected missed tackle rate: %v", lb.MissedTackleRate)
	}
	if lb.Targets != nil || lb.CompletionPctAllowed != nil {
		t.Fatalf("expected coverage fields undefined for a non-coverage defender")
	}
	if lb.Position == nil || *lb.Position != "LB" {
		t.Fatalf("expected position group from roster")
	}
	if lb.PressureRate != nil || lb.WinRate != nil || lb.DefEPASavedTotal != nil || lb.PasserRatingAllowed != nil {
		t.Fatalf("expected unsourced defense rates to stay undefined")
	}

	s1 := byID["s1"]
	if *s1.SoloTackles != 1 || *s1.TacklesForLoss != 0 {
		t.Fatalf("unexpected tackle counts for s1: %+v", s1)
	}
}

func TestAggregators_EmptyInputKeepsSchema(t *testing.T) {
	t.Parallel()

	in := aggregateInput(play.Table{}, participation.Table{})
	tables := playerstats.SeasonTables{
		Season:    testSeason,
		Passing:   AssemblePassing(in),
		Rushing:   AssembleRushing(in),
		Receiving: AssembleReceiving(in),
		Defense:   AssembleDefense(in),
	}
	want := map[playerstats.Role]int{
		playerstats.RolePassing:   34,
		playerstats.RoleRushing:   31,
		playerstats.RoleReceiving: 43,
		playerstats.RoleDefense:   38,
	}
	for _, table := range tables.Tables() {
		if len(table.Rows) != 0 {
			t.Fatalf("%s: expected no rows, got %d", table.Role, len(table.Rows))
		}
		if len(table.Columns) != want[table.Role] {
			t.Fatalf("%s: unexpected column count %d", table.Role, len(table.Columns))
		}
	}
	if issues := ValidateSeason(tables); len(issues) != 0 {
		t.Fatalf("expected no issues on empty tables, got %v", issues)
	}
}

func TestAggregators_RatiosUndefinedOnlyOnZeroDenominator(t *testing.T) {
	t.Parallel()

	r := passPlay("qb1", "wr1", 1, 10, 75, 5)
	parts := participation.NewTable([]participation.Counters{{PlayerID: "wr1", Games: intPtr(0), Routes: intPtr(0)}},
		participation.ColumnGames, participation.ColumnRoutes)
	rows := AssembleReceiving(aggregateInput(play.Table{Records: []play.Record{r}}, parts))

	row := rows[0]
	if row.TgtPerRoute != nil || row.YardsPerRouteRun != nil || row.TargetsPerGame != nil {
		t.Fatalf("expected zero-denominator ratios to be undefined")
	}
	if row.YACPerRec != nil {
		t.Fatalf("expected yac per reception undefined without yac signal")
	}
	if row.CatchPct == nil || *row.CatchPct != 0 || row.DropRate == nil || *row.DropRate != 0 {
		t.Fatalf("expected zero-numerator ratios to be zero, not undefined")
	}
}
