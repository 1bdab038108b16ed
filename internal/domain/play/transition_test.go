package play

import (
	"errors"
	"testing"
)

func intp(v int) *int { return &v }

func scrimmage(down, distance, yardline, gained int) Record {
	return Record{
		Season:      2019,
		GameID:      "401110723",
		Down:        intp(down),
		Distance:    intp(distance),
		YardLine100: intp(yardline),
		YardsGained: gained,
	}
}

func assertState(t *testing.T, got Transition, possession, down, distance, yardline int) {
	t.Helper()
	if got.NextPossession != possession {
		t.Fatalf("unexpected next possession: got=%d want=%d", got.NextPossession, possession)
	}
	if !got.Defined() {
		t.Fatalf("expected defined next state, got %+v", got)
	}
	if *got.NextDown != down || *got.NextDistance != distance || *got.NextYardLine100 != yardline {
		t.Fatalf("unexpected next state: got=%d/%d/%d want=%d/%d/%d",
			*got.NextDown, *got.NextDistance, *got.NextYardLine100, down, distance, yardline)
	}
}

func TestNextState_FirstDownCompletion(t *testing.T) {
	r := scrimmage(1, 10, 75, 12)
	r.IsPass = true
	r.Complete = true

	assertState(t, NextState(r), PossessionRetained, 1, 10, 63)
	if r.Points() != 0 {
		t.Fatalf("expected zero points, got %d", r.Points())
	}
}

func TestNextState_TurnoverOnDowns(t *testing.T) {
	r := scrimmage(4, 3, 40, 1)
	r.IsRush = true

	assertState(t, NextState(r), PossessionFlipped, 1, 10, 39)
}

func TestNextState_ProgressionAndGoalToGo(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		down     int
		distance int
		yardline int
	}{
		{name: "short gain advances the down", record: scrimmage(1, 10, 75, 4), down: 2, distance: 6, yardline: 71},
		{name: "loss adds distance", record: scrimmage(2, 6, 71, -3), down: 3, distance: 9, yardline: 74},
		{name: "exact conversion", record: scrimmage(3, 2, 30, 2), down: 1, distance: 10, yardline: 28},
		{name: "goal to go caps distance", record: scrimmage(2, 5, 12, 6), down: 1, distance: 6, yardline: 6},
		{name: "fourth down conversion", record: scrimmage(4, 1, 50, 3), down: 1, distance: 10, yardline: 47},
		{name: "loss past own goal line clamps", record: scrimmage(3, 8, 97, -6), down: 4, distance: 14, yardline: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.record.IsRush = true
			assertState(t, NextState(tc.record), PossessionRetained, tc.down, tc.distance, tc.yardline)
		})
	}
}

func TestNextState_Turnovers(t *testing.T) {
	interception := scrimmage(2, 7, 45, 0)
	interception.IsPass = true
	interception.Interception = true
	assertState(t, NextState(interception), PossessionFlipped, 1, 10, 45)

	lostFumble := scrimmage(1, 10, 60, 5)
	lostFumble.IsRush = true
	lostFumble.Fumble = true
	lostFumble.FumbleRecovery = &Participant{ID: "d-44", Name: "Linebacker"}
	assertState(t, NextState(lostFumble), PossessionFlipped, 1, 10, 55)

	// Offense recovering its own fumble is indistinguishable from a normal play.
	ownRecovery := scrimmage(1, 10, 60, 5)
	ownRecovery.IsRush = true
	ownRecovery.Fumble = true
	assertState(t, NextState(ownRecovery), PossessionRetained, 2, 5, 55)
}

func TestNextState_DriveEndingPlaysHaveNoNextState(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{name: "touchdown", mutate: func(r *Record) { r.Touchdown = true; r.PointsScored = intp(7) }},
		{name: "safety", mutate: func(r *Record) { r.Safety = true; r.PointsScored = intp(-2) }},
		{name: "field goal attempt", mutate: func(r *Record) { r.FGAttempt = true }},
		{name: "punt attempt", mutate: func(r *Record) { r.PuntAttempt = true }},
		{name: "pick six still flips", mutate: func(r *Record) { r.Interception = true; r.Touchdown = true }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := scrimmage(3, 4, 20, 20)
			r.IsPass = true
			tc.mutate(&r)
			got := NextState(r)
			if got.NextDown != nil || got.NextDistance != nil || got.NextYardLine100 != nil {
				t.Fatalf("expected undefined next state, got %+v", got)
			}
			if r.Interception && got.NextPossession != PossessionFlipped {
				t.Fatalf("expected interception to flip possession")
			}
		})
	}
}

func TestNextState_MissingDownIsUndefined(t *testing.T) {
	r := Record{Season: 2019, GameID: "g1", YardLine100: intp(65)}
	got := NextState(r)
	if got.Defined() || got.Mixed() {
		t.Fatalf("expected fully undefined next state, got %+v", got)
	}
	if got.NextPossession != PossessionRetained {
		t.Fatalf("unexpected next possession: %d", got.NextPossession)
	}
}

func TestNextState_InvariantsOverGrid(t *testing.T) {
	for down := 1; down <= 4; down++ {
		for _, distance := range []int{1, 3, 10, 15} {
			for yardline := 1; yardline <= 99; yardline += 7 {
				for _, gained := range []int{-12, -1, 0, 2, 9, 25} {
					r := scrimmage(down, distance, yardline, gained)
					r.IsPass = gained%2 == 0
					r.IsRush = !r.IsPass
					got := NextState(r)
					if got.Mixed() {
						t.Fatalf("mixed next state for %d&%d at %d gain %d", down, distance, yardline, gained)
					}
					if got.NextDown != nil && *got.NextDown == 1 && (*got.NextDistance < 0 || *got.NextDistance > 10) {
						t.Fatalf("first down distance out of range: %d", *got.NextDistance)
					}
					if *got.NextYardLine100 < 0 || *got.NextYardLine100 > 100 {
						t.Fatalf("next yardline out of range: %d", *got.NextYardLine100)
					}
				}
			}
		}
	}
}

func TestApplyTransitions_DoesNotMutateInput(t *testing.T) {
	in := []Record{scrimmage(1, 10, 75, 12)}
	out := ApplyTransitions(in)
	if in[0].Next.NextDown != nil {
		t.Fatalf("input record mutated")
	}
	if !out[0].Next.Defined() {
		t.Fatalf("expected annotated copy")
	}
}

func TestRecordValidate(t *testing.T) {
	valid := scrimmage(1, 10, 75, 3)
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid record: %v", err)
	}

	noSeason := valid
	noSeason.Season = 0
	if err := noSeason.Validate(); !errors.Is(err, ErrMissingSeason) {
		t.Fatalf("expected ErrMissingSeason, got %v", err)
	}

	noGame := valid
	noGame.GameID = " "
	if err := noGame.Validate(); !errors.Is(err, ErrMissingGameID) {
		t.Fatalf("expected ErrMissingGameID, got %v", err)
	}

	mixed := valid
	mixed.Next = Transition{NextDown: intp(1)}
	if err := mixed.Validate(); !errors.Is(err, ErrMixedNextState) {
		t.Fatalf("expected ErrMixedNextState, got %v", err)
	}

	both := valid
	both.IsPass = true
	both.IsRush = true
	if err := both.Validate(); !errors.Is(err, ErrPassAndRush) {
		t.Fatalf("expected ErrPassAndRush, got %v", err)
	}
}
