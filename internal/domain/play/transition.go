package play

const (
	PossessionRetained = 1
	PossessionFlipped  = -1

	firstDownDistance = 10
)

// FlipsPossession reports an interception, a fumble recovered by a named
// player, or a failed fourth-down scrimmage play.
func (r Record) FlipsPossession() bool {
	if r.Interception {
		return true
	}
	if r.FumbleRecovery.Known() {
		return true
	}
	if r.Down != nil && *r.Down == 4 && (r.IsPass || r.IsRush) && r.Distance != nil && r.YardsGained < *r.Distance {
		return true
	}
	return false
}

// NextState computes the follow-on game state of a single play. Field
// position stays in the frame of the team that had the ball, including on a
// possession flip, and an offensive fumble recovery (no named recoverer) is a
// normal continuing play.
func NextState(r Record) Transition {
	out := Transition{NextPossession: PossessionRetained}
	if r.FlipsPossession() {
		out.NextPossession = PossessionFlipped
	}
	if r.EndsDrive() {
		return out
	}
	if r.Down == nil || r.Distance == nil || r.YardLine100 == nil {
		return out
	}
	down, distance, yardline := *r.Down, *r.Distance, *r.YardLine100
	if down < 1 || down > 4 {
		return out
	}

	nextDown := down + 1
	if out.NextPossession == PossessionFlipped || down == 4 || r.YardsGained >= distance {
		nextDown = 1
	}

	nextYardline := clamp(yardline-r.YardsGained, 0, 100)
	nextDistance := distance - r.YardsGained
	if nextDown == 1 {
		nextDistance = min(firstDownDistance, nextYardline)
	}

	out.NextDown = &nextDown
	out.NextDistance = &nextDistance
	out.NextYardLine100 = &nextYardline
	return out
}

// ApplyTransitions returns copies of records with Next populated. The input
// slice is left untouched.
func ApplyTransitions(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Next = NextState(r)
		out[i] = r
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
