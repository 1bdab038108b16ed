package play

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSeason   = errors.New("play season is required")
	ErrMissingGameID   = errors.New("play game id is required")
	ErrMixedNextState  = errors.New("next down, distance and yardline must be all defined or all undefined")
	ErrMissingColumn   = errors.New("required play column is missing")
	ErrYardlineOutside = errors.New("yardline outside [0,100]")
	ErrPassAndRush     = errors.New("play cannot be both a pass and a rush")
)

// Participant is a nullable identity/name pair on a play.
type Participant struct {
	ID   string
	Name string
}

// Known reports whether the participant carries any identity.
func (p *Participant) Known() bool {
	return p != nil && (strings.TrimSpace(p.ID) != "" || strings.TrimSpace(p.Name) != "")
}

// PlayerID returns the participant id, empty when unknown.
func (p *Participant) PlayerID() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.ID)
}

// Signals holds optional provider columns. Each field is only meaningful when
// the owning Table reports the matching Column as available.
type Signals struct {
	Scramble            *int
	Drop                *int
	FumbleLost          *int
	AirYards            *float64
	YAC                 *float64
	Pressure            *int
	YardsBeforeContact  *float64
	BrokenTackles       *int
	ForcedMissedTackles *int
	RPO                 *int
	ReadOption          *int
	DefendersInBox      *int
	SlotAligned         *int
	WideAligned         *int
	InlineAligned       *int
	VsMan               *int
	VsZone              *int
	Separation          *float64

	PrimaryDefenderID string
	PassRusherID      string
	SackerID          string
	DefenderID        string

	TacklePrimary      *int
	TackleAssist       *int
	MissedTackle       *int
	TFL                *int
	Stop               *int
	ForcedFumble       *int
	FumbleRecoveryFlag *int
	DefensiveTD        *int
}

// Transition is the follow-on game state written by NextState.
type Transition struct {
	NextPossession  int
	NextDown        *int
	NextDistance    *int
	NextYardLine100 *int
}

// Defined reports whether the transition carries a continuing down-and-distance.
func (t Transition) Defined() bool {
	return t.NextDown != nil && t.NextDistance != nil && t.NextYardLine100 != nil
}

// Mixed reports a transition where only some of the next-state fields are set.
func (t Transition) Mixed() bool {
	set := 0
	for _, v := range []*int{t.NextDown, t.NextDistance, t.NextYardLine100} {
		if v != nil {
			set++
		}
	}
	return set != 0 && set != 3
}

// Record is one canonical play.
type Record struct {
	Season     int
	GameID     string
	PlayNumber int

	Down        *int
	Distance    *int
	YardLine100 *int

	YardsGained  int
	IsPass       bool
	IsRush       bool
	Complete     bool
	Touchdown    bool
	Safety       bool
	Interception bool
	Sack         bool
	Fumble       bool
	FGAttempt    bool
	PuntAttempt  bool
	SackYards    int
	PointsScored *int

	Passer         *Participant
	Rusher         *Participant
	Receiver       *Participant
	FumbleRecovery *Participant

	Signals Signals

	Next Transition
	EPA  float64
}

// EndsDrive reports plays with no continuing down-and-distance for the offense.
func (r Record) EndsDrive() bool {
	return r.Touchdown || r.Safety || r.FGAttempt || r.PuntAttempt
}

// Points returns the points scored on the play, zero when unset.
func (r Record) Points() int {
	if r.PointsScored == nil {
		return 0
	}
	return *r.PointsScored
}

// Validate checks the hard-failure invariants: identity, play kind and
// next-state shape.
func (r Record) Validate() error {
	if r.Season <= 0 {
		return fmt.Errorf("%w: game=%s play=%d", ErrMissingSeason, r.GameID, r.PlayNumber)
	}
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("%w: season=%d play=%d", ErrMissingGameID, r.Season, r.PlayNumber)
	}
	if r.IsPass && r.IsRush {
		return fmt.Errorf("%w: game=%s play=%d", ErrPassAndRush, r.GameID, r.PlayNumber)
	}
	if r.Next.Mixed() {
		return fmt.Errorf("%w: game=%s play=%d", ErrMixedNextState, r.GameID, r.PlayNumber)
	}
	if r.Next.NextYardLine100 != nil && (*r.Next.NextYardLine100 < 0 || *r.Next.NextYardLine100 > 100) {
		return fmt.Errorf("%w: next_yardline_100=%d game=%s play=%d", ErrYardlineOutside, *r.Next.NextYardLine100, r.GameID, r.PlayNumber)
	}
	return nil
}

// Column names an optional signal column of the canonical play schema.
type Column string

const (
	ColumnSackYards           Column = "sack_yards"
	ColumnScramble            Column = "scramble"
	ColumnDrop                Column = "drop"
	ColumnFumbleLost          Column = "fumble_lost"
	ColumnAirYards            Column = "air_yards"
	ColumnYAC                 Column = "yac"
	ColumnPressure            Column = "pressure"
	ColumnYardsBeforeContact  Column = "yards_before_contact"
	ColumnBrokenTackles       Column = "broken_tackles"
	ColumnForcedMissedTackles Column = "forced_missed_tackles"
	ColumnRPO                 Column = "rpo"
	ColumnReadOption          Column = "read_option"
	ColumnDefendersInBox      Column = "defenders_in_box"
	ColumnSlotAligned         Column = "slot_aligned"
	ColumnWideAligned         Column = "wide_aligned"
	ColumnInlineAligned       Column = "inline_aligned"
	ColumnVsMan               Column = "vs_man"
	ColumnVsZone              Column = "vs_zone"
	ColumnSeparation          Column = "separation"
	ColumnPrimaryDefenderID   Column = "primary_defender_id"
	ColumnPassRusherID        Column = "pass_rusher_id"
	ColumnSackerID            Column = "sacker_id"
	ColumnDefenderID          Column = "defender_id"
	ColumnTacklePrimary       Column = "tackle_primary"
	ColumnTackleAssist        Column = "tackle_assist"
	ColumnMissedTackle        Column = "missed_tackle"
	ColumnTFL                 Column = "tfl"
	ColumnStop                Column = "stop"
	ColumnForcedFumble        Column = "forced_fumble"
	ColumnFumbleRecoveryFlag  Column = "fumble_recovery"
	ColumnDefensiveTD         Column = "defensive_td"
)

// OptionalColumns lists every optional signal column in schema order.
var OptionalColumns = []Column{
	ColumnSackYards, ColumnScramble, ColumnDrop, ColumnFumbleLost, ColumnAirYards, ColumnYAC,
	ColumnPressure, ColumnYardsBeforeContact, ColumnBrokenTackles, ColumnForcedMissedTackles,
	ColumnRPO, ColumnReadOption, ColumnDefendersInBox, ColumnSlotAligned, ColumnWideAligned,
	ColumnInlineAligned, ColumnVsMan, ColumnVsZone, ColumnSeparation, ColumnPrimaryDefenderID,
	ColumnPassRusherID, ColumnSackerID, ColumnDefenderID, ColumnTacklePrimary, ColumnTackleAssist,
	ColumnMissedTackle, ColumnTFL, ColumnStop, ColumnForcedFumble, ColumnFumbleRecoveryFlag,
	ColumnDefensiveTD,
}

// ColumnSet records which optional columns the source supplied.
type ColumnSet map[Column]struct{}

func NewColumnSet(columns ...Column) ColumnSet {
	out := make(ColumnSet, len(columns))
	for _, c := range columns {
		out[c] = struct{}{}
	}
	return out
}

func (s ColumnSet) Has(c Column) bool {
	_, ok := s[c]
	return ok
}

// Table is one season's plays plus the optional columns they carry.
type Table struct {
	Records []Record
	Columns ColumnSet
}

// Has reports column availability; a nil column set means none.
func (t Table) Has(c Column) bool {
	if t.Columns == nil {
		return false
	}
	return t.Columns.Has(c)
}

// WithRecords returns a table sharing the column set over new records.
func (t Table) WithRecords(records []Record) Table {
	return Table{Records: records, Columns: t.Columns}
}
