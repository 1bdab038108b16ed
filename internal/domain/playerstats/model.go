package playerstats

// Role is one of the four per-player output tables.
type Role string

const (
	RolePassing   Role = "passing"
	RoleRushing   Role = "rushing"
	RoleReceiving Role = "receiving"
	RoleDefense   Role = "defense"
)

var AllRoles = []Role{RolePassing, RoleRushing, RoleReceiving, RoleDefense}

// Identity is the roster-joined head of every aggregate row. Fields the
// roster does not know are nil.
type Identity struct {
	Season     int
	PlayerID   string
	PlayerName *string
	TeamID     *string
	TeamName   *string
	Conference *string
	Position   *string
}

func (i Identity) values() []any {
	return []any{i.Season, i.PlayerID, i.PlayerName, i.TeamID, i.TeamName, i.Conference, i.Position}
}

var identityColumns = []string{"season", "player_id", "player_name", "team_id", "team_name", "conference", "position"}

// Row is an aggregate row whose Values align with its table's Columns.
type Row interface {
	Key() string
	Values() []any
}

type PassingRow struct {
	Identity
	Games             *int
	Starts            *int
	Dropbacks         int
	PassAttempts      int
	SacksTaken        int
	PressuresFaced    *int
	Completions       int
	PassYards         int
	PassTD            int
	Interceptions     int
	SacksYardsLost    int
	AirYards          *float64
	YAC               *float64
	CompletionPct     *float64
	YardsPerAtt       *float64
	AdjYardsPerAtt    *float64
	YardsPerDropback  *float64
	TDRate            *float64
	IntRate           *float64
	AirYardsPerAtt    *float64
	YACPerComp        *float64
	PressureRate      *float64
	SackRate          *float64
	EPATotalPass      float64
	EPAPerDropback    *float64
	SuccessRate       *float64
	ExplosivePassRate *float64
}

var PassingColumns = append(append([]string{}, identityColumns...),
	"games", "starts", "dropbacks", "pass_attempts", "sacks_taken", "pressures_faced",
	"completions", "pass_yards", "pass_td", "interceptions", "sacks_yards_lost", "air_yards", "yac",
	"completion_pct", "yards_per_att", "adj_yards_per_att", "yards_per_dropback", "td_rate", "int_rate",
	"air_yards_per_att", "yac_per_comp", "pressure_rate", "sack_rate",
	"epa_total_pass", "epa_per_dropback", "success_rate", "explosive_pass_rate",
)

func (r PassingRow) Key() string { return r.PlayerID }

func (r PassingRow) Values() []any {
	return append(r.Identity.values(),
		r.Games, r.Starts, r.Dropbacks, r.PassAttempts, r.SacksTaken, r.PressuresFaced,
		r.Completions, r.PassYards, r.PassTD, r.Interceptions, r.SacksYardsLost, r.AirYards, r.YAC,
		r.CompletionPct, r.YardsPerAtt, r.AdjYardsPerAtt, r.YardsPerDropback, r.TDRate, r.IntRate,
		r.AirYardsPerAtt, r.YACPerComp, r.PressureRate, r.SackRate,
		r.EPATotalPass, r.EPAPerDropback, r.SuccessRate, r.ExplosivePassRate,
	)
}

type RushingRow struct {
	Identity
	Games                   *int
	Snaps                   *int
	RushAtt                 int
	RushYards               int
	RushTD                  int
	Fumbles                 int
	YardsBeforeContact      *float64
	BrokenTackles           *int
	ForcedMissedTackles     *int
	YardsPerCarry           *float64
	TDRate                  *float64
	FumbleRate              *float64
	EPATotalRush            float64
	EPAPerRush              *float64
	SuccessRate             *float64
	ExplosiveRushRate       *float64
	RPOCarryRate            *float64
	ReadOptionRate          *float64
	YardsOverExpectedPerAtt *float64
	EPARushEarly            *float64
	EPARushShort            *float64
	EPARushRedZone          *float64
	AttLightBoxRate         *float64
	AttHeavyBoxRate         *float64
}

var RushingColumns = append(append([]string{}, identityColumns...),
	"games", "snaps", "rush_att", "rush_yards", "rush_td", "fumbles", "yards_before_contact",
	"broken_tackles", "forced_missed_tackles",
	"yards_per_carry", "td_rate", "fumble_rate",
	"epa_total_rush", "epa_per_rush", "success_rate", "explosive_rush_rate",
	"rpo_carry_rate", "read_option_rate", "yards_over_expected_per_att",
	"epa_rush_early", "epa_rush_short", "epa_rush_red_zone",
	"att_light_box_rate", "att_heavy_box_rate",
)

func (r RushingRow) Key() string { return r.PlayerID }

func (r RushingRow) Values() []any {
	return append(r.Identity.values(),
		r.Games, r.Snaps, r.RushAtt, r.RushYards, r.RushTD, r.Fumbles, r.YardsBeforeContact,
		r.BrokenTackles, r.ForcedMissedTackles,
		r.YardsPerCarry, r.TDRate, r.FumbleRate,
		r.EPATotalRush, r.EPAPerRush, r.SuccessRate, r.ExplosiveRushRate,
		r.RPOCarryRate, r.ReadOptionRate, r.YardsOverExpectedPerAtt,
		r.EPARushEarly, r.EPARushShort, r.EPARushRedZone,
		r.AttLightBoxRate, r.AttHeavyBoxRate,
	)
}

type ReceivingRow struct {
	Identity
	Games              *int
	Snaps              *int
	Routes             *int
	Targets            int
	Receptions         int
	RecYards           int
	RecTD              int
	Drops              int
	Fumbles            int
	AirYards           *float64
	YAC                *float64
	TgtPerRoute        *float64
	ADOT               *float64
	YardsPerRouteRun   *float64
	TargetsPerGame     *float64
	CatchPct           *float64
	DropRate           *float64
	YdsPerTarget       *float64
	TDsPerTarget       *float64
	YACPerRec          *float64
	AirYardsShare      *float64
	TargetShare        *float64
	EPATotalRecv       float64
	EPAPerTarget       *float64
	SuccessRate        *float64
	ExplosiveRecRate   *float64
	SlotRate           *float64
	WideRate           *float64
	InlineTERate       *float64
	ManTgtRate         *float64
	ZoneTgtRate        *float64
	EPAVsMan           *float64
	EPAVsZone          *float64
	SeparationAvgYards *float64
	EPAPerTargetDeep   *float64
	EPAPerTargetShort  *float64
}

var ReceivingColumns = append(append([]string{}, identityColumns...),
	"games", "snaps", "routes", "targets", "receptions", "rec_yards", "rec_td", "drops", "fumbles", "air_yards", "yac",
	"tgt_per_route", "adot", "yards_per_route_run", "targets_per_game", "catch_pct", "drop_rate", "yds_per_target",
	"tds_per_target", "yac_per_rec",
	"air_yards_share", "target_share",
	"epa_total_recv", "epa_per_target", "success_rate", "explosive_rec_rate",
	"slot_rate", "wide_rate", "inline_te_rate", "man_tgt_rate", "zone_tgt_rate", "epa_vs_man", "epa_vs_zone",
	"separation_avg_yards",
	"epa_per_target_deep", "epa_per_target_short",
)

func (r ReceivingRow) Key() string { return r.PlayerID }

func (r ReceivingRow) Values() []any {
	return append(r.Identity.values(),
		r.Games, r.Snaps, r.Routes, r.Targets, r.Receptions, r.RecYards, r.RecTD, r.Drops, r.Fumbles, r.AirYards, r.YAC,
		r.TgtPerRoute, r.ADOT, r.YardsPerRouteRun, r.TargetsPerGame, r.CatchPct, r.DropRate, r.YdsPerTarget,
		r.TDsPerTarget, r.YACPerRec,
		r.AirYardsShare, r.TargetShare,
		r.EPATotalRecv, r.EPAPerTarget, r.SuccessRate, r.ExplosiveRecRate,
		r.SlotRate, r.WideRate, r.InlineTERate, r.ManTgtRate, r.ZoneTgtRate, r.EPAVsMan, r.EPAVsZone,
		r.SeparationAvgYards,
		r.EPAPerTargetDeep, r.EPAPerTargetShort,
	)
}

// DefenseRow carries Position as the roster position group. Every count is
// optional because each comes from an independently optional signal.
type DefenseRow struct {
	Identity
	Games                      *int
	Starts                     *int
	DefSnaps                   *int
	TotalTackles               *int
	SoloTackles                *int
	Assists                    *int
	MissedTackles              *int
	Pressures                  *int
	Sacks                      *int
	Targets                    *int
	ReceptionsAllowed          *int
	YardsAllowed               *int
	TDAllowed                  *int
	Interceptions              *int
	PassBreakups               *int
	Stops                      *int
	TacklesForLoss             *int
	ForcedFumbles              *int
	FumbleRecoveries           *int
	DefensiveTDs               *int
	PressureRate               *float64
	WinRate                    *float64
	CompletionPctAllowed       *float64
	YardsPerTargetAllowed      *float64
	PasserRatingAllowed        *float64
	MissedTackleRate           *float64
	StopRate                   *float64
	DefEPASavedTotal           *float64
	DefEPASavedPerSnap         *float64
	CoverageSuccessRateAllowed *float64
	ExplosiveAllowedRate       *float64
}

var DefenseColumns = []string{
	"season", "player_id", "player_name", "team_id", "team_name", "conference", "position_group",
	"games", "starts", "def_snaps",
	"total_tackles", "solo_tackles", "assists", "missed_tackles",
	"pressures", "sacks",
	"targets", "receptions_allowed", "yards_allowed", "td_allowed", "interceptions", "pass_breakups",
	"stops", "tackles_for_loss", "forced_fumbles", "fumble_recoveries", "defensive_tds",
	"pressure_rate", "win_rate", "completion_pct_allowed", "yards_per_target_allowed", "passer_rating_allowed",
	"missed_tackle_rate", "stop_rate",
	"def_epa_saved_total", "def_epa_saved_per_snap", "coverage_success_rate_allowed", "explosive_allowed_rate",
}

func (r DefenseRow) Key() string { return r.PlayerID }

func (r DefenseRow) Values() []any {
	return append(r.Identity.values(),
		r.Games, r.Starts, r.DefSnaps,
		r.TotalTackles, r.SoloTackles, r.Assists, r.MissedTackles,
		r.Pressures, r.Sacks,
		r.Targets, r.ReceptionsAllowed, r.YardsAllowed, r.TDAllowed, r.Interceptions, r.PassBreakups,
		r.Stops, r.TacklesForLoss, r.ForcedFumbles, r.FumbleRecoveries, r.DefensiveTDs,
		r.PressureRate, r.WinRate, r.CompletionPctAllowed, r.YardsPerTargetAllowed, r.PasserRatingAllowed,
		r.MissedTackleRate, r.StopRate,
		r.DefEPASavedTotal, r.DefEPASavedPerSnap, r.CoverageSuccessRateAllowed, r.ExplosiveAllowedRate,
	)
}

// Table is a role table in its fixed column order.
type Table struct {
	Role    Role
	Season  int
	Columns []string
	Rows    []Row
}

// Record returns row i keyed by column name, with nil pointers unwrapped to nil.
func (t Table) Record(i int) map[string]any {
	values := t.Rows[i].Values()
	out := make(map[string]any, len(t.Columns))
	for idx, col := range t.Columns {
		out[col] = Unwrap(values[idx])
	}
	return out
}

// Unwrap dereferences optional cells; undefined cells become nil.
func Unwrap(v any) any {
	switch x := v.(type) {
	case *int:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

// SeasonTables is the full output of one season build.
type SeasonTables struct {
	Season    int
	PlayCount int
	Passing   []PassingRow
	Rushing   []RushingRow
	Receiving []ReceivingRow
	Defense   []DefenseRow
	Issues    []string
}

// Tables returns the four role tables in a fixed order.
func (s SeasonTables) Tables() []Table {
	return []Table{
		{Role: RolePassing, Season: s.Season, Columns: PassingColumns, Rows: toRows(s.Passing)},
		{Role: RoleRushing, Season: s.Season, Columns: RushingColumns, Rows: toRows(s.Rushing)},
		{Role: RoleReceiving, Season: s.Season, Columns: ReceivingColumns, Rows: toRows(s.Receiving)},
		{Role: RoleDefense, Season: s.Season, Columns: DefenseColumns, Rows: toRows(s.Defense)},
	}
}

func toRows[T Row](items []T) []Row {
	out := make([]Row, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
