package usecase

import "github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"

// Validation findings are advisory. Each check reports at most once per table.

func ValidatePassing(rows []playerstats.PassingRow) []string {
	issues := []string{}
	if anyRow(rows, func(r playerstats.PassingRow) bool { return r.Completions > r.PassAttempts }) {
		issues = append(issues, "passing: completions > attempts")
	}
	if anyRow(rows, func(r playerstats.PassingRow) bool {
		return r.PressuresFaced != nil && *r.PressuresFaced < r.SacksTaken
	}) {
		issues = append(issues, "passing: pressures_faced < sacks_taken")
	}
	return issues
}

// ValidateRushing has no checks.
func ValidateRushing([]playerstats.RushingRow) []string {
	return []string{}
}

func ValidateReceiving(rows []playerstats.ReceivingRow) []string {
	issues := []string{}
	if anyRow(rows, func(r playerstats.ReceivingRow) bool { return r.Routes != nil && *r.Routes < r.Targets }) {
		issues = append(issues, "receiving: routes < targets")
	}
	return issues
}

func ValidateDefense(rows []playerstats.DefenseRow) []string {
	issues := []string{}
	if anyRow(rows, func(r playerstats.DefenseRow) bool {
		return r.ReceptionsAllowed != nil && r.Targets != nil && *r.ReceptionsAllowed > *r.Targets
	}) {
		issues = append(issues, "defense: receptions_allowed > targets")
	}
	return issues
}

// ValidateSeason runs every table check in role order.
func ValidateSeason(tables playerstats.SeasonTables) []string {
	issues := []string{}
	issues = append(issues, ValidatePassing(tables.Passing)...)
	issues = append(issues, ValidateRushing(tables.Rushing)...)
	issues = append(issues, ValidateReceiving(tables.Receiving)...)
	issues = append(issues, ValidateDefense(tables.Defense)...)
	return issues
}

func anyRow[T any](rows []T, pred func(T) bool) bool {
	for _, r := range rows {
		if pred(r) {
			return true
		}
	}
	return false
}
