package cfbd

import (
	"strconv"
	"strings"
)

// flexID accepts ids the API sends either as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		*f = flexID(strings.TrimSpace(unquoted))
		return nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		*f = flexID(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	*f = flexID(raw)
	return nil
}

type teamItem struct {
	ID         flexID `json:"id"`
	School     string `json:"school"`
	Conference string `json:"conference"`
}

type rosterItem struct {
	ID        flexID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position"`
}

type playStatItem struct {
	GameID      flexID  `json:"gameId"`
	PlayID      flexID  `json:"playId"`
	AthleteID   flexID  `json:"athleteId"`
	AthleteName string  `json:"athleteName"`
	StatType    string  `json:"statType"`
	Stat        float64 `json:"stat"`
}
