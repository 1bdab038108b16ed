package usecase

import (
	"context"

	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
)

const testSeason = 2019

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// passPlay is a scrimmage pass in game g1. An empty receiver leaves the
// target unset.
func passPlay(passer, receiver string, down, distance, yardline, yards int) play.Record {
	r := play.Record{
		Season:      testSeason,
		GameID:      "g1",
		Down:        intPtr(down),
		Distance:    intPtr(distance),
		YardLine100: intPtr(yardline),
		YardsGained: yards,
		IsPass:      true,
		Passer:      &play.Participant{ID: passer},
	}
	if receiver != "" {
		r.Receiver = &play.Participant{ID: receiver}
	}
	return r
}

func rushPlay(rusher string, down, distance, yardline, yards int) play.Record {
	return play.Record{
		Season:      testSeason,
		GameID:      "g1",
		Down:        intPtr(down),
		Distance:    intPtr(distance),
		YardLine100: intPtr(yardline),
		YardsGained: yards,
		IsRush:      true,
		Rusher:      &play.Participant{ID: rusher},
	}
}

// annotate runs transitions and EPA attribution with the default model.
func annotate(records []play.Record) []play.Record {
	out, err := NewEPAService(nil).Attribute(context.Background(), play.ApplyTransitions(records))
	if err != nil {
		panic(err)
	}
	return out
}
