package epmodel

import (
	"errors"
	"fmt"
	"math"
)

var ErrNonMonotone = errors.New("expected points coefficients are not monotone")

const (
	DefaultDown        = 1.0
	DefaultDistance    = 10.0
	DefaultYardLine100 = 50.0
)

// State is a pre- or post-play game state. Nil fields are substituted with
// neutral defaults by every Model.
type State struct {
	Down        *float64
	Distance    *float64
	YardLine100 *float64
}

// FromInts builds a State from optional integer fields.
func FromInts(down, distance, yardline *int) State {
	return State{Down: widen(down), Distance: widen(distance), YardLine100: widen(yardline)}
}

// Model estimates expected points for a batch of states. Implementations must
// return exactly one value per state and never fail on missing or
// out-of-range input. Expected points must not increase with down or distance
// and must not decrease as yardline_100 approaches zero.
type Model interface {
	ExpectedPoints(states []State) []float64
}

// Evaluate runs a single state through m.
func Evaluate(m Model, s State) float64 {
	return m.ExpectedPoints([]State{s})[0]
}

// Normalize applies the default substitution and clamping shared by models:
// down to [1,4], distance to [0,inf), yardline to [0,100].
func Normalize(s State) (down, distance, yardline float64) {
	down = orDefault(s.Down, DefaultDown)
	distance = orDefault(s.Distance, DefaultDistance)
	yardline = orDefault(s.YardLine100, DefaultYardLine100)

	down = math.Min(math.Max(down, 1), 4)
	distance = math.Max(distance, 0)
	yardline = math.Min(math.Max(yardline, 0), 100)
	return down, distance, yardline
}

// LinearStub is the reference closed-form model:
// B0 + B1*down + B2*log(1+distance) + B3*(100-yardline)/100.
type LinearStub struct {
	B0 float64
	B1 float64
	B2 float64
	B3 float64
}

func DefaultLinearStub() LinearStub {
	return LinearStub{B0: -0.6, B1: -0.7, B2: -0.9, B3: 7.0}
}

// Validate rejects coefficient signs that would break monotonicity.
func (m LinearStub) Validate() error {
	if m.B1 > 0 {
		return fmt.Errorf("%w: down coefficient must be <= 0, got %v", ErrNonMonotone, m.B1)
	}
	if m.B2 > 0 {
		return fmt.Errorf("%w: distance coefficient must be <= 0, got %v", ErrNonMonotone, m.B2)
	}
	if m.B3 < 0 {
		return fmt.Errorf("%w: field position coefficient must be >= 0, got %v", ErrNonMonotone, m.B3)
	}
	return nil
}

func (m LinearStub) ExpectedPoints(states []State) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		down, distance, yardline := Normalize(s)
		out[i] = m.B0 + m.B1*down + m.B2*math.Log1p(distance) + m.B3*((100-yardline)/100)
	}
	return out
}

func widen(v *int) *float64 {
	if v == nil {
		return nil
	}
	out := float64(*v)
	return &out
}

func orDefault(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return fallback
	}
	return *v
}
