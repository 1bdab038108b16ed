package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/cfb-analytics/internal/domain/epmodel"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"go.opentelemetry.io/otel/attribute"
)

// EPAService attributes expected points added to transition-annotated plays.
type EPAService struct {
	model epmodel.Model
}

func NewEPAService(model epmodel.Model) *EPAService {
	if model == nil {
		model = epmodel.DefaultLinearStub()
	}
	return &EPAService{model: model}
}

// Attribute returns copies of records with EPA set. Records must already carry
// their next state; structurally invalid records fail the whole batch.
func (s *EPAService) Attribute(ctx context.Context, records []play.Record) ([]play.Record, error) {
	_, span := startUsecaseSpan(ctx, "usecase.EPAService.Attribute", attribute.Int("cfb.plays", len(records)))
	defer span.End()

	before := make([]epmodel.State, 0, len(records))
	after := make([]epmodel.State, 0, len(records))
	afterIndex := make([]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, classifyPlayError(err)
		}
		before = append(before, epmodel.FromInts(r.Down, r.Distance, r.YardLine100))
		afterIndex[i] = -1
		if r.Next.Defined() {
			afterIndex[i] = len(after)
			after = append(after, epmodel.FromInts(r.Next.NextDown, r.Next.NextDistance, r.Next.NextYardLine100))
		}
	}

	epBefore := s.model.ExpectedPoints(before)
	epAfter := s.model.ExpectedPoints(after)
	if len(epBefore) != len(before) || len(epAfter) != len(after) {
		return nil, fmt.Errorf("%w: expected points model returned a short batch", ErrDependencyUnavailable)
	}

	out := make([]play.Record, len(records))
	for i, r := range records {
		next := 0.0
		if idx := afterIndex[i]; idx >= 0 {
			next = epAfter[idx]
		}
		r.EPA = next - epBefore[i] - float64(r.Points())
		out[i] = r
	}
	return out, nil
}

func classifyPlayError(err error) error {
	switch {
	case errors.Is(err, play.ErrMissingSeason), errors.Is(err, play.ErrMissingGameID):
		return fmt.Errorf("%w: %w", ErrMissingIdentity, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidPlayState, err)
	}
}
