package play

import "context"

type Repository interface {
	LoadSeason(ctx context.Context, season int) (Table, error)
}
