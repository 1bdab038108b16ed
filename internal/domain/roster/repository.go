package roster

import "context"

type Repository interface {
	ListBySeason(ctx context.Context, season int) ([]Entry, error)
}
