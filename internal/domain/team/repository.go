package team

import "context"

type Repository interface {
	Upsert(ctx context.Context, teams []Team) (int, error)
	List(ctx context.Context) ([]Team, error)
}
