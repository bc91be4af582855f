package mapping

import "context"

type Repository interface {
	ListTeams(ctx context.Context) ([]TeamMapping, error)
	ListLeagues(ctx context.Context) ([]LeagueMapping, error)
	// InsertNewTeams appends mappings for newly-seen team ids without touching
	// existing rows; same for InsertNewLeagues.
	InsertNewTeams(ctx context.Context, rows []TeamMapping) (int, error)
	InsertNewLeagues(ctx context.Context, rows []LeagueMapping) (int, error)
	// UpsertTeams and UpsertLeagues apply human-curated CSV edits and are only
	// called from the explicit load commands.
	UpsertTeams(ctx context.Context, rows []TeamMapping) (int, error)
	UpsertLeagues(ctx context.Context, rows []LeagueMapping) (int, error)
}
