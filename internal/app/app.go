package app

import (
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/avolkov/linesync/external/oddsapi"
	"github.com/avolkov/linesync/external/sportmonks"
	"github.com/avolkov/linesync/internal/config"
	"github.com/avolkov/linesync/internal/infrastructure/repository/postgres"
	"github.com/avolkov/linesync/internal/pipeline"
	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

// App wires configuration, storage, provider clients, and the sync engine
// into ready-to-run pipeline components.
type App struct {
	Config config.Config
	Logger *logging.Logger
	DB     *sqlx.DB
	Engine *syncengine.Engine

	SportMonks *sportmonks.Client
	OddsAPI    *oddsapi.Client

	Leagues     *postgres.LeagueRepository
	Seasons     *postgres.SeasonRepository
	Teams       *postgres.TeamRepository
	Fixtures    *postgres.FixtureRepository
	Lineups     *postgres.LineupRepository
	PrevMatches *postgres.PrevMatchRepository
	TeamRatings *postgres.TeamRatingRepository
	Matches     *postgres.FixtureMatchRepository
	Odds        *postgres.OddsRepository
	Mappings    *postgres.MappingRepository
}

// New connects to the database and builds every dependency the sync
// commands need. Callers must Close the app when done.
func New(cfg config.Config, logger *logging.Logger, dryRun bool) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := connectDB(cfg)
	if err != nil {
		return nil, crerr.Wrap(err, "connect database")
	}

	engine := syncengine.New(db,
		syncengine.WithDryRun(dryRun),
		syncengine.WithLogger(logger),
	)

	smClient := sportmonks.NewClient(sportmonks.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.SportMonksTimeout},
		BaseURL:    cfg.SportMonksBaseURL,
		Token:      cfg.SportMonksToken,
		MaxRetries: cfg.SportMonksMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportMonksCircuitEnabled,
			FailureThreshold: cfg.SportMonksCircuitFailureCount,
			OpenTimeout:      cfg.SportMonksCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportMonksCircuitHalfOpenMaxReq,
		},
	})

	oaClient := oddsapi.NewClient(oddsapi.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.OddsAPITimeout},
		BaseURL:    cfg.OddsAPIBaseURL,
		APIKey:     cfg.OddsAPIKey,
		Retry: resilience.RetrierConfig{
			MaxAttempts: cfg.OddsAPIMaxAttempts,
			BaseSleep:   cfg.OddsAPIBaseSleep,
			MaxSleep:    cfg.OddsAPIMaxSleep,
		},
		Logger: logger,
	})

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Engine: engine,

		SportMonks: smClient,
		OddsAPI:    oaClient,

		Leagues:     postgres.NewLeagueRepository(db, engine),
		Seasons:     postgres.NewSeasonRepository(db, engine),
		Teams:       postgres.NewTeamRepository(db, engine),
		Fixtures:    postgres.NewFixtureRepository(db, engine),
		Lineups:     postgres.NewLineupRepository(db, engine),
		PrevMatches: postgres.NewPrevMatchRepository(db, engine),
		TeamRatings: postgres.NewTeamRatingRepository(db, engine),
		Matches:     postgres.NewFixtureMatchRepository(db, engine),
		Odds:        postgres.NewOddsRepository(db, engine),
		Mappings:    postgres.NewMappingRepository(db, engine),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	return otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
}

// LeagueSyncer and friends return pipeline components bound to this app's
// clients and repositories.
func (a *App) LeagueSyncer() *pipeline.LeagueSyncer {
	return pipeline.NewLeagueSyncer(a.SportMonks, a.Leagues, a.Logger)
}

func (a *App) SeasonSyncer() *pipeline.SeasonSyncer {
	return pipeline.NewSeasonSyncer(a.SportMonks, a.Seasons, a.Config.SeasonNames, a.Logger)
}

func (a *App) FixtureSyncer() *pipeline.FixtureSyncer {
	return pipeline.NewFixtureSyncer(a.SportMonks, a.Seasons, a.Fixtures, a.Logger)
}

func (a *App) TeamSyncer() *pipeline.TeamSyncer {
	return pipeline.NewTeamSyncer(a.SportMonks, a.Seasons, a.Teams, a.Logger)
}

func (a *App) LineupSyncer() *pipeline.LineupSyncer {
	return pipeline.NewLineupSyncer(a.SportMonks, a.Fixtures, a.Lineups, a.Logger)
}

func (a *App) PrevMatchSyncer() *pipeline.PrevMatchSyncer {
	return pipeline.NewPrevMatchSyncer(a.Fixtures, a.PrevMatches, a.Logger)
}

func (a *App) TeamRatingSyncer() *pipeline.TeamRatingSyncer {
	return pipeline.NewTeamRatingSyncer(a.TeamRatings, a.Logger)
}

func (a *App) MappingExtender() *pipeline.MappingExtender {
	return pipeline.NewMappingExtender(a.Teams, a.Leagues, a.Mappings,
		a.Config.TeamMappingPath, a.Config.LeagueMappingPath, a.Logger)
}

func (a *App) MappingLoader() *pipeline.MappingLoader {
	return pipeline.NewMappingLoader(a.Mappings,
		a.Config.TeamMappingPath, a.Config.LeagueMappingPath, a.Logger)
}

func (a *App) FixtureMatcher() *pipeline.FixtureMatcher {
	source := pipeline.NewCachedEventSource(pipeline.NewEventSource(a.OddsAPI))
	return pipeline.NewFixtureMatcher(a.Matches, source, a.Logger)
}

func (a *App) OddsTimelineSyncer() *pipeline.OddsTimelineSyncer {
	return pipeline.NewOddsTimelineSyncer(a.OddsAPI, a.Matches, a.PrevMatches, a.Odds,
		a.Config.OddsRegion, a.Config.OddsBookmaker, a.Logger)
}

func (a *App) SportMonksOddsSyncer() *pipeline.SportMonksOddsSyncer {
	return pipeline.NewSportMonksOddsSyncer(a.SportMonks, a.Fixtures, a.Odds,
		a.Config.SportMonksBookmakerID, a.Logger)
}
