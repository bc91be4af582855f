package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/avolkov/linesync/internal/app"
	"github.com/avolkov/linesync/internal/config"
	"github.com/avolkov/linesync/internal/observability"
	"github.com/avolkov/linesync/internal/pipeline"
	"github.com/avolkov/linesync/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command := strings.ToLower(strings.TrimSpace(os.Args[1]))
	if err := run(ctx, cfg, logger, command, os.Args[2:]); err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

var commands = map[string]bool{
	"sync-leagues":          true,
	"sync-seasons":          true,
	"sync-fixtures":         true,
	"sync-teams":            true,
	"sync-lineups":          true,
	"sync-previous-matches": true,
	"sync-team-ratings":     true,
	"extend-team-mapping":   true,
	"extend-league-mapping": true,
	"load-team-mapping":     true,
	"load-league-mapping":   true,
	"match-fixtures":        true,
	"sync-odds-timeline":    true,
	"sync-odds-sportmonks":  true,
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, command string, args []string) error {
	if !commands[command] {
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	limit := fs.Int("limit", 0, "cap the number of work units this run touches (0 = no cap)")
	leagueIDs := fs.String("league-id", "", "comma separated league ids (default: LEAGUE_IDS)")
	seasonIDs := fs.String("season-id", "", "comma separated season ids")
	fixtureIDs := fs.String("fixture-id", "", "comma separated fixture ids")
	skipExisting := fs.Bool("skip-existing", false, "skip work units that already have stored data")
	dryRun := fs.Bool("dry-run", false, "execute writes inside a transaction and roll back")
	extend := fs.Bool("extend", false, "sync-fixtures: only fill seasons that have no fixtures yet")
	relaxed := fs.Bool("relaxed", false, "match-fixtures: accept half-mapped fixtures in a wider window")
	windowHours := fs.Int("window-hours", 0, "match-fixtures: override the kickoff window in hours")
	bookmaker := fs.String("bookmaker", "", "sync-odds-timeline: bookmaker key override")
	region := fs.String("region", "", "sync-odds-timeline: regions value override")
	providerLabel := fs.String("provider-label", "", "sync-odds-timeline: provider label for stored rows")
	out := fs.String("out", "", "mapping commands: csv path override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := pipeline.Options{
		Limit:        *limit,
		SkipExisting: *skipExisting,
	}
	var err error
	if opts.LeagueIDs, err = parseIDList(*leagueIDs); err != nil {
		return fmt.Errorf("parse --league-id: %w", err)
	}
	if opts.SeasonIDs, err = parseIDList(*seasonIDs); err != nil {
		return fmt.Errorf("parse --season-id: %w", err)
	}
	if opts.FixtureIDs, err = parseIDList(*fixtureIDs); err != nil {
		return fmt.Errorf("parse --fixture-id: %w", err)
	}
	if len(opts.LeagueIDs) == 0 {
		opts.LeagueIDs = cfg.LeagueIDs
	}

	if *bookmaker != "" {
		cfg.OddsBookmaker = *bookmaker
	}
	if *region != "" {
		cfg.OddsRegion = *region
	}
	if *out != "" {
		// Each mapping command reads exactly one of the two paths.
		cfg.TeamMappingPath = *out
		cfg.LeagueMappingPath = *out
	}

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("shutdown tracing", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("stop profiler", "error", err)
		}
	}()

	a, err := app.New(cfg, logger, *dryRun)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()

	summary, err := runSync(ctx, a, command, opts, syncFlags{
		extend:        *extend,
		relaxed:       *relaxed,
		windowHours:   *windowHours,
		providerLabel: *providerLabel,
	})
	if err != nil {
		return err
	}

	logger.Info("sync finished",
		"command", command,
		"processed", summary.Processed,
		"changed", summary.Changed,
		"deleted", summary.Deleted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"dry_run", a.Engine.DryRun(),
	)
	return nil
}

type syncFlags struct {
	extend        bool
	relaxed       bool
	windowHours   int
	providerLabel string
}

func runSync(ctx context.Context, a *app.App, command string, opts pipeline.Options, flags syncFlags) (pipeline.Summary, error) {
	switch command {
	case "sync-leagues":
		return a.LeagueSyncer().Run(ctx, opts)
	case "sync-seasons":
		return a.SeasonSyncer().Run(ctx, opts)
	case "sync-fixtures":
		syncer := a.FixtureSyncer()
		if flags.extend {
			syncer = syncer.ExtendOnly()
		}
		return syncer.Run(ctx, opts)
	case "sync-teams":
		return a.TeamSyncer().Run(ctx, opts)
	case "sync-lineups":
		return a.LineupSyncer().Run(ctx, opts)
	case "sync-previous-matches":
		return a.PrevMatchSyncer().Run(ctx, opts)
	case "sync-team-ratings":
		return a.TeamRatingSyncer().Run(ctx, opts)
	case "extend-team-mapping":
		return a.MappingExtender().ExtendTeams(ctx)
	case "extend-league-mapping":
		return a.MappingExtender().ExtendLeagues(ctx)
	case "load-team-mapping":
		return a.MappingLoader().LoadTeams(ctx)
	case "load-league-mapping":
		return a.MappingLoader().LoadLeagues(ctx)
	case "match-fixtures":
		matcher := a.FixtureMatcher()
		if flags.relaxed {
			matcher = matcher.Relaxed()
		}
		if flags.windowHours > 0 {
			matcher = matcher.WithWindow(time.Duration(flags.windowHours) * time.Hour)
		}
		return matcher.Run(ctx, opts)
	case "sync-odds-timeline":
		return a.OddsTimelineSyncer().WithProviderLabel(flags.providerLabel).Run(ctx, opts)
	case "sync-odds-sportmonks":
		return a.SportMonksOddsSyncer().Run(ctx, opts)
	default:
		return pipeline.Summary{}, fmt.Errorf("unknown command %q", command)
	}
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func printUsage() {
	name := os.Args[0]
	fmt.Fprintf(os.Stderr, "usage: %s <command> [flags]\n\n", name)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  sync-leagues            fetch configured leagues and reconcile the leagues table")
	fmt.Fprintln(os.Stderr, "  sync-seasons            fetch seasons for configured leagues")
	fmt.Fprintln(os.Stderr, "  sync-fixtures           fetch season schedules (--extend fills empty seasons only)")
	fmt.Fprintln(os.Stderr, "  sync-teams              collect teams from season schedules")
	fmt.Fprintln(os.Stderr, "  sync-lineups            fetch lineups with ratings for played fixtures")
	fmt.Fprintln(os.Stderr, "  sync-previous-matches   derive each team's recent fixture chain")
	fmt.Fprintln(os.Stderr, "  sync-team-ratings       aggregate lineup ratings per fixture and team")
	fmt.Fprintln(os.Stderr, "  extend-team-mapping     append new teams to the curated team name csv")
	fmt.Fprintln(os.Stderr, "  extend-league-mapping   append new leagues to the curated league csv")
	fmt.Fprintln(os.Stderr, "  load-team-mapping       load the curated team name csv into the database")
	fmt.Fprintln(os.Stderr, "  load-league-mapping     load the curated league csv into the database")
	fmt.Fprintln(os.Stderr, "  match-fixtures          pair fixtures with odds provider events (--relaxed widens)")
	fmt.Fprintln(os.Stderr, "  sync-odds-timeline      capture historical 1x2 odds along each fixture's timeline")
	fmt.Fprintln(os.Stderr, "  sync-odds-sportmonks    capture pre-match 1x2 odds from the fixture provider")
	fmt.Fprintln(os.Stderr, "\nshared flags: --limit --league-id --season-id --fixture-id --skip-existing --dry-run")
}
