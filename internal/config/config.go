package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/linesync/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the sync commands.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	DBURL                   string
	DBDisablePreparedBinary bool

	SportMonksBaseURL               string
	SportMonksToken                 string
	SportMonksTimeout               time.Duration
	SportMonksMaxRetries            int
	SportMonksCircuitEnabled        bool
	SportMonksCircuitFailureCount   int
	SportMonksCircuitOpenTimeout    time.Duration
	SportMonksCircuitHalfOpenMaxReq int
	SportMonksBookmakerID           int64

	OddsAPIBaseURL     string
	OddsAPIKey         string
	OddsAPITimeout     time.Duration
	OddsAPIMaxAttempts int
	OddsAPIBaseSleep   time.Duration
	OddsAPIMaxSleep    time.Duration
	OddsBookmaker      string
	OddsRegion         string

	LeagueIDs   []int64
	SeasonNames []string

	TeamMappingPath   string
	LeagueMappingPath string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY: %w", err)
	}

	sportMonksToken := strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", ""))
	if sportMonksToken == "" {
		return Config{}, fmt.Errorf("SPORTMONKS_TOKEN is required")
	}
	sportMonksTimeout, err := time.ParseDuration(getEnv("SPORTMONKS_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_TIMEOUT: %w", err)
	}
	if sportMonksTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_TIMEOUT must be > 0")
	}
	sportMonksMaxRetries, err := getEnvAsInt("SPORTMONKS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_MAX_RETRIES: %w", err)
	}
	if sportMonksMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_MAX_RETRIES must be >= 0")
	}
	sportMonksCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTMONKS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_ENABLED: %w", err)
	}
	sportMonksCircuitFailureCount, err := getEnvAsInt("SPORTMONKS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	sportMonksCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	sportMonksCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	sportMonksBookmakerID, err := getEnvAsInt64("SPORTMONKS_BOOKMAKER_ID", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_BOOKMAKER_ID: %w", err)
	}

	oddsAPIKey := strings.TrimSpace(getEnv("ODDSAPI_KEY", ""))
	if oddsAPIKey == "" {
		return Config{}, fmt.Errorf("ODDSAPI_KEY is required")
	}
	oddsAPITimeout, err := time.ParseDuration(getEnv("ODDSAPI_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSAPI_TIMEOUT: %w", err)
	}
	if oddsAPITimeout <= 0 {
		return Config{}, fmt.Errorf("ODDSAPI_TIMEOUT must be > 0")
	}
	oddsAPIMaxAttempts, err := getEnvAsInt("ODDSAPI_MAX_ATTEMPTS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSAPI_MAX_ATTEMPTS: %w", err)
	}
	if oddsAPIMaxAttempts < 1 {
		return Config{}, fmt.Errorf("ODDSAPI_MAX_ATTEMPTS must be >= 1")
	}
	oddsAPIBaseSleep, err := time.ParseDuration(getEnv("ODDSAPI_BASE_SLEEP", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSAPI_BASE_SLEEP: %w", err)
	}
	oddsAPIMaxSleep, err := time.ParseDuration(getEnv("ODDSAPI_MAX_SLEEP", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSAPI_MAX_SLEEP: %w", err)
	}

	leagueIDs, err := splitInt64CSV(getEnv("LEAGUE_IDS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_IDS: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	serviceName := getEnv("SERVICE_NAME", "linesync")

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		SportMonksBaseURL:               getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football"),
		SportMonksToken:                 sportMonksToken,
		SportMonksTimeout:               sportMonksTimeout,
		SportMonksMaxRetries:            sportMonksMaxRetries,
		SportMonksCircuitEnabled:        sportMonksCircuitEnabled,
		SportMonksCircuitFailureCount:   sportMonksCircuitFailureCount,
		SportMonksCircuitOpenTimeout:    sportMonksCircuitOpenTimeout,
		SportMonksCircuitHalfOpenMaxReq: sportMonksCircuitHalfOpenMaxReq,
		SportMonksBookmakerID:           sportMonksBookmakerID,

		OddsAPIBaseURL:     getEnv("ODDSAPI_BASE_URL", "https://api.the-odds-api.com"),
		OddsAPIKey:         oddsAPIKey,
		OddsAPITimeout:     oddsAPITimeout,
		OddsAPIMaxAttempts: oddsAPIMaxAttempts,
		OddsAPIBaseSleep:   oddsAPIBaseSleep,
		OddsAPIMaxSleep:    oddsAPIMaxSleep,
		OddsBookmaker:      getEnv("ODDS_BOOKMAKER", "betfair"),
		OddsRegion:         getEnv("ODDS_REGION", "eu"),

		LeagueIDs:   leagueIDs,
		SeasonNames: splitCSV(getEnv("SEASON_NAMES", "")),

		TeamMappingPath:   getEnv("TEAM_MAPPING_PATH", "data/team_name_matching.csv"),
		LeagueMappingPath: getEnv("LEAGUE_MAPPING_PATH", "data/league_mapping.csv"),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func splitInt64CSV(v string) ([]int64, error) {
	items := splitCSV(v)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", item)
		}
		out = append(out, id)
	}

	return out, nil
}
