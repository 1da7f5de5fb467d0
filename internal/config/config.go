package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

// Config stores runtime configuration for the api server and the ingest CLI.
type Config struct {
	AppEnv                           string
	ServiceName                      string
	ServiceVersion                   string
	HTTPAddr                         string
	DBURL                            string
	DBDisablePreparedBinary          bool
	RedisURL                         string
	CacheEnabled                     bool
	CacheTTL                         time.Duration
	CORSAllowedOrigins               []string
	ReadTimeout                      time.Duration
	WriteTimeout                     time.Duration
	PprofEnabled                     bool
	PprofAddr                        string
	UptraceEnabled                   bool
	UptraceDSN                       string
	UptraceLogsEnabled               bool
	PyroscopeEnabled                 bool
	PyroscopeServerAddress           string
	PyroscopeAppName                 string
	PyroscopeAuthToken               string
	PyroscopeBasicAuthUser           string
	PyroscopeBasicAuthPassword       string
	PyroscopeUploadRate              time.Duration
	ProviderName                     string
	APIFootballBaseURL               string
	APIFootballHost                  string
	APIFootballKey                   string
	APIFootballTimeout               time.Duration
	APIFootballMaxRequests           int
	APIFootballCircuitEnabled        bool
	APIFootballCircuitFailureCount   int
	APIFootballCircuitOpenTimeout    time.Duration
	APIFootballCircuitHalfOpenMaxReq int
	ResultsLookback                  time.Duration
	GoalStatsBatch                   int
	ExecutorPoolSize                 int
	LogoDir                          string
	LogoPathPrefix                   string
	LogoTimeout                      time.Duration
	InternalJobToken                 string
	QStashEnabled                    bool
	QStashBaseURL                    string
	QStashToken                      string
	QStashTargetBaseURL              string
	QStashRetries                    int
	QStashTimeout                    time.Duration
	QStashCircuitEnabled             bool
	QStashCircuitFailureCount        int
	QStashCircuitOpenTimeout         time.Duration
	QStashCircuitHalfOpenMaxReq      int
	JobDedupBucket                   time.Duration
	LogLevel                         logging.Level
}

type circuitSettings struct {
	Enabled        bool
	FailureCount   int
	OpenTimeout    time.Duration
	HalfOpenMaxReq int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}
	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
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
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	providerName := strings.ToLower(strings.TrimSpace(getEnv("PROVIDER_NAME", "apifootball")))
	apiFootballHost := strings.TrimSpace(getEnv("APIFOOTBALL_HOST", "v3.football.api-sports.io"))
	apiFootballKey := strings.TrimSpace(getEnv("APIFOOTBALL_KEY", ""))
	apiFootballTimeout, err := getEnvAsPositiveDuration("APIFOOTBALL_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	apiFootballMaxRequests, err := getEnvAsInt("APIFOOTBALL_MAX_REQUESTS", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_MAX_REQUESTS: %w", err)
	}
	if apiFootballMaxRequests < 1 {
		return Config{}, fmt.Errorf("APIFOOTBALL_MAX_REQUESTS must be >= 1")
	}
	apiFootballCircuit, err := loadCircuit("APIFOOTBALL")
	if err != nil {
		return Config{}, err
	}
	if providerName == "apifootball" && apiFootballKey == "" && appEnv != EnvDev {
		return Config{}, fmt.Errorf("APIFOOTBALL_KEY is required when PROVIDER_NAME=apifootball")
	}

	resultsLookback, err := getEnvAsPositiveDuration("RESULTS_LOOKBACK", "72h")
	if err != nil {
		return Config{}, err
	}
	goalStatsBatch, err := getEnvAsInt("GOAL_STATS_BATCH", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse GOAL_STATS_BATCH: %w", err)
	}
	if goalStatsBatch < 1 {
		return Config{}, fmt.Errorf("GOAL_STATS_BATCH must be >= 1")
	}
	executorPoolSize, err := getEnvAsInt("EXECUTOR_POOL_SIZE", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse EXECUTOR_POOL_SIZE: %w", err)
	}
	if executorPoolSize < 0 {
		return Config{}, fmt.Errorf("EXECUTOR_POOL_SIZE must be >= 0")
	}

	logoTimeout, err := getEnvAsPositiveDuration("LOGO_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashTimeout, err := getEnvAsPositiveDuration("QSTASH_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	qstashCircuit, err := loadCircuit("QSTASH")
	if err != nil {
		return Config{}, err
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}
	jobDedupBucket, err := getEnvAsPositiveDuration("JOB_DEDUP_BUCKET", "15m")
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsPositiveDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	// Inline job runs wait on the provider, so the write timeout is generous.
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "120s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                           appEnv,
		ServiceName:                      getEnv("APP_SERVICE_NAME", "football-stats-api"),
		ServiceVersion:                   getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                         getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                            strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:          dbDisablePreparedBinary,
		RedisURL:                         strings.TrimSpace(getEnv("REDIS_URL", "")),
		CacheEnabled:                     cacheEnabled,
		CacheTTL:                         cacheTTL,
		CORSAllowedOrigins:               splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                      readTimeout,
		WriteTimeout:                     writeTimeout,
		PprofEnabled:                     pprofEnabled,
		PprofAddr:                        pprofAddr,
		UptraceEnabled:                   uptraceEnabled,
		UptraceDSN:                       uptraceDSN,
		UptraceLogsEnabled:               uptraceLogsEnabled,
		PyroscopeEnabled:                 pyroscopeEnabled,
		PyroscopeServerAddress:           pyroscopeServerAddress,
		PyroscopeAuthToken:               strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:           strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:              pyroscopeUploadRate,
		ProviderName:                     providerName,
		APIFootballBaseURL:               strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "")),
		APIFootballHost:                  apiFootballHost,
		APIFootballKey:                   apiFootballKey,
		APIFootballTimeout:               apiFootballTimeout,
		APIFootballMaxRequests:           apiFootballMaxRequests,
		APIFootballCircuitEnabled:        apiFootballCircuit.Enabled,
		APIFootballCircuitFailureCount:   apiFootballCircuit.FailureCount,
		APIFootballCircuitOpenTimeout:    apiFootballCircuit.OpenTimeout,
		APIFootballCircuitHalfOpenMaxReq: apiFootballCircuit.HalfOpenMaxReq,
		ResultsLookback:                  resultsLookback,
		GoalStatsBatch:                   goalStatsBatch,
		ExecutorPoolSize:                 executorPoolSize,
		LogoDir:                          strings.TrimSpace(getEnv("LOGO_DIR", "media/teams/logos")),
		LogoPathPrefix:                   strings.TrimSpace(getEnv("LOGO_PATH_PREFIX", "teams/logos")),
		LogoTimeout:                      logoTimeout,
		InternalJobToken:                 internalJobToken,
		QStashEnabled:                    qstashEnabled,
		QStashBaseURL:                    qstashBaseURL,
		QStashToken:                      qstashToken,
		QStashTargetBaseURL:              qstashTargetBaseURL,
		QStashRetries:                    qstashRetries,
		QStashTimeout:                    qstashTimeout,
		QStashCircuitEnabled:             qstashCircuit.Enabled,
		QStashCircuitFailureCount:        qstashCircuit.FailureCount,
		QStashCircuitOpenTimeout:         qstashCircuit.OpenTimeout,
		QStashCircuitHalfOpenMaxReq:      qstashCircuit.HalfOpenMaxReq,
		JobDedupBucket:                   jobDedupBucket,
		LogLevel:                         logLevel,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.LogoDir == "" {
		return Config{}, fmt.Errorf("LOGO_DIR cannot be empty")
	}

	return cfg, nil
}

func loadCircuit(prefix string) (circuitSettings, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureCount < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return circuitSettings{}, err
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxReq < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return circuitSettings{
		Enabled:        enabled,
		FailureCount:   failureCount,
		OpenTimeout:    openTimeout,
		HalfOpenMaxReq: halfOpenMaxReq,
	}, nil
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

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
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

// ParseIDList parses "1,2,3" into tournament ids.
func ParseIDList(raw string) ([]int64, error) {
	items := splitCSV(raw)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %d", value)
		}
		out = append(out, value)
	}
	return out, nil
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

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
