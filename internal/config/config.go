package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	StoragePath       string
	ReferenceCacheTTL time.Duration
	LoaderWorkerCount int

	OpenDotaBaseURL               string
	OpenDotaTimeout               time.Duration
	OpenDotaMaxRetries            int
	OpenDotaCircuitEnabled        bool
	OpenDotaCircuitFailureCount   int
	OpenDotaCircuitOpenTimeout    time.Duration
	OpenDotaCircuitHalfOpenMaxReq int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	referenceCacheTTL, err := time.ParseDuration(getEnv("REFERENCE_CACHE_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFERENCE_CACHE_TTL: %w", err)
	}
	if referenceCacheTTL <= 0 {
		return Config{}, fmt.Errorf("REFERENCE_CACHE_TTL must be > 0")
	}

	loaderWorkerCount, err := getEnvAsInt("LOADER_WORKER_COUNT", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOADER_WORKER_COUNT: %w", err)
	}
	if loaderWorkerCount < 1 {
		return Config{}, fmt.Errorf("LOADER_WORKER_COUNT must be >= 1")
	}

	openDotaTimeout, err := time.ParseDuration(getEnv("OPENDOTA_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENDOTA_TIMEOUT: %w", err)
	}
	if openDotaTimeout <= 0 {
		return Config{}, fmt.Errorf("OPENDOTA_TIMEOUT must be > 0")
	}
	openDotaMaxRetries, err := getEnvAsInt("OPENDOTA_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENDOTA_MAX_RETRIES: %w", err)
	}
	if openDotaMaxRetries < 0 {
		return Config{}, fmt.Errorf("OPENDOTA_MAX_RETRIES must be >= 0")
	}
	openDotaCircuitEnabled, err := strconv.ParseBool(getEnv("OPENDOTA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENDOTA_CIRCUIT_ENABLED: %w", err)
	}
	openDotaCircuitFailureCount, err := getEnvAsInt("OPENDOTA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENDOTA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if openDotaCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("OPENDOTA_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	openDotaCircuitOpenTimeout, err := time.ParseDuration(getEnv("OPENDOTA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENDOTA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openDotaCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("OPENDOTA_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	openDotaCircuitHalfOpenMaxReq, err := getEnvAsInt("OPENDOTA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENDOTA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if openDotaCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("OPENDOTA_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "dota-dashboard-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		StoragePath:       strings.TrimSpace(getEnv("STORAGE_PATH", "data/dashboard.json")),
		ReferenceCacheTTL: referenceCacheTTL,
		LoaderWorkerCount: loaderWorkerCount,

		OpenDotaBaseURL:               strings.TrimSpace(getEnv("OPENDOTA_BASE_URL", "https://api.opendota.com/api")),
		OpenDotaTimeout:               openDotaTimeout,
		OpenDotaMaxRetries:            openDotaMaxRetries,
		OpenDotaCircuitEnabled:        openDotaCircuitEnabled,
		OpenDotaCircuitFailureCount:   openDotaCircuitFailureCount,
		OpenDotaCircuitOpenTimeout:    openDotaCircuitOpenTimeout,
		OpenDotaCircuitHalfOpenMaxReq: openDotaCircuitHalfOpenMaxReq,
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.StoragePath == "" {
		return Config{}, fmt.Errorf("STORAGE_PATH cannot be empty")
	}

	return cfg, nil
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
