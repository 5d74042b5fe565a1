package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.OpenDotaBaseURL != "https://api.opendota.com/api" {
		t.Fatalf("unexpected OpenDotaBaseURL: %q", cfg.OpenDotaBaseURL)
	}
	if cfg.ReferenceCacheTTL != 24*time.Hour {
		t.Fatalf("unexpected ReferenceCacheTTL: %s", cfg.ReferenceCacheTTL)
	}
	if cfg.LoaderWorkerCount != 8 {
		t.Fatalf("unexpected LoaderWorkerCount: %d", cfg.LoaderWorkerCount)
	}
	if !cfg.OpenDotaCircuitEnabled {
		t.Fatalf("expected OpenDotaCircuitEnabled=true by default")
	}
	if cfg.StoragePath == "" {
		t.Fatalf("expected a default StoragePath")
	}
}

func TestLoad_OpenDotaConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("OPENDOTA_BASE_URL", "http://localhost:9000/api")
	t.Setenv("OPENDOTA_TIMEOUT", "5s")
	t.Setenv("OPENDOTA_MAX_RETRIES", "4")
	t.Setenv("OPENDOTA_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OpenDotaBaseURL != "http://localhost:9000/api" {
		t.Fatalf("unexpected OpenDotaBaseURL: %q", cfg.OpenDotaBaseURL)
	}
	if cfg.OpenDotaTimeout != 5*time.Second {
		t.Fatalf("unexpected OpenDotaTimeout: %s", cfg.OpenDotaTimeout)
	}
	if cfg.OpenDotaMaxRetries != 4 {
		t.Fatalf("unexpected OpenDotaMaxRetries: %d", cfg.OpenDotaMaxRetries)
	}
	if cfg.OpenDotaCircuitFailureCount != 3 {
		t.Fatalf("unexpected OpenDotaCircuitFailureCount: %d", cfg.OpenDotaCircuitFailureCount)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"negative retries", "OPENDOTA_MAX_RETRIES", "-1"},
		{"zero workers", "LOADER_WORKER_COUNT", "0"},
		{"zero reference ttl", "REFERENCE_CACHE_TTL", "0s"},
		{"unparseable timeout", "OPENDOTA_TIMEOUT", "soon"},
		{"zero circuit failures", "OPENDOTA_CIRCUIT_FAILURE_COUNT", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, b ,, c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected splitCSV result: %#v", got)
	}
}
