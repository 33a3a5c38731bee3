package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SOURCE", "WEATHER_API_KEY", "WEATHER_BASE_URL", "CITIES", "MITRE_URL",
		"REQUEST_TIMEOUT", "REQUEST_INTERVAL", "RETRY_MAX", "RETRY_BACKOFF",
		"MONGO_URI", "MONGO_DB", "MONGO_COLLECTION", "BATCH_SIZE", "PORT",
		"INGEST_SCHEDULE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadWeatherDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != SourceWeather {
		t.Errorf("source = %q", cfg.Source)
	}
	if cfg.MongoCollection != "weather_connector_raw" {
		t.Errorf("collection = %q", cfg.MongoCollection)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.BatchSize != 1000 {
		t.Errorf("batch size = %d", cfg.BatchSize)
	}
	if len(cfg.Cities) != 8 {
		t.Errorf("default city list = %v", cfg.Cities)
	}
	if got := cfg.Units(); len(got) != len(cfg.Cities) {
		t.Errorf("units = %v", got)
	}
}

func TestLoadRequiresWeatherKey(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("missing WEATHER_API_KEY must fail at startup")
	}
}

func TestLoadMITREDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE", "mitre")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MongoCollection != "mitre_attack_raw" {
		t.Errorf("collection = %q", cfg.MongoCollection)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s for the bundle download", cfg.RequestTimeout)
	}
	units := cfg.Units()
	if len(units) != 1 || units[0] != "enterprise-attack" {
		t.Errorf("units = %v, want the single bundle unit", units)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_API_KEY", "k")
	t.Setenv("CITIES", "Oslo, Bergen ,")
	t.Setenv("BATCH_SIZE", "250")
	t.Setenv("MONGO_COLLECTION", "custom_raw")
	t.Setenv("REQUEST_INTERVAL", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Cities) != 2 || cfg.Cities[0] != "Oslo" || cfg.Cities[1] != "Bergen" {
		t.Errorf("cities = %v", cfg.Cities)
	}
	if cfg.BatchSize != 250 || cfg.MongoCollection != "custom_raw" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RequestInterval != 2*time.Second {
		t.Errorf("interval = %v", cfg.RequestInterval)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE", "ftp")
	if _, err := Load(); err == nil {
		t.Fatal("unknown SOURCE must fail validation")
	}
}
