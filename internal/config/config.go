package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SourceWeather = "weather"
	SourceMITRE   = "mitre"
)

type Config struct {
	Source string `validate:"required,oneof=weather mitre"`

	// weather source
	WeatherAPIKey  string `validate:"required_if=Source weather"`
	WeatherBaseURL string `validate:"required"`
	Cities         []string

	// mitre source
	MITREURL string `validate:"required"`

	RequestTimeout  time.Duration `validate:"gt=0"`
	RequestInterval time.Duration
	RetryMax        int           `validate:"min=0"`
	RetryBackoff    time.Duration `validate:"min=0"`

	MongoURI        string `validate:"required"`
	MongoDB         string `validate:"required"`
	MongoCollection string `validate:"required"`
	BatchSize       int    `validate:"min=1"`

	Port           string
	IngestSchedule string
}

var validate = validator.New()

// Load reads configuration from the environment. A missing provider
// credential is a startup failure here, never a mid-run surprise.
func Load() (Config, error) {
	src := getenv("SOURCE", SourceWeather)

	cfg := Config{
		Source:          src,
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		WeatherBaseURL:  getenv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		Cities:          splitList(getenv("CITIES", "Chennai,Mumbai,Delhi,Bangalore,Kolkata,Hyderabad,Pune,Ahmedabad")),
		MITREURL:        getenv("MITRE_URL", "https://raw.githubusercontent.com/mitre/cti/master/enterprise-attack/enterprise-attack.json"),
		RequestTimeout:  time.Duration(getenvInt("REQUEST_TIMEOUT", defaultTimeoutSecs(src))) * time.Second,
		RequestInterval: getenvDuration("REQUEST_INTERVAL", time.Second),
		RetryMax:        getenvInt("RETRY_MAX", 3),
		RetryBackoff:    getenvDuration("RETRY_BACKOFF", 60*time.Second),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "etl_connectors"),
		MongoCollection: getenv("MONGO_COLLECTION", defaultCollection(src)),
		BatchSize:       getenvInt("BATCH_SIZE", 1000),
		Port:            getenv("PORT", "8080"),
		IngestSchedule:  getenv("INGEST_SCHEDULE", "@every 6h"),
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Units returns the work list for the configured source: the city list, or
// the single bundle unit.
func (c Config) Units() []string {
	if c.Source == SourceMITRE {
		return []string{"enterprise-attack"}
	}
	return c.Cities
}

func defaultCollection(src string) string {
	if src == SourceMITRE {
		return "mitre_attack_raw"
	}
	return "weather_connector_raw"
}

// The bundle download is a single multi-minute transfer; per-city API calls
// are small.
func defaultTimeoutSecs(src string) int {
	if src == SourceMITRE {
		return 120
	}
	return 10
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
