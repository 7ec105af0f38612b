package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEndpoint   = "https://example.com/sparql"
	defaultBaseURL    = "https://environment.ld.admin.ch/foen/hydro"
	defaultSiteCodes  = "2044,2112,2491,2355"
	defaultParameters = "station,discharge,measurementTime,waterLevel,dangerLevel,waterTemperature,isLiter"

	// outputFileName is the CSV ledger inside the data directory.
	outputFileName = "lindas_hydro_data.csv"
)

// Config holds all scraper settings, populated from environment variables.
type Config struct {
	Endpoint   string // SPARQL endpoint URL
	BaseURL    string // URI prefix for hydro subjects and dimensions
	DataDir    string
	OutputFile string
	SiteCodes  []string
	Parameters []string

	// LegacyHeader switches the CSV layout to the historical one ending in
	// a collection_time column instead of is_liter.
	LegacyHeader bool

	FetchMaxAttempts    int
	FetchInitialBackoff time.Duration
	FetchTimeout        time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka publishing of newly appended readings.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables (optionally a .env
// file), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	fetchBackoff, err := parseDurationEnv("FETCH_INITIAL_BACKOFF", 2*time.Second)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDurationEnv("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := parseIntEnv("FETCH_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}

	dataDir := resolveDataDir()

	kafkaBrokers := splitList(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		Endpoint:   envOrDefault("SPARQL_ENDPOINT", defaultEndpoint),
		BaseURL:    strings.TrimRight(envOrDefault("SPARQL_BASE_URL", defaultBaseURL), "/"),
		DataDir:    dataDir,
		OutputFile: filepath.Join(dataDir, outputFileName),
		SiteCodes:  splitList(envOrDefault("SITE_CODES", defaultSiteCodes)),
		Parameters: splitList(envOrDefault("PARAMETERS", defaultParameters)),

		LegacyHeader: boolEnv("CSV_LEGACY_HEADER"),

		FetchMaxAttempts:    maxAttempts,
		FetchInitialBackoff: fetchBackoff,
		FetchTimeout:        fetchTimeout,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "hydro-readings"),
	}

	if cfg.Endpoint == "" {
		return nil, errors.New("SPARQL_ENDPOINT is required")
	}
	if len(cfg.SiteCodes) == 0 {
		return nil, errors.New("SITE_CODES is required")
	}
	if len(cfg.Parameters) == 0 {
		return nil, errors.New("PARAMETERS is required")
	}
	if cfg.FetchMaxAttempts < 1 {
		return nil, errors.New("FETCH_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// resolveDataDir picks the data directory: HYDRO_DATA_DIR wins, then the
// Docker convention /app/data when running in a container, then ./data.
func resolveDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("HYDRO_DATA_DIR")); dir != "" {
		return dir
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "/app/data"
	}
	return "data"
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

// splitList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
