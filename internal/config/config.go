package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Input dataset.
	DataPath     string
	SLPVariable  string
	LatVariable  string
	LonVariable  string
	TimeVariable string

	// Index parameters for the scheduled run.
	Params domain.Params

	// Output sinks.
	OutputDir      string
	ParquetEnabled bool
	XLSXEnabled    bool
	PlotsEnabled   bool
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	PublishRetries int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CacheSize       int
}

// Load reads configuration from environment variables, applying defaults where unset.
// Variables from the file named by ENV_FILE (default ".env") are applied first
// without overriding the process environment; a missing file is ignored.
func Load() (*Config, error) {
	if err := loadEnvFile(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	params, err := parseParams()
	if err != nil {
		return nil, err
	}

	retries, err := parsePositiveInt("PUBLISH_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:     os.Getenv("DATA_PATH"),
		SLPVariable:  sharedcfg.EnvOrDefault("SLP_VARIABLE", "PSL"),
		LatVariable:  sharedcfg.EnvOrDefault("LAT_VARIABLE", "lat"),
		LonVariable:  sharedcfg.EnvOrDefault("LON_VARIABLE", "lon"),
		TimeVariable: sharedcfg.EnvOrDefault("TIME_VARIABLE", "time"),
		Params:       params,

		OutputDir:      sharedcfg.EnvOrDefault("OUTPUT_DIR", "out"),
		ParquetEnabled: parseBool("PARQUET_ENABLED", true),
		XLSXEnabled:    parseBool("XLSX_ENABLED", true),
		PlotsEnabled:   parseBool("PLOTS_ENABLED", true),
		KafkaEnabled:   parseBool("KAFKA_ENABLED", false),
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "azores-high-index"),
		PublishRetries: retries,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CacheSize:       cacheSize,
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.SLPVariable == "" {
		return nil, errors.New("SLP_VARIABLE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load ENV_FILE %q: %w", path, err)
	}
	return nil
}

func parseParams() (domain.Params, error) {
	p := domain.DefaultParams()

	if s := os.Getenv("NORM_TYPE"); s != "" {
		mode, err := domain.ParseNormMode(s)
		if err != nil {
			return p, fmt.Errorf("invalid NORM_TYPE: %w", err)
		}
		p.Norm = mode
	}
	if s := os.Getenv("CUTOFF_PERCENTILE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 || v >= 100 {
			return p, errors.New("invalid CUTOFF_PERCENTILE: must be in (0, 100)")
		}
		p.CutoffPercentile = v
	}
	if s := os.Getenv("WINDOW_YEARS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return p, errors.New("invalid WINDOW_YEARS: must be a positive integer")
		}
		p.Window = v
	}
	return p, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return def
}
