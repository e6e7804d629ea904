package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Zone dataset backends.
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Zone dataset.
	DataSource        string
	DataFile          string
	SQLitePath        string
	GenerateIfMissing bool
	DataSeed          int64

	ScoreCacheSize int

	// Plan publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaPlanTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseInt(sharedcfg.EnvOrDefault("DATA_SEED", "0"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid DATA_SEED")
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("SCORE_CACHE_SIZE", "128"))
	if err != nil || cacheSize <= 0 {
		return nil, errors.New("invalid SCORE_CACHE_SIZE")
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		DataSource:        sharedcfg.EnvOrDefault("DATA_SOURCE", SourceFile),
		DataFile:          sharedcfg.EnvOrDefault("DATA_FILE", "data/kingston_data.json"),
		SQLitePath:        sharedcfg.EnvOrDefault("SQLITE_PATH", "data/zones.db"),
		GenerateIfMissing: os.Getenv("GENERATE_IF_MISSING") != "false",
		DataSeed:          seed,

		ScoreCacheSize: cacheSize,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPlanTopic: sharedcfg.EnvOrDefault("KAFKA_PLAN_TOPIC", "hvi-plans"),
	}

	if cfg.DataSource != SourceFile && cfg.DataSource != SourceSQLite {
		return nil, errors.New("DATA_SOURCE must be \"file\" or \"sqlite\"")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}
