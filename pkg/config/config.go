// Package config loads and validates the indexer configuration from a YAML
// file with environment-variable overrides. Each subsystem (Indexer, Logging,
// Metrics, Kafka, Redis, Postgres, Retry) has its own typed section.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Indexer  IndexerConfig  `yaml:"indexer"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Retry    RetryConfig    `yaml:"retry"`
}

// IndexerConfig locates the collection and describes the variants to build.
type IndexerConfig struct {
	CorpusDir     string          `yaml:"corpusDir"`
	OutputDir     string          `yaml:"outputDir"`
	StopwordsPath string          `yaml:"stopwordsPath"`
	ProbeTerms    []string        `yaml:"probeTerms"`
	Variants      []VariantConfig `yaml:"variants"`
}

// VariantConfig describes one index variant: how tokens are reduced, how
// gaps are coded and how the dictionary is compressed.
type VariantConfig struct {
	Name      string `yaml:"name"`
	Reducer   string `yaml:"reducer"`
	Scheme    string `yaml:"scheme"`
	Style     string `yaml:"style"`
	BlockSize int    `yaml:"blockSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus scrape server and the textfile
// written when the build finishes.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Port     int    `yaml:"port"`
	Textfile string `yaml:"textfile"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete string `yaml:"indexComplete"`
}

// RedisConfig holds Redis connection parameters and the key namespace the
// compressed artifacts are published under.
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	KeyPrefix string        `yaml:"keyPrefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RetryConfig bounds the retries made against the publish sinks.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"maxAttempts"`
	InitialDelay   time.Duration `yaml:"initialDelay"`
	MaxDelay       time.Duration `yaml:"maxDelay"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration of the two classic Cranfield variants:
// lemmatised terms with a blocked dictionary and gamma gaps, and stemmed
// terms with a front-coded dictionary and delta gaps.
func Default() *Config {
	return &Config{
		Indexer: IndexerConfig{
			CorpusDir:  "Cranfield",
			OutputDir:  ".",
			ProbeTerms: []string{"reynolds", "prandtl", "flow", "pressure", "boundary", "shock", "nasa"},
			Variants: []VariantConfig{
				{Name: "Version1", Reducer: "lemma", Scheme: "gamma", Style: "blocked", BlockSize: 4},
				{Name: "Version2", Reducer: "stem", Scheme: "delta", Style: "front-coding", BlockSize: 8},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				IndexComplete: "index.complete",
			},
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "cranfield",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "cranfield",
			User:            "cranfield",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialDelay:   100 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			AttemptTimeout: 10 * time.Second,
		},
	}
}

var (
	validReducers = map[string]bool{"lemma": true, "lemmatizer": true, "stem": true, "stemmer": true, "porter": true, "snowball": true}
	validSchemes  = map[string]bool{"gamma": true, "delta": true}
	validStyles   = map[string]bool{"blocked": true, "front-coding": true, "frontcoding": true, "front": true}
)

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Indexer.CorpusDir == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, "indexer.corpusDir is required")
	}
	if c.Indexer.OutputDir == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, "indexer.outputDir is required")
	}
	if len(c.Indexer.Variants) == 0 {
		return apperrors.New(apperrors.ErrInvalidConfig, "at least one variant is required")
	}
	seen := make(map[string]bool, len(c.Indexer.Variants))
	for i, v := range c.Indexer.Variants {
		if v.Name == "" {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "variant %d has no name", i)
		}
		if seen[strings.ToLower(v.Name)] {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "duplicate variant %q", v.Name)
		}
		seen[strings.ToLower(v.Name)] = true
		if !validReducers[strings.ToLower(v.Reducer)] {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "variant %q: unknown reducer %q", v.Name, v.Reducer)
		}
		if !validSchemes[strings.ToLower(v.Scheme)] {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "variant %q: unknown scheme %q", v.Name, v.Scheme)
		}
		if !validStyles[strings.ToLower(v.Style)] {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "variant %q: unknown style %q", v.Name, v.Style)
		}
		if v.BlockSize <= 0 {
			return apperrors.Newf(apperrors.ErrInvalidConfig, "variant %q: blockSize must be positive, got %d", v.Name, v.BlockSize)
		}
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topics.IndexComplete == "") {
		return apperrors.New(apperrors.ErrInvalidConfig, "kafka requires brokers and topics.indexComplete")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, "redis.addr is required")
	}
	return nil
}

// Variant returns the variant configured under name.
func (c *Config) Variant(name string) (VariantConfig, bool) {
	for _, v := range c.Indexer.Variants {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return VariantConfig{}, false
}

// applyEnvOverrides reads CI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CI_CORPUS_DIR"); v != "" {
		cfg.Indexer.CorpusDir = v
	}
	if v := os.Getenv("CI_OUTPUT_DIR"); v != "" {
		cfg.Indexer.OutputDir = v
	}
	if v := os.Getenv("CI_STOPWORDS_PATH"); v != "" {
		cfg.Indexer.StopwordsPath = v
	}
	if v := os.Getenv("CI_PROBE_TERMS"); v != "" {
		cfg.Indexer.ProbeTerms = strings.Split(v, ",")
	}
	if v := os.Getenv("CI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CI_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("CI_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("CI_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v := os.Getenv("CI_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("CI_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("CI_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CI_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
		cfg.Postgres.Enabled = true
	}
	if v := os.Getenv("CI_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("CI_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("CI_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("CI_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
}
