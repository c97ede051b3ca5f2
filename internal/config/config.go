package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Scraping configuration
	Scraping ScrapingConfig

	// Ranking configuration
	Ranking RankingConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// NATS configuration
	NATS NATSConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Storage configuration for the raw result archive
	Storage StorageConfig

	// Backends are the discovery backends, read from BackendsFile
	Backends []BackendConfig `validate:"dive"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	GRPCPort     int `validate:"min=1,max=65535"`
	HTTPPort     int `validate:"min=1,max=65535"`
	Environment  string
	ServiceName  string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	LogFormat    string `validate:"oneof=json console"`
	ShutdownTime time.Duration
}

// ScrapingConfig holds the backoff tiers and fan-out limits
type ScrapingConfig struct {
	BaseInterval   time.Duration `validate:"gt=0"`
	After2Hours    float64       `validate:"gte=0"`
	After5Hours    float64       `validate:"gte=0"`
	After10Hours   float64       `validate:"gte=0"`
	Debug          bool
	MaxWorkers     int           `validate:"gte=0"`
	BackendTimeout time.Duration `validate:"gt=0"`
	BackendsFile   string
	// Sink selects where scrape events go: none, nats or kafka
	EventSink      string `validate:"oneof=none nats kafka"`
	RecordAttempts bool
	ArchiveResults bool
	// CacheType selects the backend response cache: none, memory or redis
	CacheType string `validate:"oneof=none memory redis"`
}

// RankingConfig tunes the default ranker
type RankingConfig struct {
	MinSimilarity float64 `validate:"gt=0,lte=1"`
	RejectTrash   bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string `validate:"oneof=postgres sqlite"`
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	KeyPrefix    string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL             string
	ClientID        string
	StreamName      string
	RequestSubject  string
	DurableName     string
	MaxReconnect    int
	ReconnectWait   time.Duration
	ConsumerWorkers int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type      string `validate:"oneof=local s3"`
	LocalPath string
	S3Config  S3Config
}

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UsePathStyle    bool
}

// BackendConfig describes one discovery backend instance
type BackendConfig struct {
	Name    string `toml:"name" validate:"required"`
	Type    string `toml:"type" validate:"required,oneof=torrentio htmlindex"`
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	// Filter is the torrentio options path segment
	Filter          string  `toml:"filter"`
	RatePerSecond   float64 `toml:"rate_per_second" validate:"gte=0"`
	Burst           int     `toml:"burst" validate:"gte=0"`
	TimeoutSeconds  int     `toml:"timeout_seconds" validate:"gte=0"`
	CacheTTLSeconds int     `toml:"cache_ttl_seconds" validate:"gte=0"`
	UserAgent       string  `toml:"user_agent"`

	Selectors HTMLSelectors `toml:"selectors"`
}

// HTMLSelectors locate result rows and fields on an indexer search page
type HTMLSelectors struct {
	Row     string `toml:"row"`
	Title   string `toml:"title"`
	Magnet  string `toml:"magnet"`
	Seeders string `toml:"seeders"`
	Size    string `toml:"size"`
}

// Timeout returns the HTTP timeout for the backend
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long responses may be cached, zero disables caching
func (b BackendConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLSeconds) * time.Second
}

type backendsFile struct {
	Backends []BackendConfig `toml:"backends"`
}

// Load loads configuration from environment variables and, when
// SCRAPER_BACKENDS_FILE is set, the backends file it points to.
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			GRPCPort:     getEnvAsInt("GRPC_PORT", 9090),
			HTTPPort:     getEnvAsInt("HTTP_PORT", 8080),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			LogFormat:    getEnv("LOG_FORMAT", "json"),
			ShutdownTime: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Scraping: ScrapingConfig{
			BaseInterval:   getEnvAsDuration("SCRAPER_BASE_INTERVAL", 5*time.Minute),
			After2Hours:    getEnvAsFloat("SCRAPER_AFTER_2", 2),
			After5Hours:    getEnvAsFloat("SCRAPER_AFTER_5", 6),
			After10Hours:   getEnvAsFloat("SCRAPER_AFTER_10", 24),
			Debug:          getEnvAsBool("SCRAPER_DEBUG", false),
			MaxWorkers:     getEnvAsInt("SCRAPER_MAX_WORKERS", 8),
			BackendTimeout: getEnvAsDuration("SCRAPER_BACKEND_TIMEOUT", 30*time.Second),
			BackendsFile:   getEnv("SCRAPER_BACKENDS_FILE", ""),
			EventSink:      getEnv("SCRAPER_EVENT_SINK", "none"),
			RecordAttempts: getEnvAsBool("SCRAPER_RECORD_ATTEMPTS", false),
			ArchiveResults: getEnvAsBool("SCRAPER_ARCHIVE_RESULTS", false),
			CacheType:      getEnv("SCRAPER_CACHE", "memory"),
		},
		Ranking: RankingConfig{
			MinSimilarity: getEnvAsFloat("RANKING_MIN_SIMILARITY", 0.85),
			RejectTrash:   getEnvAsBool("RANKING_REJECT_TRASH", true),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "scraper"),
			Password:     getEnv("DB_PASSWORD", "scraper"),
			Database:     getEnv("DB_NAME", "scraper"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "scraper.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "scraper:"),
		},
		NATS: NATSConfig{
			URL:             getEnv("NATS_URL", "nats://localhost:4222"),
			ClientID:        fmt.Sprintf("%s-%s", serviceName, getEnv("HOSTNAME", "local")),
			StreamName:      getEnv("NATS_STREAM", "SCRAPE"),
			RequestSubject:  getEnv("NATS_REQUEST_SUBJECT", "scrape.requests"),
			DurableName:     fmt.Sprintf("%s-durable", serviceName),
			MaxReconnect:    getEnvAsInt("NATS_MAX_RECONNECT", 60),
			ReconnectWait:   getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),
			ConsumerWorkers: getEnvAsInt("NATS_CONSUMER_WORKERS", 4),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "scrape-events"),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "/var/lib/scraper/archive"),
			S3Config: S3Config{
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
				Bucket:          getEnv("S3_BUCKET", "scraper-archive"),
				Region:          getEnv("S3_REGION", "us-east-1"),
				UsePathStyle:    getEnvAsBool("S3_USE_PATH_STYLE", true),
			},
		},
	}

	if cfg.Scraping.BackendsFile != "" {
		backends, err := LoadBackends(cfg.Scraping.BackendsFile)
		if err != nil {
			return nil, err
		}
		cfg.Backends = backends
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBackends reads the [[backends]] tables of a TOML file
func LoadBackends(path string) ([]BackendConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backends file: %w", err)
	}
	defer file.Close()

	var parsed backendsFile
	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse backends file %s: %w", path, err)
	}
	return parsed.Backends, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		key := strings.ToLower(b.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("invalid configuration: duplicate backend %q", b.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	parts := strings.Split(strValue, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

// DSN returns the database connection string
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
