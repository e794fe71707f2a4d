package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the complete configuration for the application
type AppConfig struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	ServiceName string         `mapstructure:"service_name"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Extract     ExtractConfig  `mapstructure:"extract"`
	Ingest      IngestConfig   `mapstructure:"ingest"`
	API         APIConfig      `mapstructure:"api"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type PostgresConfig struct {
	URI             string        `mapstructure:"uri"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ExtractConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinConfidence float64       `mapstructure:"min_confidence"`
}

type IngestConfig struct {
	WorkerCount int           `mapstructure:"worker_count"`
	QueueSize   int           `mapstructure:"queue_size"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("kafka.topic", "uploads")
	v.SetDefault("kafka.group_id", "towerboard-ingest")
	v.SetDefault("postgres.max_conns", 50)
	v.SetDefault("postgres.min_conns", 10)
	v.SetDefault("postgres.uri", "")
	v.SetDefault("redis.cache_ttl", 30*time.Second)
	v.SetDefault("extract.timeout", 20*time.Second)
	v.SetDefault("extract.min_confidence", 0.6)
	v.SetDefault("ingest.worker_count", 10)
	v.SetDefault("ingest.queue_size", 100)
	v.SetDefault("ingest.lock_timeout", 10*time.Second)
	v.SetDefault("api.addr", ":8080")

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Bind environment variables explicitly for nested structs to ensure Unmarshal picks them up
	v.BindEnv("service_name", "SERVICE_NAME")
	v.BindEnv("environment", "ENVIRONMENT")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("postgres.uri", "POSTGRES_URI")
	v.BindEnv("postgres.max_conns", "POSTGRES_MAX_CONNS")
	v.BindEnv("postgres.min_conns", "POSTGRES_MIN_CONNS")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.cache_ttl", "REDIS_CACHE_TTL")
	v.BindEnv("extract.endpoint", "EXTRACT_ENDPOINT")
	v.BindEnv("extract.timeout", "EXTRACT_TIMEOUT")
	v.BindEnv("extract.min_confidence", "EXTRACT_MIN_CONFIDENCE")
	v.BindEnv("ingest.worker_count", "INGEST_WORKER_COUNT")
	v.BindEnv("ingest.queue_size", "INGEST_QUEUE_SIZE")
	v.BindEnv("ingest.lock_timeout", "INGEST_LOCK_TIMEOUT")
	v.BindEnv("api.addr", "API_ADDR")

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Manual check for Kafka brokers if they came as a single string from env
	brokers := v.GetString("kafka.brokers")
	if brokers != "" && len(config.Kafka.Brokers) == 0 {
		config.Kafka.Brokers = strings.Split(brokers, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service_name is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required")
	}
	if c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required")
	}
	if c.Postgres.URI == "" {
		return errors.New("postgres.uri is required")
	}
	if c.Ingest.WorkerCount <= 0 {
		return errors.New("ingest.worker_count must be positive")
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		return errors.New("extract.min_confidence must be between 0 and 1")
	}
	return nil
}
