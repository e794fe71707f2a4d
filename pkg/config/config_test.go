package config

import (
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid config passes validation", prop.ForAll(
		func(serviceName, topic, broker string) bool {
			cfg := AppConfig{
				ServiceName: serviceName,
				Kafka: KafkaConfig{
					Topic:   topic,
					Brokers: []string{broker},
				},
				Postgres: PostgresConfig{
					URI: "postgres://localhost:5432/db",
				},
				Ingest: IngestConfig{
					WorkerCount: 4,
				},
				Extract: ExtractConfig{
					MinConfidence: 0.6,
				},
			}
			return cfg.Validate() == nil
		},
		gen.Identifier(), // ServiceName
		gen.Identifier(), // Topic
		gen.Identifier(), // Broker
	))

	properties.Property("empty service name fails validation", prop.ForAll(
		func(_ string) bool {
			cfg := AppConfig{}
			return cfg.Validate() != nil
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidateRejectsBadConfidence(t *testing.T) {
	cfg := AppConfig{
		ServiceName: "svc",
		Kafka:       KafkaConfig{Topic: "uploads", Brokers: []string{"localhost:9092"}},
		Postgres:    PostgresConfig{URI: "postgres://localhost:5432/db"},
		Ingest:      IngestConfig{WorkerCount: 4},
		Extract:     ExtractConfig{MinConfidence: 1.5},
	}
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	// Set env vars
	os.Setenv("SERVICE_NAME", "test-service")
	os.Setenv("KAFKA_BROKERS", "localhost:9092")
	os.Setenv("KAFKA_TOPIC", "test-topic")
	os.Setenv("POSTGRES_URI", "postgres://localhost:5432/db")
	os.Setenv("EXTRACT_ENDPOINT", "http://localhost:9000/extract")
	defer os.Clearenv()

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-service", cfg.ServiceName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "test-topic", cfg.Kafka.Topic)
	assert.Equal(t, "http://localhost:9000/extract", cfg.Extract.Endpoint)

	// Defaults
	assert.Equal(t, 10, cfg.Ingest.WorkerCount)
	assert.Equal(t, 10*time.Second, cfg.Ingest.LockTimeout)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.InEpsilon(t, 0.6, cfg.Extract.MinConfidence, 1e-9)

	// Test invalid config loading
	os.Unsetenv("SERVICE_NAME")
	_, err = Load("")
	assert.Error(t, err)
}
