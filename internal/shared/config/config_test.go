package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("API_PREFIX", "")
	t.Setenv("API_VERSION", "")
	t.Setenv("ALLOCATION_TIMEOUT", "")
	t.Setenv("SWEEP_SCHEDULE", "")
	t.Setenv("KAFKA_ENABLED", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "dbname=parkly_db")
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, 5*time.Second, cfg.Reservation.AllocationTimeout)
	assert.Equal(t, "@every 1m", cfg.Reservation.SweepSchedule)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "lots")
	t.Setenv("DB_HOST", "")
	t.Setenv("ALLOCATION_TIMEOUT", "750ms")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("JWT_EXPIRES_IN", "60")
	t.Setenv("RATE_LIMIT_DEFAULT_REQUESTS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "@tcp(localhost:3306)/lots?")
	assert.Contains(t, cfg.Database.DSN, "parseTime=True")
	assert.Equal(t, 750*time.Millisecond, cfg.Reservation.AllocationTimeout)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Minute, cfg.JWT.JWTExpiresIn)
	assert.Equal(t, 60, cfg.RateLimit.DefaultRequests)
}

func TestBuildDatabaseDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", buildDatabaseDSN(DatabaseConfig{Driver: "sqlite"}))

	dsn := buildDatabaseDSN(DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "require",
	})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=require TimeZone=UTC", dsn)
}
