package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port            string
	GinMode         string
	APIVersion      string
	APIPrefix       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	CORSOrigins     []string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	Reservation ReservationConfig
	Kafka       KafkaConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration. Driver is postgres, mysql or sqlite.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled                     bool          `json:"enabled"`
	WindowDuration              time.Duration `json:"window_duration"`
	DefaultRequests             int           `json:"default_requests"`
	PublicRequests              int           `json:"public_requests"`
	AuthRequests                int           `json:"auth_requests"`
	ReservationRequests         int           `json:"reservation_requests"`
	ReservationCriticalRequests int           `json:"reservation_critical_requests"`
	AdminRequests               int           `json:"admin_requests"`
	UserRequests                int           `json:"user_requests"`
	HealthRequests              int           `json:"health_requests"`
	WhitelistedIPs              []string      `json:"whitelisted_ips"`
}

// ReservationConfig tunes the allocator and the completion sweep
type ReservationConfig struct {
	AllocationTimeout time.Duration // bounds lock wait + commit for one attempt
	RetryBackoff      time.Duration // delay before the single caller-side retry
	SweepSchedule     string        // cron expression, "" disables the sweep
	SweepBatchSize    int
}

// KafkaConfig holds broker settings for lifecycle events and payment confirmations
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	EventsTopic   string
	PaymentsTopic string
	ConsumerGroup string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		APIVersion:      getEnv("API_VERSION", "v1"),
		APIPrefix:       getEnv("API_PREFIX", "/api"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB
		CORSOrigins:     getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", ""),
			Name:            getEnv("DB_NAME", "parkly_db"),
			User:            getEnv("DB_USER", "parkly_user"),
			Password:        getEnv("DB_PASSWORD", "parkly_password"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			DSN:             getEnv("DB_DSN", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
		},

		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn:     getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getDurationEnvSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		RateLimit: RateLimitConfig{
			Enabled:                     getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:              getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:             getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:              getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:                getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			ReservationRequests:         getIntEnv("RATE_LIMIT_RESERVATION_REQUESTS", 60),
			ReservationCriticalRequests: getIntEnv("RATE_LIMIT_RESERVATION_CRITICAL_REQUESTS", 20),
			AdminRequests:               getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			UserRequests:                getIntEnv("RATE_LIMIT_USER_REQUESTS", 60),
			HealthRequests:              getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:              getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Reservation: ReservationConfig{
			AllocationTimeout: getDurationEnv("ALLOCATION_TIMEOUT", 5*time.Second),
			RetryBackoff:      getDurationEnv("ALLOCATION_RETRY_BACKOFF", 100*time.Millisecond),
			SweepSchedule:     getEnv("SWEEP_SCHEDULE", "@every 1m"),
			SweepBatchSize:    getIntEnv("SWEEP_BATCH_SIZE", 200),
		},

		Kafka: KafkaConfig{
			Enabled:       getBoolEnv("KAFKA_ENABLED", false),
			Brokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			EventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "reservations.events"),
			PaymentsTopic: getEnv("KAFKA_PAYMENTS_TOPIC", "payments.confirmed"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "parkly-payments"),
		},

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	if cfg.Database.Port == "" {
		cfg.Database.Port = defaultPort(cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	}
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

func defaultPort(driver string) string {
	if driver == "mysql" {
		return "3306"
	}
	return "5432"
}

// buildDatabaseDSN builds the connection string for the configured driver
func buildDatabaseDSN(db DatabaseConfig) string {
	switch db.Driver {
	case "mysql":
		return db.User + ":" + db.Password + "@tcp(" + db.Host + ":" + db.Port + ")/" + db.Name +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return "file::memory:?cache=shared"
	default:
		return "host=" + db.Host +
			" port=" + db.Port +
			" user=" + db.User +
			" password=" + db.Password +
			" dbname=" + db.Name +
			" sslmode=" + db.SSLMode +
			" TimeZone=UTC"
	}
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
