package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	ServicePort string
	Env         string
	LogLevel    string

	// Booking Service client
	BookingServiceURL     string
	BookingServiceTimeout time.Duration
	IdempotencyKeys       bool
	BookingTimezone       string

	// Session state
	UseMemorySessions bool
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	SessionTTL        time.Duration
	SubmitLockTTL     time.Duration

	// Reference Booking Service storage and events
	DatabaseURL       string
	KafkaBrokers      []string
	AppointmentsTopic string
	SlotCapacity      int
	OutboxInterval    time.Duration

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Tracing
	OTELEnabled     bool
	OTELEndpoint    string
	OTELSampleRatio float64
}

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding values already present in the environment.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		ServicePort: getEnv("SERVICE_PORT", "4000"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BookingServiceURL:     getEnv("BOOKING_SERVICE_URL", "http://localhost:4000"),
		BookingServiceTimeout: getEnvAsDuration("BOOKING_SERVICE_TIMEOUT", 0),
		IdempotencyKeys:       getEnvAsBool("BOOKING_IDEMPOTENCY_KEYS", false),
		BookingTimezone:       getEnv("BOOKING_TIMEZONE", "UTC"),

		UseMemorySessions: getEnvAsBool("USE_MEMORY_SESSIONS", false),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		SubmitLockTTL:     getEnvAsDuration("SUBMIT_LOCK_TTL", 2*time.Minute),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		KafkaBrokers:      getEnvAsList("KAFKA_BROKERS"),
		AppointmentsTopic: getEnv("APPOINTMENTS_TOPIC", "appointment.created"),
		SlotCapacity:      getEnvAsInt("BOOKING_SLOT_CAPACITY", 0),
		OutboxInterval:    getEnvAsDuration("OUTBOX_INTERVAL", time.Second),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		OTELEnabled:     getEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELSampleRatio: getEnvAsRatio("OTEL_SAMPLING_RATIO", 1),
	}
}

// Location resolves BookingTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsRatio(key string, defaultValue float64) float64 {
	value := getEnvAsFloat(key, defaultValue)
	if value < 0 || value > 1 {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
