package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUser         string
	DBPass         string
	DBHost         string
	DBPort         string
	DBName         string
	SSLMode        string
	RedisHost      string
	RedisPort      string
	NatsHost       string
	NatsPort       string
	GRPCHost       string
	GRPCPort       string
	GRPCListenPort string
	ApiPort        string
	ApiEnabled     string
	BusProvider    string
	WorkerProvider string
	AuditCacheTTL  time.Duration
	AuditWorkers   int
	LogLevel       string
	LogFormat      string
}

// New loads and validates configuration from environment variables.
// The HTTP server is optional: if TXGUARD_API_ENABLED != "true", ApiAddr()
// returns an error and the HTTP server simply won't start.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:         os.Getenv("TXGUARD_POSTGRES_USER"),
		DBPass:         os.Getenv("TXGUARD_POSTGRES_PASSWORD"),
		DBHost:         os.Getenv("TXGUARD_POSTGRES_HOST"),
		DBPort:         getEnv("TXGUARD_POSTGRES_PORT", "5432"),
		DBName:         os.Getenv("TXGUARD_POSTGRES_DB"),
		SSLMode:        os.Getenv("TXGUARD_POSTGRES_SSLMODE"),
		RedisHost:      os.Getenv("TXGUARD_REDIS_HOST"),
		RedisPort:      os.Getenv("TXGUARD_REDIS_PORT"),
		NatsHost:       os.Getenv("TXGUARD_NATS_HOST"),
		NatsPort:       os.Getenv("TXGUARD_NATS_PORT"),
		GRPCHost:       os.Getenv("TXGUARD_GRPC_HOST"),
		GRPCPort:       os.Getenv("TXGUARD_GRPC_PORT"),
		GRPCListenPort: getEnv("TXGUARD_GRPC_LISTEN_PORT", "50051"),
		ApiPort:        os.Getenv("TXGUARD_API_PORT"),
		ApiEnabled:     os.Getenv("TXGUARD_API_ENABLED"),
		BusProvider:    os.Getenv("TXGUARD_BUS_PROVIDER"),
		WorkerProvider: os.Getenv("TXGUARD_WORKER_PROVIDER"),
		AuditCacheTTL:  getEnvDuration("TXGUARD_AUDIT_CACHE_TTL", 24*time.Hour),
		AuditWorkers:   getEnvInt("TXGUARD_AUDIT_WORKERS", 1),
		LogLevel:       getEnv("TXGUARD_LOG_LEVEL", "info"),
		LogFormat:      getEnv("TXGUARD_LOG_FORMAT", "json"),
	}

	// Required: database
	if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "" || cfg.SSLMode == "" {
		return nil, fmt.Errorf("missing required env for database: TXGUARD_POSTGRES_USER/HOST/DB/SSLMODE")
	}

	// Required: redis
	if cfg.RedisHost == "" || cfg.RedisPort == "" {
		return nil, fmt.Errorf("missing required env for redis: TXGUARD_REDIS_HOST/PORT")
	}

	// Required: bus provider
	if cfg.BusProvider == "" {
		return nil, fmt.Errorf("missing required env: TXGUARD_BUS_PROVIDER (nats|grpc)")
	}
	if cfg.BusProvider != "nats" && cfg.BusProvider != "grpc" {
		return nil, fmt.Errorf("invalid bus provider %q, must be 'nats' or 'grpc'", cfg.BusProvider)
	}

	// Worker provider defaults to the bus provider
	if cfg.WorkerProvider == "" {
		cfg.WorkerProvider = cfg.BusProvider
	}
	if cfg.WorkerProvider != "nats" && cfg.WorkerProvider != "grpc" {
		return nil, fmt.Errorf("invalid worker provider %q, must be 'nats' or 'grpc'", cfg.WorkerProvider)
	}
	if cfg.BusProvider == "grpc" && (cfg.GRPCHost == "" || cfg.GRPCPort == "") {
		return nil, fmt.Errorf("missing required env for grpc bus: TXGUARD_GRPC_HOST/PORT")
	}
	if (cfg.BusProvider == "nats" || cfg.WorkerProvider == "nats") && (cfg.NatsHost == "" || cfg.NatsPort == "") {
		return nil, fmt.Errorf("missing required env for nats: TXGUARD_NATS_HOST/PORT")
	}

	if cfg.AuditWorkers < 1 {
		return nil, fmt.Errorf("TXGUARD_AUDIT_WORKERS must be at least 1, got %d", cfg.AuditWorkers)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return nil, fmt.Errorf("invalid log format %q, must be 'json' or 'console'", cfg.LogFormat)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.SSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) NatsAddr() string {
	return fmt.Sprintf("nats://%s:%s", c.NatsHost, c.NatsPort)
}

// GRPCAddr is the remote event service used when BusProvider == "grpc".
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%s", c.GRPCHost, c.GRPCPort)
}

func (c *Config) GRPCListenAddr() string {
	return ":" + c.GRPCListenPort
}

// ApiAddr returns the HTTP listen address if the API is enabled.
// Returns an error if TXGUARD_API_ENABLED != "true"; callers should skip starting the HTTP server.
func (c *Config) ApiAddr() (string, error) {
	if c.ApiEnabled == "true" {
		if c.ApiPort == "" {
			return "", fmt.Errorf("TXGUARD_API_PORT is required when TXGUARD_API_ENABLED=true")
		}
		return ":" + c.ApiPort, nil
	}
	return "", fmt.Errorf("HTTP API is disabled (TXGUARD_API_ENABLED != true)")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var intVal int
	if _, err := fmt.Sscanf(val, "%d", &intVal); err != nil {
		return defaultVal
	}
	return intVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
