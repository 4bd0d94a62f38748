package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret   = "change-me-jwt-secret"
	// BEGIN IMMEDIATE plus a busy timeout makes concurrent sqlite writers
	// queue instead of failing with SQLITE_BUSY.
	defaultDatabaseURL = "file:carrental.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
)

type Config struct {
	AppEnv    string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Logger    LoggerConfig
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// URL is a postgres:// DSN or a sqlite file DSN for local development.
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string // json or console
	Output string // stdout or stderr
}

type SchedulerConfig struct {
	Enabled bool
	// Cron specs with a seconds field, evaluated in UTC.
	RentalSweep               string
	NotificationCleanup       string
	NotificationRetentionDays int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	appEnv := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "dev")))

	cfg := &Config{
		AppEnv: appEnv,
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", defaultDatabaseURL),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("CACHE_TTL", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret: strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
			TTL:    getDurationEnv("JWT_TTL", 24*time.Hour),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Scheduler: SchedulerConfig{
			Enabled:                   getBoolEnv("SCHEDULER_ENABLED", true),
			RentalSweep:               getEnv("SCHEDULER_RENTAL_SWEEP", "0 */5 * * * *"),
			NotificationCleanup:       getEnv("SCHEDULER_NOTIFICATION_CLEANUP", "0 30 3 * * *"),
			NotificationRetentionDays: getIntEnv("NOTIFICATION_RETENTION_DAYS", 90),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0")
	}
	if c.Scheduler.NotificationRetentionDays <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION_DAYS must be > 0")
	}
	if c.IsProdLike() {
		if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !strings.HasPrefix(c.Database.URL, "postgres") {
			return fmt.Errorf("in prod/release DATABASE_URL must point to PostgreSQL")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBoolEnv(name string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func getDurationEnv(name string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
