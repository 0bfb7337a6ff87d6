package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	DBDriver        string        // Database driver: mysql, postgres or sqlite
	DBDSN           string        // Full DSN, overrides the DB_* parts when set
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name (file path for sqlite)
	DBMaxOpenConns  int           // Connection pool upper bound
	DBMaxIdleConns  int           // Idle connections kept in the pool
	DBConnLifetime  time.Duration // Maximum lifetime of a pooled connection
	JWTSecret       string        // JWT secret key
	JWTTTL          time.Duration // Session token lifetime
	RedisAddr       string        // Redis server address, empty disables caching
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	CacheTTL        time.Duration // TTL of cached wallet and history responses
	Currency        string        // Currency code for newly created wallets
	TrustedProxies  []string      // Proxies gin trusts for client IPs
	ShutdownTimeout time.Duration // Grace period for in-flight requests
	LogLevel        string        // Logrus level name
	IsProd          bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:           os.Getenv("DB_DSN"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBHost:          getEnv("DB_HOST", "127.0.0.1"),
		DBPort:          os.Getenv("DB_PORT"),
		DBName:          getEnv("DB_NAME", "finance_wallet"),
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnLifetime:  getDuration("DB_CONN_LIFETIME", time.Hour),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          getDuration("JWT_TTL", 24*time.Hour),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPass:       os.Getenv("REDIS_PASS"),
		RedisDB:         getInt("REDIS_DB", 0),
		CacheTTL:        getDuration("CACHE_TTL", 60*time.Second),
		Currency:        strings.ToUpper(getEnv("WALLET_CURRENCY", "USD")),
		TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1")),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		IsProd:          os.Getenv("IS_PROD") == "true", // Is production environment
	}
}

// getEnv returns the variable or fallback when unset or empty
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback // Missing or malformed
	}
	return v
}

// getDuration accepts Go duration strings such as "15m" or "24h"
func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
