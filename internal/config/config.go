package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv             string
	LogLevel           slog.Level
	ApiServicePort     string
	PostgreSQLHost     string
	PostgreSQLPort     int64
	PostgreSQLUser     string
	PostgreSQLPassword string
	PostgreSQLDatabase string
	JWTSecret          string
	TokenExpiration    int64 // Bearer token validity in seconds
	AdminEmails        []string
	GeminiAPIKey       string
	GeminiModel        string
	GenerateTimeout    int64 // AI generation timeout in seconds
	RedisHost          string
	RedisPort          int64
	RedisPassword      string
	RedisDB            int64
	LoginRateLimit     int64 // Max login attempts per window
	LoginRateWindow    int64 // Window length in seconds
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),                    // Default development
		LogLevel:           getLogLevel(),                                       // Default INFO
		ApiServicePort:     getEnv("API_SERVICE_PORT", "8080"),                  // Default 8080
		PostgreSQLHost:     getEnv("POSTGRESQL_HOST", "db"),                     // Default db
		PostgreSQLPort:     getEnvAsInt64("POSTGRESQL_PORT", 5432),              // Default 5432
		PostgreSQLUser:     getEnv("POSTGRESQL_USER", "avisgenius_user"),        // Default user
		PostgreSQLPassword: getEnv("POSTGRESQL_PASSWORD", "avisgenius_password"), // Default password
		PostgreSQLDatabase: getEnv("POSTGRESQL_DATABASE", "avisgenius_db"),      // Default database name
		JWTSecret:          getEnv("JWT_SECRET", "avisgenius_secret"),           // Default secret key
		TokenExpiration:    getEnvAsInt64("TOKEN_EXPIRATION", 604800),           // Default 7 days
		AdminEmails:        getAdminEmails(),                                    // Default empty
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),                        // No default, required for generation
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),          // Default model
		GenerateTimeout:    getEnvAsInt64("GENERATE_TIMEOUT", 20),               // Default 20 seconds
		RedisHost:          getEnv("REDIS_HOST", "redis"),                       // Default redis
		RedisPort:          getEnvAsInt64("REDIS_PORT", 6379),                   // Default 6379
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),                        // Default empty
		RedisDB:            getEnvAsInt64("REDIS_DATABASE", 0),                  // Default 0
		LoginRateLimit:     getEnvAsInt64("LOGIN_RATE_LIMIT", 10),               // Default 10 attempts
		LoginRateWindow:    getEnvAsInt64("LOGIN_RATE_WINDOW", 60),              // Default 1 minute
	}
}

// IsAdminEmail reports whether the email is on the platform admin allowlist.
// Comparison is case-insensitive; the allowlist is normalized at load time.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getAdminEmails() []string {
	raw := getEnv("ADMIN_EMAILS", "")
	if raw == "" {
		return nil
	}

	var emails []string
	for _, part := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(part))
		if email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}
