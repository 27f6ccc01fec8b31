package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Server struct {
		Port      string
		GinMode   string
		LogLevel  string
		PublicURL string
	}

	Storage struct {
		Backend string
	}

	Admin struct {
		PasswordHash string
		JWTSecret    string
	}

	Archive struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}

	Polls struct {
		File string
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "pulsepoll")
	config.DB.Password = getEnv("DB_PASSWORD", "pulsepoll_password")
	config.DB.Name = getEnv("DB_NAME", "pulsepoll_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	config.Redis.Password = getEnv("REDIS_PASSWORD", "")
	config.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.LogLevel = getEnv("LOG_LEVEL", "info")
	config.Server.PublicURL = getEnv("PUBLIC_URL", "")

	config.Storage.Backend = getEnv("STORAGE_BACKEND", "postgres")

	config.Admin.PasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")
	config.Admin.JWTSecret = getEnv("JWT_SECRET", "")

	config.Archive.Endpoint = getEnv("ARCHIVE_ENDPOINT", "")
	config.Archive.AccessKey = getEnv("ARCHIVE_ACCESS_KEY", "")
	config.Archive.SecretKey = getEnv("ARCHIVE_SECRET_KEY", "")
	config.Archive.Bucket = getEnv("ARCHIVE_BUCKET", "pulsepoll-snapshots")
	config.Archive.UseSSL = getEnvAsBool("ARCHIVE_USE_SSL", false)

	config.Polls.File = getEnv("POLLS_FILE", "")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// ArchiveEnabled reports whether the snapshot archive is configured
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Endpoint != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
