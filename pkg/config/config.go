package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
	}

	// Parental gate configuration
	Parental struct {
		JWTSecret   string
		TokenExpiry time.Duration
		DefaultPIN  string
	}

	// Provider configuration. API keys here are bootstrap defaults; the
	// settings row in the database overrides them when a guardian enters
	// keys through the parental portal.
	Providers struct {
		GeminiAPIKey     string
		GeminiModel      string
		GeminiTTSModel   string
		GeminiImageModel string
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Speech cache settings
	Cache struct {
		Enabled   bool
		RedisAddr string
		TTL       time.Duration
		MaxItems  int
	}

	// Audio output settings
	Audio struct {
		PlaybackEnabled bool
	}

	// Secrets backend (Vault) settings
	Secrets struct {
		VaultAddr  string
		VaultToken string
		MountPath  string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists.
func New() *Config {
	once.Do(func() {
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "magic-encyclopedia")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)

		// Parental gate config
		instance.Parental.JWTSecret = getEnvString("PARENTAL_JWT_SECRET", "devParentalSecretDoNotUseInProduction")
		instance.Parental.TokenExpiry = getEnvDuration("PARENTAL_TOKEN_EXPIRY", 30*time.Minute)
		instance.Parental.DefaultPIN = getEnvString("PARENTAL_DEFAULT_PIN", "1234")

		// Provider config
		instance.Providers.GeminiAPIKey = getEnvString("GEMINI_API_KEY", "")
		instance.Providers.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-3-flash-preview")
		instance.Providers.GeminiTTSModel = getEnvString("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts")
		instance.Providers.GeminiImageModel = getEnvString("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002")

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// Speech cache settings
		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.RedisAddr = getEnvString("REDIS_ADDR", "")
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 24*time.Hour)
		instance.Cache.MaxItems = getEnvInt("CACHE_MAX_ITEMS", 256)

		// Audio settings
		instance.Audio.PlaybackEnabled = getEnvBool("AUDIO_PLAYBACK", true)

		// Secrets settings
		instance.Secrets.VaultAddr = getEnvString("VAULT_ADDR", "")
		instance.Secrets.VaultToken = getEnvString("VAULT_TOKEN", "")
		instance.Secrets.MountPath = getEnvString("VAULT_MOUNT_PATH", "secret")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
