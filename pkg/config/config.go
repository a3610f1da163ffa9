package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Identity  IdentityConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Cron      CronConfig
	Cache     CacheConfig
	Weather   WeatherConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig holds verification parameters for identity-provider sessions.
// Tokens are minted by the provider; the portal only validates them with the
// shared secret.
type SessionConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

// IdentityConfig points at the external identity provider that owns
// credentials for every portal account.
type IdentityConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig tunes the fixed-window limiter on sensitive reads.
type RateLimitConfig struct {
	Window        time.Duration
	Threshold     int
	PruneInterval time.Duration
}

// CronConfig gates scheduled maintenance endpoints.
type CronConfig struct {
	Secret string
}

// CacheConfig governs redis-backed summary caching.
type CacheConfig struct {
	Enabled    bool
	SummaryTTL time.Duration
}

// WeatherConfig feeds the optional dashboard conditions lookup.
type WeatherConfig struct {
	APIKey  string
	City    string
	Timeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:   v.GetString("SESSION_SECRET"),
		Issuer:   v.GetString("SESSION_ISSUER"),
		Audience: splitAndTrim(v.GetString("SESSION_AUDIENCE")),
	}

	cfg.Identity = IdentityConfig{
		BaseURL: v.GetString("IDENTITY_BASE_URL"),
		APIKey:  v.GetString("IDENTITY_API_KEY"),
		Timeout: parseDuration(v.GetString("IDENTITY_TIMEOUT"), 10*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{
		Window:        parseDuration(v.GetString("RATE_LIMIT_WINDOW"), time.Minute),
		Threshold:     v.GetInt("RATE_LIMIT_THRESHOLD"),
		PruneInterval: parseDuration(v.GetString("RATE_LIMIT_PRUNE_INTERVAL"), time.Hour),
	}

	cfg.Cron = CronConfig{Secret: v.GetString("CRON_SECRET")}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		SummaryTTL: parseDuration(v.GetString("CACHE_SUMMARY_TTL"), 10*time.Minute),
	}

	cfg.Weather = WeatherConfig{
		APIKey:  v.GetString("WEATHER_API_KEY"),
		City:    v.GetString("WEATHER_CITY"),
		Timeout: parseDuration(v.GetString("WEATHER_TIMEOUT"), 5*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_sis")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev_secret")
	v.SetDefault("SESSION_ISSUER", "campus-identity")
	v.SetDefault("SESSION_AUDIENCE", "campus-portal")

	v.SetDefault("IDENTITY_BASE_URL", "")
	v.SetDefault("IDENTITY_API_KEY", "")
	v.SetDefault("IDENTITY_TIMEOUT", "10s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_THRESHOLD", 30)
	v.SetDefault("RATE_LIMIT_PRUNE_INTERVAL", "1h")

	v.SetDefault("CRON_SECRET", "dev_cron_secret")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_SUMMARY_TTL", "10m")

	v.SetDefault("WEATHER_API_KEY", "")
	v.SetDefault("WEATHER_CITY", "Manila")
	v.SetDefault("WEATHER_TIMEOUT", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
