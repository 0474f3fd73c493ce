package config

import (
	"errors"
	"strconv"
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
	Env  string
	Port int

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Moderation ModerationConfig
	Transport  TransportConfig
	Listing    ListingConfig
	CORS       CORSConfig
}

type CORSConfig struct {
	AllowedOrigins []string
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

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ModerationConfig carries the fixed administrator identities and the
// credentials for the admin HTTP panel.
type ModerationConfig struct {
	AdminIDs          []int64
	PanelPasswordHash string
}

// TransportConfig points at the chat transport bridge that renders
// prompts and delivers notifications.
type TransportConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// ListingConfig tunes the public approved-reviews listing.
type ListingConfig struct {
	PageLimit    int
	CacheEnabled bool
	CacheTTL     time.Duration
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

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        v.GetDuration("JWT_EXPIRATION"),
		RefreshExpiration: v.GetDuration("JWT_REFRESH_EXPIRATION"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	adminIDs, err := parseAdminIDs(v.GetString("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.Moderation = ModerationConfig{
		AdminIDs:          adminIDs,
		PanelPasswordHash: v.GetString("ADMIN_PANEL_PASSWORD_HASH"),
	}

	cfg.Transport = TransportConfig{
		WebhookURL: v.GetString("TRANSPORT_WEBHOOK_URL"),
		Timeout:    v.GetDuration("TRANSPORT_TIMEOUT"),
	}

	cfg.Listing = ListingConfig{
		PageLimit:    v.GetInt("LISTING_PAGE_LIMIT"),
		CacheEnabled: v.GetBool("LISTING_CACHE_ENABLED"),
		CacheTTL:     v.GetDuration("LISTING_CACHE_TTL"),
	}

	if raw := strings.TrimSpace(v.GetString("CORS_ALLOWED_ORIGINS")); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

// parseAdminIDs splits a comma-separated list of numeric chat identities.
func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, errors.New("ADMIN_IDS must be a comma-separated list of integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reviews")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_EXPIRATION", 15*time.Minute)
	v.SetDefault("JWT_REFRESH_EXPIRATION", 24*time.Hour)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TRANSPORT_TIMEOUT", 5*time.Second)

	v.SetDefault("LISTING_PAGE_LIMIT", 50)
	v.SetDefault("LISTING_CACHE_ENABLED", false)
	v.SetDefault("LISTING_CACHE_TTL", 5*time.Minute)
}
