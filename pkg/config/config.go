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

	Auth   AuthConfig
	CORS   CORSConfig
	Log    LogConfig
	Sheets SheetsConfig
	Sync   SyncConfig
	Policy PolicyConfig
	Export ExportConfig
}

// AuthConfig holds token issuance settings for the demo login flow.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SheetsConfig points the sync client at a deployed Apps Script Web App.
// An empty or placeholder URL switches the client into simulation mode.
type SheetsConfig struct {
	WebAppURL      string
	SimulatedDelay time.Duration
}

// SyncConfig sizes the background sheet-sync dispatcher.
type SyncConfig struct {
	Workers    int
	BufferSize int
}

// PolicyConfig tunes authorization rules that the product left ambiguous.
type PolicyConfig struct {
	AdminOnlySessionDelete bool
}

// ExportConfig gates the attendance register export endpoints.
type ExportConfig struct {
	Enabled bool
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

	cfg.Auth = AuthConfig{
		TokenSecret: v.GetString("AUTH_TOKEN_SECRET"),
		TokenExpiry: parseDuration(v.GetString("AUTH_TOKEN_EXPIRY"), 12*time.Hour),
		Issuer:      v.GetString("AUTH_TOKEN_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sheets = SheetsConfig{
		WebAppURL:      v.GetString("SHEETS_WEBAPP_URL"),
		SimulatedDelay: parseDuration(v.GetString("SHEETS_SIMULATED_DELAY"), time.Second),
	}

	cfg.Sync = SyncConfig{
		Workers:    v.GetInt("SYNC_WORKERS"),
		BufferSize: v.GetInt("SYNC_BUFFER_SIZE"),
	}

	cfg.Policy = PolicyConfig{
		AdminOnlySessionDelete: v.GetBool("ADMIN_ONLY_SESSION_DELETE"),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_REGISTER_EXPORT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("AUTH_TOKEN_SECRET", "dev_secret")
	v.SetDefault("AUTH_TOKEN_EXPIRY", "12h")
	v.SetDefault("AUTH_TOKEN_ISSUER", "attendance-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SHEETS_WEBAPP_URL", "")
	v.SetDefault("SHEETS_SIMULATED_DELAY", "1s")

	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("SYNC_BUFFER_SIZE", 8)

	v.SetDefault("ADMIN_ONLY_SESSION_DELETE", false)
	v.SetDefault("ENABLE_REGISTER_EXPORT", true)
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
