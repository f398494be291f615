package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env             string
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	DBType          string
	DBDSN           string
	SQLitePath      string
	DataFile        string
	CORSOrigins     []string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	DevToken          string
}

// Load reads .env (if present), then config.yaml in dir (if present), then
// the process environment. The environment always wins.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8088")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("SQLITE_PATH", "data/babymax.db")
	v.SetDefault("DATA_FILE", "data/babymax.json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_ANON_KEY", "")
	v.SetDefault("SUPABASE_JWT_SECRET", "")
	v.SetDefault("DEV_TOKEN", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:               v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
		DBType:            v.GetString("STORAGE_BACKEND"),
		DBDSN:             v.GetString("POSTGRES_DSN"),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		DataFile:          v.GetString("DATA_FILE"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		SupabaseURL:       v.GetString("SUPABASE_URL"),
		SupabaseAnonKey:   v.GetString("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: v.GetString("SUPABASE_JWT_SECRET"),
		DevToken:          v.GetString("DEV_TOKEN"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "file":
		if c.DataFile == "" {
			return errors.New("DATA_FILE is required when STORAGE_BACKEND=file")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, sqlite, postgres")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.SupabaseJWTSecret == "" && (c.SupabaseURL == "" || c.SupabaseAnonKey == "") {
		return errors.New("SUPABASE_JWT_SECRET or SUPABASE_URL and SUPABASE_ANON_KEY are required outside development")
	}
	return nil
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
