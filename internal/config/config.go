package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	TicketSource  string `mapstructure:"TICKET_SOURCE"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisChannel  string `mapstructure:"REDIS_CHANNEL"`

	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ConnectTimeout time.Duration `mapstructure:"CONNECT_TIMEOUT"`

	AnalysisWindowDays int `mapstructure:"ANALYSIS_WINDOW_DAYS"`
	RecentWindowDays   int `mapstructure:"RECENT_WINDOW_DAYS"`
}

// Load reads .env from the working directory when present, then the process
// environment, which wins.
func Load() (Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("TICKET_SOURCE", SourcePostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "support")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CHANNEL", "issue_analysis_complete")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CONNECT_TIMEOUT", "30s")
	v.SetDefault("ANALYSIS_WINDOW_DAYS", 30)
	v.SetDefault("RECENT_WINDOW_DAYS", 7)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.TicketSource = strings.ToLower(strings.TrimSpace(cfg.TicketSource))
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	switch c.TicketSource {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when TICKET_SOURCE=%s", SourcePostgres)
		}
	case SourceMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when TICKET_SOURCE=%s", SourceMongo)
		}
	default:
		return fmt.Errorf("unknown TICKET_SOURCE %q", c.TicketSource)
	}
	if c.AnalysisWindowDays <= 0 || c.RecentWindowDays <= 0 {
		return fmt.Errorf("analysis windows must be positive")
	}
	if c.RecentWindowDays > c.AnalysisWindowDays {
		return fmt.Errorf("RECENT_WINDOW_DAYS (%d) exceeds ANALYSIS_WINDOW_DAYS (%d)", c.RecentWindowDays, c.AnalysisWindowDays)
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
