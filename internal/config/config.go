// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string        `yaml:"token" env:"TELEGRAM_TOKEN"`
	Mode       string        `yaml:"mode"` // polling | webhook (future)
	Username   string        `yaml:"username"`
	Workers    int           `yaml:"workers"` // polling workers
	AdminIDs   []int64       `yaml:"admin_ids"`
	RateLimit  int           `yaml:"rate_limit"`  // commands per window per chat, 0 disables
	RateWindow time.Duration `yaml:"rate_window"` // window for rate_limit
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"` // trace|debug|info|warn|error
	Format   string `yaml:"format"`                // json|console
	Sampling bool   `yaml:"sampling"`              // enable sampling in prod
}

type AdminConfig struct {
	Port       int           `yaml:"port" env:"ADMIN_PORT"`
	APIKey     string        `yaml:"api_key" env:"ADMIN_API_KEY"`       // exchanged for a session token, empty disables the API
	JWTSecret  string        `yaml:"jwt_secret" env:"ADMIN_JWT_SECRET"` // signs session tokens, defaults to the api key
	SessionTTL time.Duration `yaml:"session_ttl"`
	Secure     bool          `yaml:"secure_cookie"`
}

type FeedConfig struct {
	CSVURL          string        `yaml:"csv_url" env:"FEED_CSV_URL"`
	PopulationURL   string        `yaml:"population_url" env:"FEED_POPULATION_URL"`
	PopulationRegex string        `yaml:"population_regex"`
	Population      int64         `yaml:"population"` // static fallback when the page cannot be scraped
	Timeout         time.Duration `yaml:"timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	RefreshLead     time.Duration `yaml:"refresh_lead"` // pre-warm the cache this long before the daily trigger
	UserAgent       string        `yaml:"user_agent"`
}

type ProjectionConfig struct {
	Threshold             float64 `yaml:"threshold"`
	DosesPerPerson        float64 `yaml:"doses_per_person"`
	IncludeBoosters       bool    `yaml:"include_boosters"`
	IncludePriorInfection bool    `yaml:"include_prior_infection"`
}

type ScheduleConfig struct {
	Hour         *int          `yaml:"hour"` // nil means the default 20:00 trigger
	Minute       *int          `yaml:"minute"`
	Timezone     string        `yaml:"timezone" env:"SCHEDULE_TIMEZONE"`
	TickInterval time.Duration `yaml:"tick_interval"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" env:"STORE_BACKEND"` // file|redis|postgres|sqlite
	Key     string `yaml:"key"`                         // blob key holding the registry
	Path    string `yaml:"path"`                        // directory for the file backend
	Retries int    `yaml:"retries"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" env:"REDIS_URL"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // lock lease
}

type ChartsConfig struct {
	BaseURL string `yaml:"base_url" env:"CHARTS_BASE_URL"`
}

type I18nConfig struct {
	Lang string `yaml:"lang" env:"BOT_LANG"`
}

type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Log        LogConfig        `yaml:"log"`
	Admin      AdminConfig      `yaml:"admin"`
	Feed       FeedConfig       `yaml:"feed"`
	Projection ProjectionConfig `yaml:"projection"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Store      StoreConfig      `yaml:"store"`
	Database   DatabaseConfig   `yaml:"database"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Redis      RedisConfig      `yaml:"redis"`
	Charts     ChartsConfig     `yaml:"charts"`
	I18n       I18nConfig       `yaml:"i18n"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	defaultCSVURL          = "https://raw.githubusercontent.com/italia/covid19-opendata-vaccini/master/dati/somministrazioni-vaccini-summary-latest.csv"
	defaultPopulationURL   = "https://www.worldometers.info/world-population/italy-population/"
	defaultPopulationRegex = `The current population of <strong>Italy</strong> is <strong>(.*?)</strong>`
	defaultChartsBaseURL   = "https://mttmantovani.s3.eu-central-1.amazonaws.com"
)

// LoadConfig reads the YAML file at path, then applies environment overrides and defaults.
// A missing file is tolerated so the bot can run from environment alone.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.RateWindow <= 0 {
		cfg.Bot.RateWindow = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Admin.JWTSecret == "" {
		cfg.Admin.JWTSecret = cfg.Admin.APIKey
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}

	if cfg.Feed.CSVURL == "" {
		cfg.Feed.CSVURL = defaultCSVURL
	}
	if cfg.Feed.PopulationURL == "" {
		cfg.Feed.PopulationURL = defaultPopulationURL
	}
	if cfg.Feed.PopulationRegex == "" {
		cfg.Feed.PopulationRegex = defaultPopulationRegex
	}
	if cfg.Feed.Timeout <= 0 {
		cfg.Feed.Timeout = 30 * time.Second
	}
	if cfg.Feed.CacheTTL <= 0 {
		cfg.Feed.CacheTTL = 10 * time.Minute
	}
	if cfg.Feed.RefreshLead <= 0 {
		cfg.Feed.RefreshLead = 5 * time.Minute
	}
	if cfg.Feed.UserAgent == "" {
		cfg.Feed.UserAgent = "vaccine-tracker-bot/1.0"
	}

	if cfg.Projection.Threshold <= 0 {
		cfg.Projection.Threshold = 0.9
	}
	if cfg.Projection.DosesPerPerson <= 0 {
		cfg.Projection.DosesPerPerson = 2
	}

	if cfg.Schedule.Hour == nil {
		hour := 20
		cfg.Schedule.Hour = &hour
	}
	if cfg.Schedule.Minute == nil {
		minute := 0
		cfg.Schedule.Minute = &minute
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Europe/Rome"
	}
	if cfg.Schedule.TickInterval <= 0 {
		cfg.Schedule.TickInterval = 30 * time.Second
	}
	if cfg.Schedule.JobTimeout <= 0 {
		cfg.Schedule.JobTimeout = 2 * time.Minute
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if cfg.Store.Key == "" {
		cfg.Store.Key = "subscribed_users.txt"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data"
	}
	if cfg.Store.Retries <= 0 {
		cfg.Store.Retries = 3
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "data/registry.db"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.Charts.BaseURL == "" {
		cfg.Charts.BaseURL = defaultChartsBaseURL
	}
	if cfg.I18n.Lang == "" {
		cfg.I18n.Lang = "en"
	}
}

func (c *Config) validate() error {
	// dev runs without a token deliver through the logging bot
	if c.Bot.Token == "" && !c.Runtime.Dev {
		return errors.New("bot.token is required")
	}
	if h, m := *c.Schedule.Hour, *c.Schedule.Minute; h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("schedule: invalid time %02d:%02d", h, m)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Projection.Threshold > 1 {
		return fmt.Errorf("projection.threshold must be within (0, 1], got %v", c.Projection.Threshold)
	}
	switch c.Store.Backend {
	case "file":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis store")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres store")
		}
	case "sqlite":
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
