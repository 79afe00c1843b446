// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// Environment variables consulted for credentials when the YAML leaves them
// empty.
const (
	EnvAccessKey = "COUPANG_ACCESS_KEY"
	EnvSecretKey = "COUPANG_SECRET_KEY"
	EnvSubID     = "COUPANG_SUB_ID"
)

// Config is the top-level application configuration.
type Config struct {
	Coupang       CoupangConfig       `yaml:"coupang"`
	Categories    []domain.Category   `yaml:"categories"    validate:"dive"`
	Fetch         FetchConfig         `yaml:"fetch"`
	History       HistoryConfig       `yaml:"history"`
	Database      DatabaseConfig      `yaml:"database"`
	Server        ServerConfig        `yaml:"server"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// CoupangConfig defines Partners API settings.
type CoupangConfig struct {
	AccessKey      string          `yaml:"access_key"`
	SecretKey      string          `yaml:"secret_key"`
	SubID          string          `yaml:"sub_id"`
	BaseURL        string          `yaml:"base_url"        validate:"omitempty,url"`
	Timeout        time.Duration   `yaml:"timeout"`
	DigestEncoding string          `yaml:"digest_encoding"` // hex, base64
	Retry          RetryConfig     `yaml:"retry"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// Credentials returns the API credentials.
func (c *CoupangConfig) Credentials() coupang.Credentials {
	return coupang.Credentials{
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		SubID:     c.SubID,
	}
}

// RetryConfig defines retry behavior for transient API failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Step        time.Duration `yaml:"step"`
}

// Policy converts the config to a coupang.RetryPolicy.
func (r RetryConfig) Policy() coupang.RetryPolicy {
	return coupang.RetryPolicy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   r.BaseDelay,
		Step:        r.Step,
	}
}

// RateLimitConfig defines Partners API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"` // 0 disables the daily quota
}

// FetchConfig defines what a run fetches and how calls are paced.
type FetchConfig struct {
	DisableFeatured bool          `yaml:"disable_featured"`
	CategoryLimit   int           `yaml:"category_limit"`
	Pacing          PacingConfig  `yaml:"pacing"`
	Output          string        `yaml:"output"`
	RunTimeout      time.Duration `yaml:"run_timeout"`
}

// PacingConfig selects the inter-call pacing policy.
type PacingConfig struct {
	Mode      string        `yaml:"mode"` // fixed, token_bucket, none
	Delay     time.Duration `yaml:"delay"`
	PerSecond float64       `yaml:"per_second"`
	Burst     int           `yaml:"burst"`
}

// HistoryConfig selects the price history backend.
type HistoryConfig struct {
	Backend string `yaml:"backend"` // file, postgres
	Path    string `yaml:"path"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// ServerConfig defines the Echo HTTP server settings used by serve.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ScheduleConfig defines how often serve runs the fetch.
type ScheduleConfig struct {
	Interval       time.Duration `yaml:"interval"`
	SkipInitialRun bool          `yaml:"skip_initial_run"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	MinDiscount int           `yaml:"min_discount" validate:"min=0,max=100"`
	Discord     DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url" validate:"omitempty,url"`
}

// MetricsConfig defines metrics export settings.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultCategories is the category set used when the config names none.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{ID: "1001", Label: "전자기기", Slug: "electronics"},
		{ID: "1002", Label: "패션", Slug: "fashion"},
		{ID: "1003", Label: "화장품", Slug: "beauty"},
		{ID: "1004", Label: "식품", Slug: "food"},
		{ID: "1005", Label: "생활용품", Slug: "living"},
		{ID: "1006", Label: "도서", Slug: "books"},
		{ID: "1007", Label: "스포츠", Slug: "sports"},
		{ID: "1008", Label: "완구", Slug: "toys"},
	}
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. An empty path skips the file and uses
// defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables in the YAML content.
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Coupang.AccessKey, EnvAccessKey)
	setFromEnv(&cfg.Coupang.SecretKey, EnvSecretKey)
	setFromEnv(&cfg.Coupang.SubID, EnvSubID)
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func applyDefaults(cfg *Config) {
	applyCoupangDefaults(&cfg.Coupang)
	applyFetchDefaults(&cfg.Fetch)
	applyHistoryDefaults(&cfg.History)
	applyDatabaseDefaults(&cfg.Database)
	applyServerDefaults(&cfg.Server)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)

	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
}

func applyCoupangDefaults(c *CoupangConfig) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api-gateway.coupang.com"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.DigestEncoding == "" {
		c.DigestEncoding = "hex"
	}
	applyRetryDefaults(&c.Retry)
	applyRateLimitDefaults(&c.RateLimit)
}

func applyRetryDefaults(r *RetryConfig) {
	def := coupang.DefaultRetryPolicy()
	if r.MaxAttempts == 0 {
		r.MaxAttempts = def.MaxAttempts
	}
	if r.BaseDelay == 0 {
		r.BaseDelay = def.BaseDelay
	}
	if r.Step == 0 {
		r.Step = def.Step
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 1.0
	}
	if r.Burst == 0 {
		r.Burst = 1
	}
}

func applyFetchDefaults(f *FetchConfig) {
	if f.CategoryLimit == 0 {
		f.CategoryLimit = 20
	}
	if f.Pacing.Mode == "" {
		f.Pacing.Mode = "fixed"
	}
	if f.Pacing.Delay == 0 {
		f.Pacing.Delay = 1500 * time.Millisecond
	}
	if f.Pacing.PerSecond == 0 {
		f.Pacing.PerSecond = 0.5
	}
	if f.Pacing.Burst == 0 {
		f.Pacing.Burst = 1
	}
	if f.RunTimeout == 0 {
		f.RunTimeout = 15 * time.Minute
	}
}

func applyHistoryDefaults(h *HistoryConfig) {
	if h.Backend == "" {
		h.Backend = "file"
	}
	if h.Path == "" {
		h.Path = "data/price_history.json"
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Interval == 0 {
		s.Interval = 6 * time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateTags(cfg)...)

	switch cfg.Coupang.DigestEncoding {
	case "hex", "base64":
	default:
		errs = append(errs, fmt.Errorf(
			"coupang.digest_encoding must be one of: hex, base64 (got %q)",
			cfg.Coupang.DigestEncoding,
		))
	}
	if cfg.Coupang.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("coupang.retry.max_attempts must be at least 1"))
	}
	if cfg.Coupang.RateLimit.DailyLimit < 0 {
		errs = append(errs, fmt.Errorf("coupang.rate_limit.daily_limit must not be negative"))
	}

	switch cfg.Fetch.Pacing.Mode {
	case "fixed", "token_bucket", "none":
	default:
		errs = append(errs, fmt.Errorf(
			"fetch.pacing.mode must be one of: fixed, token_bucket, none (got %q)",
			cfg.Fetch.Pacing.Mode,
		))
	}

	switch cfg.History.Backend {
	case "file":
	case "postgres":
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required when history.backend is postgres"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when history.backend is postgres"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when history.backend is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"history.backend must be one of: file, postgres (got %q)",
			cfg.History.Backend,
		))
	}

	seen := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("categories: duplicate id %q", c.ID))
		}
		seen[c.ID] = true
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.discord.webhook_url is required when discord is enabled",
		))
	}

	return errors.Join(errs...)
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateTags runs struct-tag validation and reports each failure by its
// YAML path.
func validateTags(cfg *Config) []error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("validation failed: %w", err)}
	}

	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.TrimPrefix(fe.Namespace(), "Config.")
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out = append(out, fmt.Errorf("%s failed %q validation", path, rule))
	}
	return out
}
