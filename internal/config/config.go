package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// WebhookPlaceholder is the value shipped in sample env files. It counts as
// "not configured".
const WebhookPlaceholder = "your-apps-script-webhook-url-here"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Mail      MailConfig      `yaml:"mail"`
	Reminders RemindersConfig `yaml:"reminders"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr returns host:port for net/http.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SheetsConfig points at the spreadsheet that backs enrollments.
type SheetsConfig struct {
	EnrollmentsCSVURL    string `yaml:"enrollments_csv_url"`
	CounselorsCSVURL     string `yaml:"counselors_csv_url"`
	WebhookURL           string `yaml:"webhook_url"`
	FetchTimeoutSeconds  int    `yaml:"fetch_timeout_seconds"`
	SubmitTimeoutSeconds int    `yaml:"submit_timeout_seconds"`
}

// FetchTimeout bounds the enrollments CSV download.
func (c SheetsConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// SubmitTimeout bounds the enrollment submission webhook call.
func (c SheetsConfig) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// WebhookConfigured reports whether a real webhook URL is set.
func (c SheetsConfig) WebhookConfigured() bool {
	u := strings.TrimSpace(c.WebhookURL)
	return u != "" && u != WebhookPlaceholder
}

// MailConfig selects and configures the outbound transport.
type MailConfig struct {
	Provider string     `yaml:"provider"` // smtp | ses
	From     string     `yaml:"from"`
	SMTP     SMTPConfig `yaml:"smtp"`
	SES      SESConfig  `yaml:"ses"`
}

// SenderAddress is the From address: the explicit one, else the SMTP login.
func (c MailConfig) SenderAddress() string {
	if c.From != "" {
		return c.From
	}
	return c.SMTP.User
}

// SMTPConfig holds SMTP relay credentials
type SMTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Pass           string `yaml:"pass"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the dial and session timeout.
func (c SMTPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SESConfig holds AWS SES credentials
type SESConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// RemindersConfig controls the scheduled reminder run.
type RemindersConfig struct {
	IntervalMinutes int    `yaml:"interval_minutes"`
	CronSecret      string `yaml:"cron_secret"`
	LockTTLSeconds  int    `yaml:"lock_ttl_seconds"`
}

// Interval returns the ticker period; zero disables the in-process ticker.
func (c RemindersConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// LockTTL returns how long a run lock may be held.
func (c RemindersConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// DatabaseConfig holds the Postgres DSN
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the Redis URL used for run locks
type RedisConfig struct {
	URL string `yaml:"url"`
}

// ArchiveConfig enables S3 snapshots of each fetched enrollments CSV.
type ArchiveConfig struct {
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
	Prefix   string `yaml:"prefix"`
}

// Enabled reports whether a bucket is configured.
func (c ArchiveConfig) Enabled() bool { return c.S3Bucket != "" }

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads and parses the configuration file. A missing file yields the
// defaults so env-only deployments work.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDerived()
	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Sheets.FetchTimeoutSeconds == 0 {
		cfg.Sheets.FetchTimeoutSeconds = 30
	}
	if cfg.Sheets.SubmitTimeoutSeconds == 0 {
		cfg.Sheets.SubmitTimeoutSeconds = 30
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "smtp"
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 465
	}
	if cfg.Mail.SES.Region == "" {
		cfg.Mail.SES.Region = "ap-south-1"
	}
	if cfg.Reminders.LockTTLSeconds == 0 {
		cfg.Reminders.LockTTLSeconds = 600
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "enrollments"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyDerived fills defaults that follow other settings. It runs after env
// overrides so it sees their final values.
func (cfg *Config) applyDerived() {
	if cfg.Archive.S3Region == "" {
		cfg.Archive.S3Region = cfg.Mail.SES.Region
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDerived()
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setInt := func(dst *int, key string) {
		if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = v
		}
	}

	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Host, "SERVER_HOST")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Sheets.EnrollmentsCSVURL, "ENROLLMENTS_SHEET_CSV_URL")
	setString(&cfg.Sheets.CounselorsCSVURL, "COUNSELORS_SHEET_CSV_URL")
	setString(&cfg.Sheets.WebhookURL, "GOOGLE_SHEETS_WEBHOOK_URL", "NEXT_PUBLIC_GOOGLE_SHEETS_WEBHOOK_URL")

	setString(&cfg.Mail.Provider, "MAIL_PROVIDER")
	setString(&cfg.Mail.From, "SMTP_FROM")
	setString(&cfg.Mail.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.Mail.SMTP.Port, "SMTP_PORT")
	setString(&cfg.Mail.SMTP.User, "SMTP_USER")
	setString(&cfg.Mail.SMTP.Pass, "SMTP_PASS")
	setString(&cfg.Mail.SES.Region, "AWS_SES_REGION")
	setString(&cfg.Mail.SES.AccessKey, "AWS_SES_ACCESS_KEY")
	setString(&cfg.Mail.SES.SecretKey, "AWS_SES_SECRET_KEY")

	setInt(&cfg.Reminders.IntervalMinutes, "REMINDER_INTERVAL_MINUTES")
	setString(&cfg.Reminders.CronSecret, "CRON_SECRET")

	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Archive.S3Bucket, "ARCHIVE_S3_BUCKET")
	setString(&cfg.Archive.S3Region, "ARCHIVE_S3_REGION")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
