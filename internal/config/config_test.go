package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  allowed_origins: ["https://trademax.example"]

sheets:
  enrollments_csv_url: "https://sheets.example/enrollments.csv"
  webhook_url: "https://script.example/exec"
  fetch_timeout_seconds: 45

mail:
  from: "admissions@trademax.example"
  smtp:
    host: "smtp.example.com"
    port: 587
    user: "mailer"

reminders:
  interval_minutes: 60
  cron_secret: "s3cret"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"https://trademax.example"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "https://sheets.example/enrollments.csv", cfg.Sheets.EnrollmentsCSVURL)
	assert.Equal(t, 45*time.Second, cfg.Sheets.FetchTimeout())
	assert.Equal(t, 30*time.Second, cfg.Sheets.SubmitTimeout())
	assert.True(t, cfg.Sheets.WebhookConfigured())

	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, 587, cfg.Mail.SMTP.Port)
	assert.Equal(t, "admissions@trademax.example", cfg.Mail.SenderAddress())

	assert.Equal(t, time.Hour, cfg.Reminders.Interval())
	assert.Equal(t, 10*time.Minute, cfg.Reminders.LockTTL())
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Sheets.FetchTimeout())
	assert.Equal(t, 465, cfg.Mail.SMTP.Port)
	assert.Equal(t, time.Duration(0), cfg.Reminders.Interval())
	assert.Equal(t, "enrollments", cfg.Archive.Prefix)
	assert.False(t, cfg.Sheets.WebhookConfigured())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENROLLMENTS_SHEET_CSV_URL", "https://env.example/e.csv")
	t.Setenv("NEXT_PUBLIC_GOOGLE_SHEETS_WEBHOOK_URL", "https://env.example/hook")
	t.Setenv("SMTP_HOST", "smtp.env.example")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "login@trademax.example")
	t.Setenv("CRON_SECRET", "from-env")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/e.csv", cfg.Sheets.EnrollmentsCSVURL)
	assert.Equal(t, "https://env.example/hook", cfg.Sheets.WebhookURL)
	assert.Equal(t, "smtp.env.example", cfg.Mail.SMTP.Host)
	assert.Equal(t, 2525, cfg.Mail.SMTP.Port)
	assert.Equal(t, "login@trademax.example", cfg.Mail.SenderAddress())
	assert.Equal(t, "from-env", cfg.Reminders.CronSecret)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestArchiveRegionFollowsEnvSESRegion(t *testing.T) {
	t.Setenv("AWS_SES_REGION", "eu-west-1")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Mail.SES.Region)
	assert.Equal(t, "eu-west-1", cfg.Archive.S3Region)

	t.Setenv("ARCHIVE_S3_REGION", "us-east-1")
	cfg, err = LoadFromEnv(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Archive.S3Region)

	cfg, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", cfg.Archive.S3Region)
}

func TestWebhookPlaceholderIsUnconfigured(t *testing.T) {
	assert.False(t, SheetsConfig{WebhookURL: WebhookPlaceholder}.WebhookConfigured())
	assert.False(t, SheetsConfig{WebhookURL: "  "}.WebhookConfigured())
	assert.True(t, SheetsConfig{WebhookURL: "https://script.example/exec"}.WebhookConfigured())
}

func TestExampleConfigParses(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, 465, cfg.Mail.SMTP.Port)
	assert.Equal(t, 10*time.Minute, cfg.Reminders.LockTTL())
	require.NotNil(t, cfg.Logging.RedactPII)
	assert.True(t, *cfg.Logging.RedactPII)
	assert.False(t, cfg.Archive.Enabled())
}
