package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   bool
		errMsg    []string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid full config",
			yaml: `
coupang:
  access_key: ak
  secret_key: sk
  sub_id: ch1
  base_url: http://localhost:9090
  timeout: 5s
  digest_encoding: base64
  retry:
    max_attempts: 5
    base_delay: 2s
    step: 1s
  rate_limit:
    per_second: 2
    burst: 3
    daily_limit: 1000
categories:
  - id: "1001"
    label: 전자기기
    slug: electronics
  - id: "1010"
    label: 반려동물
    slug: pets
fetch:
  disable_featured: true
  category_limit: 50
  pacing:
    mode: token_bucket
    per_second: 1
    burst: 2
history:
  backend: postgres
database:
  host: db
  name: deals
  user: deals
  password: secret
server:
  port: 9000
schedule:
  interval: 1h
notifications:
  min_discount: 30
  discord:
    enabled: true
    webhook_url: https://discord.example.com/webhook
metrics:
  textfile_path: /var/lib/node_exporter/coupang.prom
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "ak", cfg.Coupang.AccessKey)
				assert.Equal(t, "ch1", cfg.Coupang.SubID)
				assert.Equal(t, "http://localhost:9090", cfg.Coupang.BaseURL)
				assert.Equal(t, 5*time.Second, cfg.Coupang.Timeout)
				assert.Equal(t, "base64", cfg.Coupang.DigestEncoding)
				assert.Equal(t, 5, cfg.Coupang.Retry.MaxAttempts)
				assert.Equal(t, 2*time.Second, cfg.Coupang.Retry.BaseDelay)
				assert.InDelta(t, 2.0, cfg.Coupang.RateLimit.PerSecond, 0.001)
				assert.Equal(t, int64(1000), cfg.Coupang.RateLimit.DailyLimit)
				require.Len(t, cfg.Categories, 2)
				assert.Equal(t, "pets", cfg.Categories[1].Slug)
				assert.True(t, cfg.Fetch.DisableFeatured)
				assert.Equal(t, 50, cfg.Fetch.CategoryLimit)
				assert.Equal(t, "token_bucket", cfg.Fetch.Pacing.Mode)
				assert.Equal(t, "postgres", cfg.History.Backend)
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, time.Hour, cfg.Schedule.Interval)
				assert.Equal(t, 30, cfg.Notifications.MinDiscount)
				assert.True(t, cfg.Notifications.Discord.Enabled)
				assert.Equal(t, "/var/lib/node_exporter/coupang.prom", cfg.Metrics.TextfilePath)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
coupang:
  access_key: ${TEST_CP_ACCESS}
  secret_key: ${TEST_CP_SECRET}
`,
			envVars: map[string]string{
				"TEST_CP_ACCESS": "env-access",
				"TEST_CP_SECRET": "env-secret",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "env-access", cfg.Coupang.AccessKey)
				assert.Equal(t, "env-secret", cfg.Coupang.SecretKey)
			},
		},
		{
			name: "credential env vars fill empty keys",
			yaml: `
coupang:
  sub_id: from-file
`,
			envVars: map[string]string{
				EnvAccessKey: "env-ak",
				EnvSecretKey: "env-sk",
				EnvSubID:     "env-sub",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "env-ak", cfg.Coupang.AccessKey)
				assert.Equal(t, "env-sk", cfg.Coupang.SecretKey)
				assert.Equal(t, "from-file", cfg.Coupang.SubID)
			},
		},
		{
			name: "defaults applied",
			yaml: `
logging:
  level: warn
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://api-gateway.coupang.com", cfg.Coupang.BaseURL)
				assert.Equal(t, 30*time.Second, cfg.Coupang.Timeout)
				assert.Equal(t, "hex", cfg.Coupang.DigestEncoding)
				assert.Equal(t, 3, cfg.Coupang.Retry.MaxAttempts)
				assert.Equal(t, time.Second, cfg.Coupang.Retry.BaseDelay)
				assert.Equal(t, 2*time.Second, cfg.Coupang.Retry.Step)
				assert.Equal(t, int64(0), cfg.Coupang.RateLimit.DailyLimit)
				assert.Equal(t, DefaultCategories(), cfg.Categories)
				assert.False(t, cfg.Fetch.DisableFeatured)
				assert.Equal(t, 20, cfg.Fetch.CategoryLimit)
				assert.Equal(t, "fixed", cfg.Fetch.Pacing.Mode)
				assert.Equal(t, 1500*time.Millisecond, cfg.Fetch.Pacing.Delay)
				assert.Equal(t, "file", cfg.History.Backend)
				assert.Equal(t, "data/price_history.json", cfg.History.Path)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 6*time.Hour, cfg.Schedule.Interval)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "unknown pacing mode",
			yaml: `
fetch:
  pacing:
    mode: bursty
`,
			wantErr: true,
			errMsg:  []string{"fetch.pacing.mode must be one of"},
		},
		{
			name: "unknown digest encoding",
			yaml: `
coupang:
  digest_encoding: base32
`,
			wantErr: true,
			errMsg:  []string{"coupang.digest_encoding must be one of"},
		},
		{
			name: "postgres backend requires database fields",
			yaml: `
history:
  backend: postgres
`,
			wantErr: true,
			errMsg: []string{
				"database.host is required",
				"database.name is required",
				"database.user is required",
			},
		},
		{
			name: "unknown history backend",
			yaml: `
history:
  backend: redis
`,
			wantErr: true,
			errMsg:  []string{"history.backend must be one of"},
		},
		{
			name: "discord enabled without webhook",
			yaml: `
notifications:
  discord:
    enabled: true
`,
			wantErr: true,
			errMsg:  []string{"notifications.discord.webhook_url is required"},
		},
		{
			name: "category missing label and bad slug",
			yaml: `
categories:
  - id: "1001"
    slug: Electronics
`,
			wantErr: true,
			errMsg: []string{
				`categories[0].label failed "required" validation`,
				`categories[0].slug failed "lowercase" validation`,
			},
		},
		{
			name: "duplicate category id",
			yaml: `
categories:
  - {id: "1001", label: a, slug: a}
  - {id: "1001", label: b, slug: b}
`,
			wantErr: true,
			errMsg:  []string{`duplicate id "1001"`},
		},
		{
			name: "min discount out of range",
			yaml: `
notifications:
  min_discount: 120
`,
			wantErr: true,
			errMsg:  []string{`notifications.min_discount failed "max=100" validation`},
		},
		{
			name: "negative daily limit",
			yaml: `
coupang:
  rate_limit:
    daily_limit: -5
`,
			wantErr: true,
			errMsg:  []string{"daily_limit must not be negative"},
		},
		{
			name:    "invalid YAML",
			yaml:    "coupang: [",
			wantErr: true,
			errMsg:  []string{"parsing config YAML"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvAccessKey, EnvSecretKey, EnvSubID} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(writeConfig(t, tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				for _, msg := range tt.errMsg {
					assert.Contains(t, err.Error(), msg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_NoFileUsesEnv(t *testing.T) {
	t.Setenv(EnvAccessKey, "ak")
	t.Setenv(EnvSecretKey, "sk")
	t.Setenv(EnvSubID, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ak", cfg.Coupang.AccessKey)
	assert.Equal(t, "sk", cfg.Coupang.SecretKey)
	assert.Len(t, cfg.Categories, 8)

	creds := cfg.Coupang.Credentials()
	require.NoError(t, creds.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_DOTENV_KEY=from-dotenv\nTEST_DOTENV_SET=from-dotenv\n"), 0o600))

	t.Setenv("TEST_DOTENV_SET", "already-set")
	// Registers cleanup for a variable LoadDotEnv will set.
	t.Setenv("TEST_DOTENV_KEY", "")
	require.NoError(t, os.Unsetenv("TEST_DOTENV_KEY"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv("TEST_DOTENV_KEY"))
	assert.Equal(t, "already-set", os.Getenv("TEST_DOTENV_SET"))
}

func TestRetryConfig_Policy(t *testing.T) {
	t.Parallel()

	p := RetryConfig{MaxAttempts: 4, BaseDelay: time.Second, Step: 3 * time.Second}.Policy()
	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, 7*time.Second, p.Delay(2))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "deals",
		User:     "deals",
		Password: "secret",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 dbname=deals user=deals password=secret sslmode=disable",
		db.DSN(),
	)
}
