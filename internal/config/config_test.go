package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nap-audit.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
	assert.Equal(t, 30, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, 24, cfg.Scrape.CacheTTLHours)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.InDelta(t, 10.0, cfg.Places.RateLimit, 0.001)
	assert.InDelta(t, 0.7, cfg.Yext.Threshold, 0.001)
	assert.InDelta(t, 0.70, cfg.Match.Threshold, 0.001)
	assert.InDelta(t, 0.90, cfg.Match.ContainmentScore, 0.001)
	assert.InDelta(t, 0.85, cfg.Match.URLOverrideScore, 0.001)
	assert.NotEmpty(t, cfg.Match.StopWords)
	assert.NotEmpty(t, cfg.Match.BrandRules)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
places:
  key: test-places-key
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent: 10
match:
  threshold: 0.8
  brand_rules:
    - pattern: "acme franchise"
      strip_tokens: ["acme", "franchise"]
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-places-key", cfg.Places.Key)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrent)
	assert.InDelta(t, 0.8, cfg.Match.Threshold, 0.001)
	// Configured brand rules replace the built-ins.
	require.Len(t, cfg.Match.BrandRules, 1)
	assert.Equal(t, "acme franchise", cfg.Match.BrandRules[0].Pattern)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.90, cfg.Match.ContainmentScore, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
log:
  level: debug
store:
  path: from-file.db
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("NAPAUDIT_STORE_PATH", "from-env.db")
	t.Setenv("NAPAUDIT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from-env.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("NAPAUDIT_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Places.Key = "test-key"
	cfg.Batch.MaxConcurrent = 5
	cfg.Match.Threshold = 0.7
	cfg.Yext.Threshold = 0.7
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateAudit(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("audit"))

	cfg.Places.Key = ""
	err := cfg.Validate("audit")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "places.key is required")
}

func TestValidateServePort(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrent = 0
	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent must be between 1 and 50")

	cfg.Batch.MaxConcurrent = 51
	err = cfg.Validate("batch")
	assert.Error(t, err)

	cfg.Batch.MaxConcurrent = 50
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateThresholdBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Match.Threshold = 1.5
	err := cfg.Validate("audit")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "match.threshold")

	cfg.Match.Threshold = 0.7
	cfg.Yext.Threshold = -0.1
	err = cfg.Validate("audit")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "yext.threshold")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
