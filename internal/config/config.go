package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/nap-audit-cli/internal/match"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig   `yaml:"store" mapstructure:"store"`
	Places PlacesConfig  `yaml:"places" mapstructure:"places"`
	Yext   YextConfig    `yaml:"yext" mapstructure:"yext"`
	Scrape ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Match  match.Options `yaml:"match" mapstructure:"match"`
	Batch  BatchConfig   `yaml:"batch" mapstructure:"batch"`
	SMTP   SMTPConfig    `yaml:"smtp" mapstructure:"smtp"`
	Server ServerConfig  `yaml:"server" mapstructure:"server"`
	Log    LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// YextConfig holds Yext Knowledge API settings.
type YextConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ScrapeConfig configures website scraping.
type ScrapeConfig struct {
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// SMTPConfig configures report email delivery.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NAPAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "nap-audit.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("places.rate_limit", 10.0)
	v.SetDefault("yext.rate_limit", 5.0)
	v.SetDefault("yext.threshold", 0.7)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.cache_ttl_hours", 24)
	v.SetDefault("smtp.port", 587)

	defaults := match.DefaultOptions()
	v.SetDefault("match.threshold", defaults.Threshold)
	v.SetDefault("match.containment_score", defaults.ContainmentScore)
	v.SetDefault("match.url_override_score", defaults.URLOverrideScore)
	v.SetDefault("match.url_path_gate", defaults.URLPathGate)
	v.SetDefault("match.region_bonus", defaults.RegionBonus)
	v.SetDefault("match.region_penalty", defaults.RegionPenalty)
	v.SetDefault("match.jaccard_weight", defaults.JaccardWeight)
	v.SetDefault("match.ratio_weight", defaults.RatioWeight)
	v.SetDefault("match.stop_words", defaults.StopWords)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Brand rules are structured data viper defaults can't express; absent
	// configuration keeps the built-in rules.
	if cfg.Match.BrandRules == nil {
		cfg.Match.BrandRules = defaults.BrandRules
	}

	return &cfg, nil
}

// Validate checks the fields a command mode depends on. Mode is one of
// "audit", "batch", or "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	checkCommon := func() {
		if c.Places.Key == "" {
			problems = append(problems, "places.key is required")
		}
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
			problems = append(problems, "batch.max_concurrent must be between 1 and 50")
		}
		if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
			problems = append(problems, "match.threshold must be between 0 and 1")
		}
		if c.Yext.Threshold < 0 || c.Yext.Threshold > 1 {
			problems = append(problems, "yext.threshold must be between 0 and 1")
		}
	}

	switch mode {
	case "audit", "batch":
		checkCommon()
	case "serve":
		checkCommon()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
