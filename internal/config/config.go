package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	FIRMS     FIRMSConfig     `yaml:"firms" mapstructure:"firms"`
	GFW       GFWConfig       `yaml:"gfw" mapstructure:"gfw"`
	ERDDAP    ERDDAPConfig    `yaml:"erddap" mapstructure:"erddap"`
	GML       GMLConfig       `yaml:"gml" mapstructure:"gml"`
	OpenAQ    OpenAQConfig    `yaml:"openaq" mapstructure:"openaq"`
	Quota     QuotaConfig     `yaml:"quota" mapstructure:"quota"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds inference provider settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// FIRMSConfig holds NASA FIRMS fire-detection API settings.
type FIRMSConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Days    int    `yaml:"days" mapstructure:"days"`
}

// GFWConfig holds Global Forest Watch API settings.
type GFWConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ERDDAPConfig holds NOAA ERDDAP tabledap settings.
type ERDDAPConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	DatasetID string `yaml:"dataset_id" mapstructure:"dataset_id"`
}

// GMLConfig holds NOAA GML FTP settings.
type GMLConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Path string `yaml:"path" mapstructure:"path"`
}

// OpenAQConfig holds OpenAQ API settings.
type OpenAQConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// QuotaConfig bounds AI spend.
type QuotaConfig struct {
	MinIntervalSecs int `yaml:"min_interval_secs" mapstructure:"min_interval_secs"`
	DailyCeiling    int `yaml:"daily_ceiling" mapstructure:"daily_ceiling"`
}

// MinInterval returns the configured spacing as a duration.
func (q QuotaConfig) MinInterval() time.Duration {
	return time.Duration(q.MinIntervalSecs) * time.Second
}

// CacheConfig configures the diagnosis cache.
type CacheConfig struct {
	ValidityMins int `yaml:"validity_mins" mapstructure:"validity_mins"`
}

// Validity returns the configured window as a duration.
func (c CacheConfig) Validity() time.Duration {
	return time.Duration(c.ValidityMins) * time.Minute
}

// SourcesConfig configures the adapter chains.
type SourcesConfig struct {
	TimeoutSecs         int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BreakerThreshold    int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// Timeout returns the per-adapter fetch budget.
func (s SourcesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// BreakerCooldown returns the open-breaker hold time.
func (s SourcesConfig) BreakerCooldown() time.Duration {
	return time.Duration(s.BreakerCooldownSecs) * time.Second
}

// HistoryConfig configures diagnosis persistence.
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("VITALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("firms.base_url", "https://firms.modaps.eosdis.nasa.gov")
	v.SetDefault("firms.days", 7)
	v.SetDefault("gfw.base_url", "https://data-api.globalforestwatch.org")
	v.SetDefault("erddap.base_url", "https://coastwatch.pfeg.noaa.gov/erddap")
	v.SetDefault("erddap.dataset_id", "erdSOCATv2024")
	v.SetDefault("gml.addr", "ftp.gml.noaa.gov:21")
	v.SetDefault("gml.path", "/products/trends/co2/co2_mm_mlo.txt")
	v.SetDefault("openaq.base_url", "https://api.openaq.org")
	v.SetDefault("quota.min_interval_secs", 60)
	v.SetDefault("quota.daily_ceiling", 50)
	v.SetDefault("cache.validity_mins", 60)
	v.SetDefault("sources.timeout_secs", 12)
	v.SetDefault("sources.breaker_threshold", 3)
	v.SetDefault("sources.breaker_cooldown_secs", 120)
	v.SetDefault("history.path", "vitals.db")

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

	return &cfg, nil
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
