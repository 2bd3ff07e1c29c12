package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	Anthropic      AnthropicConfig      `yaml:"anthropic" mapstructure:"anthropic"`
	Feeds          FeedsConfig          `yaml:"feeds" mapstructure:"feeds"`
	Classification ClassificationConfig `yaml:"classification" mapstructure:"classification"`
	Match          MatchConfig          `yaml:"match" mapstructure:"match"`
	Decision       DecisionConfig       `yaml:"decision" mapstructure:"decision"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key                     string `yaml:"key" mapstructure:"key"`
	Model                   string `yaml:"model" mapstructure:"model"`
	MaxTokens               int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	ClassificationMaxTokens int64  `yaml:"classification_max_tokens" mapstructure:"classification_max_tokens"`
	TimeoutSecs             int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries              int    `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerMinute       int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// FeedSource describes one syndicated news source.
type FeedSource struct {
	Key  string `yaml:"key" mapstructure:"key"`
	Name string `yaml:"name" mapstructure:"name"`
	URL  string `yaml:"url" mapstructure:"url"`
}

// FeedsConfig configures feed ingestion.
type FeedsConfig struct {
	Sources       []FeedSource `yaml:"sources" mapstructure:"sources"`
	LookbackHours int          `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	TimeoutSecs   int          `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxWorkers    int          `yaml:"max_workers" mapstructure:"max_workers"`
}

// ClassificationConfig configures the stage-1 breach classification gate.
type ClassificationConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// MatchConfig configures fuzzy name matching and structural comparison.
type MatchConfig struct {
	// InBatchThreshold gates the in-run identity index short-circuit.
	InBatchThreshold float64 `yaml:"inbatch_threshold" mapstructure:"inbatch_threshold"`
	// CandidateThreshold is the wide-net pre-filter against stored breaches.
	CandidateThreshold float64 `yaml:"candidate_threshold" mapstructure:"candidate_threshold"`
	// ScaleTolerance is the relative difference under which two
	// records-affected counts are considered matching.
	ScaleTolerance float64 `yaml:"scale_tolerance" mapstructure:"scale_tolerance"`
}

// DecisionConfig configures the three-way update decision engine.
type DecisionConfig struct {
	UpdateConfidenceThreshold float64 `yaml:"update_confidence_threshold" mapstructure:"update_confidence_threshold"`
	MaxCandidateContext       int     `yaml:"max_candidate_context" mapstructure:"max_candidate_context"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BREACHWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("anthropic.classification_max_tokens", 300)
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("anthropic.max_retries", 3)
	v.SetDefault("anthropic.requests_per_minute", 60)
	v.SetDefault("feeds.lookback_hours", 48)
	v.SetDefault("feeds.timeout_secs", 30)
	v.SetDefault("feeds.max_workers", 10)
	v.SetDefault("classification.enabled", true)
	v.SetDefault("classification.threshold", 0.6)
	v.SetDefault("match.inbatch_threshold", 0.85)
	v.SetDefault("match.candidate_threshold", 0.6)
	v.SetDefault("match.scale_tolerance", 0.10)
	v.SetDefault("decision.update_confidence_threshold", 0.7)
	v.SetDefault("decision.max_candidate_context", 50)

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

// Validate rejects threshold values that would make a run nonsensical.
// Violations are fatal at startup, before any article is processed.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		val  float64
	}{
		{"classification.threshold", c.Classification.Threshold},
		{"match.inbatch_threshold", c.Match.InBatchThreshold},
		{"match.candidate_threshold", c.Match.CandidateThreshold},
		{"decision.update_confidence_threshold", c.Decision.UpdateConfidenceThreshold},
	}
	for _, chk := range checks {
		if chk.val < 0 || chk.val > 1 {
			return eris.New(fmt.Sprintf("config: %s must be within [0,1], got %v", chk.name, chk.val))
		}
	}
	if c.Match.ScaleTolerance <= 0 || c.Match.ScaleTolerance >= 1 {
		return eris.New(fmt.Sprintf("config: match.scale_tolerance must be within (0,1), got %v", c.Match.ScaleTolerance))
	}
	if c.Feeds.LookbackHours <= 0 {
		return eris.New(fmt.Sprintf("config: feeds.lookback_hours must be positive, got %d", c.Feeds.LookbackHours))
	}
	if c.Decision.MaxCandidateContext <= 0 {
		return eris.New(fmt.Sprintf("config: decision.max_candidate_context must be positive, got %d", c.Decision.MaxCandidateContext))
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

// DefaultFeedSources returns the feed set used when none is configured.
func DefaultFeedSources() []FeedSource {
	return []FeedSource{
		{Key: "bleepingcomputer", Name: "BleepingComputer", URL: "https://www.bleepingcomputer.com/feed/"},
		{Key: "thehackernews", Name: "The Hacker News", URL: "https://thehackernews.com/feeds/posts/default"},
		{Key: "databreachtoday", Name: "DataBreachToday", URL: "https://www.databreachtoday.co.uk/rss-feeds"},
		{Key: "krebsonsecurity", Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/"},
		{Key: "helpnetsecurity", Name: "HelpNet Security", URL: "https://www.helpnetsecurity.com/feed"},
		{Key: "ncsc_uk", Name: "NCSC UK", URL: "https://www.ncsc.gov.uk/api/1/services/v1/all-rss-feed.xml"},
		{Key: "checkpoint", Name: "Check Point Research", URL: "https://research.checkpoint.com/feed"},
		{Key: "haveibeenpwned", Name: "Have I Been Pwned", URL: "https://feeds.feedburner.com/HaveIBeenPwnedLatestBreaches"},
	}
}
