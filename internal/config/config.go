package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Edge       EdgeConfig       `yaml:"edge" mapstructure:"edge"`
	OpenRouter OpenRouterConfig `yaml:"openrouter" mapstructure:"openrouter"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Agents     AgentsConfig     `yaml:"agents" mapstructure:"agents"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EdgeConfig configures the proxy-function client.
type EdgeConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Key         string  `yaml:"key" mapstructure:"key"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // invocations/sec, 0 = unlimited
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// OpenRouterConfig configures the LLM gateway.
type OpenRouterConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Referer       string `yaml:"referer" mapstructure:"referer"`
	CreativeModel string `yaml:"creative_model" mapstructure:"creative_model"`
	AnalysisModel string `yaml:"analysis_model" mapstructure:"analysis_model"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ModelForTask returns the model id to use for a given task kind.
func (c OpenRouterConfig) ModelForTask(task string) string {
	if task == "creative" {
		return c.CreativeModel
	}
	return c.AnalysisModel
}

// ScoringConfig holds the publishability thresholds and safe defaults. These
// ship as configuration rather than constants so editorial tuning does not
// need a rebuild.
type ScoringConfig struct {
	RelevanceThreshold float64 `yaml:"relevance_threshold" mapstructure:"relevance_threshold"`
	PriorityThreshold  float64 `yaml:"priority_threshold" mapstructure:"priority_threshold"`
	QualityThreshold   float64 `yaml:"quality_threshold" mapstructure:"quality_threshold"`
	RelevanceFloor     float64 `yaml:"relevance_floor" mapstructure:"relevance_floor"`
	FallbackScore      float64 `yaml:"fallback_score" mapstructure:"fallback_score"` // used when an AI judge call fails
}

// AgentsConfig holds cross-agent runtime settings.
type AgentsConfig struct {
	MaxContentPerRun int    `yaml:"max_content_per_run" mapstructure:"max_content_per_run"`
	Concurrency      int    `yaml:"concurrency" mapstructure:"concurrency"` // fetch --all fan-out cap
	Timezone         string `yaml:"timezone" mapstructure:"timezone"`
}

// PricingConfig holds per-model gateway token pricing (USD per million).
type PricingConfig struct {
	OpenRouter map[string]ModelPricing `yaml:"openrouter" mapstructure:"openrouter"`
}

// ModelPricing holds per-model token pricing.
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// MonitoringConfig configures the health snapshot and alert webhook.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	CostThresholdUSD     float64 `yaml:"cost_threshold_usd" mapstructure:"cost_threshold_usd"`
	LookbackHours        int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// ServerConfig configures the webhook server.
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
	v.SetEnvPrefix("REPORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "reporter.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("edge.timeout_secs", 30)
	v.SetDefault("edge.rate_limit", 10.0)
	v.SetDefault("edge.rate_burst", 5)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.creative_model", "anthropic/claude-sonnet-4.5")
	v.SetDefault("openrouter.analysis_model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 2000)
	v.SetDefault("scoring.relevance_threshold", 0.7)
	v.SetDefault("scoring.priority_threshold", 0.6)
	v.SetDefault("scoring.quality_threshold", 0.8)
	v.SetDefault("scoring.relevance_floor", 0.3)
	v.SetDefault("scoring.fallback_score", 0.5)
	v.SetDefault("agents.max_content_per_run", 10)
	v.SetDefault("agents.concurrency", 3)
	v.SetDefault("agents.timezone", "Asia/Dubai")
	v.SetDefault("monitoring.failure_rate_threshold", 0.3)
	v.SetDefault("monitoring.cost_threshold_usd", 25.0)
	v.SetDefault("monitoring.lookback_hours", 24)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("pricing.openrouter", map[string]map[string]float64{
		"anthropic/claude-sonnet-4.5": {"input": 3.00, "output": 15.00},
		"openai/gpt-4o-mini":          {"input": 0.15, "output": 0.60},
		"google/gemini-2.5-flash":     {"input": 0.30, "output": 2.50},
	})

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
