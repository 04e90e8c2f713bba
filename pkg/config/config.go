package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Moderation  ModerationConfig  `mapstructure:"moderation"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Local       LocalConfig       `mapstructure:"local"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Redis       RedisConfig       `mapstructure:"redis"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	MetricsPort int      `mapstructure:"metrics_port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	BodyLimitMB int      `mapstructure:"body_limit_mb"`
	// DocsURL is the swagger.json location advertised by the docs UI.
	DocsURL string `mapstructure:"docs_url"`
}

type MetricsConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	EnableLatency       bool `mapstructure:"enable_latency"`
	EnableCategoryFlags bool `mapstructure:"enable_category_flags"`
}

type ModerationConfig struct {
	TextThreshold   float64           `mapstructure:"text_threshold"`
	ImageThreshold  float64           `mapstructure:"image_threshold"`
	BenignLabels    []string          `mapstructure:"benign_labels"`
	CategoryAliases map[string]string `mapstructure:"category_aliases"`
	Timeout         time.Duration     `mapstructure:"timeout"`
}

type ClassifierConfig struct {
	Backend string        `mapstructure:"backend"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures int           `mapstructure:"max_failures"`
}

type HuggingFaceConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type LocalConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	TextModel       string `mapstructure:"text_model"`
	ImageModel      string `mapstructure:"image_model"`
	TargetLabel     string `mapstructure:"target_label"`
	ComplementLabel string `mapstructure:"complement_label"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

var globalConfig Config

// Load reads config.yaml from configPath (falling back to ./config and .),
// overlays environment variables and validates the result. A missing file is
// not an error: defaults and environment are enough to run.
func Load(configPath string) error {
	cfg, err := load(viper.New(), configPath)
	if err != nil {
		return err
	}
	globalConfig = *cfg
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	setDefaultValues(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("huggingface.api_key", "HUGGINGFACE_API_KEY", "HUGGING_FACE_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file config.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.port", 5002)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.body_limit_mb", 10)
	v.SetDefault("server.docs_url", "/swagger.json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_category_flags", true)

	v.SetDefault("moderation.text_threshold", 0.8)
	v.SetDefault("moderation.image_threshold", 0.7)
	v.SetDefault("moderation.benign_labels", []string{"non_toxic"})
	v.SetDefault("moderation.category_aliases", map[string]string{"inappropriate": "inappropriate_content"})
	v.SetDefault("moderation.timeout", 10*time.Second)

	v.SetDefault("classifier.backend", classifier.BackendHuggingFace)
	v.SetDefault("classifier.breaker.timeout", 30*time.Second)
	v.SetDefault("classifier.breaker.max_failures", 5)

	v.SetDefault("huggingface.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("huggingface.api_key", "")
	v.SetDefault("huggingface.text_model", "unitary/toxic-bert")
	v.SetDefault("huggingface.image_model", "microsoft/resnet-50")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "omni-moderation-latest")

	v.SetDefault("local.base_url", "http://localhost:8080")
	v.SetDefault("local.text_model", "toxic-bert")
	v.SetDefault("local.image_model", "resnet-50")
	v.SetDefault("local.target_label", "toxic")
	v.SetDefault("local.complement_label", "non_toxic")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
}

func (c *Config) Validate() error {
	if err := validThreshold("moderation.text_threshold", c.Moderation.TextThreshold); err != nil {
		return err
	}
	if err := validThreshold("moderation.image_threshold", c.Moderation.ImageThreshold); err != nil {
		return err
	}
	switch c.Classifier.Backend {
	case classifier.BackendHuggingFace, classifier.BackendOpenAI, classifier.BackendLocal:
	default:
		return fmt.Errorf("unknown classifier backend %q", c.Classifier.Backend)
	}
	if c.Moderation.Timeout <= 0 {
		return fmt.Errorf("moderation.timeout must be positive, got %s", c.Moderation.Timeout)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB)
	}
	return nil
}

func validThreshold(key string, value float64) error {
	if value <= 0 || value >= 1 {
		return fmt.Errorf("%s must be in (0,1), got %v", key, value)
	}
	return nil
}
