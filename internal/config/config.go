package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DemoKey is the placeholder credential. A provider configured with it never
// reaches the network.
const DemoKey = "demo_key"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`

	// DebugAddr serves expvar on a separate listener when set.
	DebugAddr string `mapstructure:"debug_addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// RateLimitConfig throttles inbound HTTP clients by IP.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// GatewayConfig controls outbound behaviour towards the vendors.
type GatewayConfig struct {
	// MinInterval is the minimum spacing between two calls to one provider.
	MinInterval time.Duration `mapstructure:"min_interval"`
	// PollInterval is the wait before each status poll of an asynchronous job.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// PollMaxAttempts bounds the number of polls. Zero polls until a terminal status.
	PollMaxAttempts int           `mapstructure:"poll_max_attempts"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// ProviderConfig is the static configuration of one vendor.
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	URL         string  `mapstructure:"url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// Demo reports whether the provider runs on the placeholder credential.
func (p ProviderConfig) Demo() bool {
	return p.APIKey == DemoKey
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Google    ProviderConfig `mapstructure:"google"`
	Replicate ProviderConfig `mapstructure:"replicate"`
}

// Get returns the configuration stored under a vendor key such as "openai".
func (p ProvidersConfig) Get(key string) (ProviderConfig, bool) {
	switch key {
	case "openai":
		return p.OpenAI, true
	case "anthropic":
		return p.Anthropic, true
	case "google":
		return p.Google, true
	case "replicate":
		return p.Replicate, true
	}
	return ProviderConfig{}, false
}

type providerDefault struct {
	key, envPrefix, url, model string
}

var providerDefaults = []providerDefault{
	{"openai", "OPENAI", "https://api.openai.com/v1", "gpt-4"},
	{"anthropic", "ANTHROPIC", "https://api.anthropic.com/v1", "claude-3-sonnet-20240229"},
	{"google", "GOOGLE", "https://generativelanguage.googleapis.com/v1beta", "gemini-pro"},
	{"replicate", "REPLICATE", "https://api.replicate.com/v1", "meta/meta-llama-3-70b-instruct"},
}

// Load reads configuration from an optional config file, a .env file and the
// process environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./internal/config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// vendor credentials keep their conventional flat names
	for _, p := range providerDefaults {
		if err := v.BindEnv("providers."+p.key+".api_key", p.envPrefix+"_API_KEY"); err != nil {
			return nil, err
		}
		if err := v.BindEnv("providers."+p.key+".url", p.envPrefix+"_API_URL"); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if cfg.Gateway.MinInterval <= 0 {
		return nil, fmt.Errorf("gateway.min_interval must be positive, got %s", cfg.Gateway.MinInterval)
	}
	if cfg.Gateway.PollMaxAttempts < 0 {
		return nil, fmt.Errorf("gateway.poll_max_attempts must not be negative, got %d", cfg.Gateway.PollMaxAttempts)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.api_keys", []string{})
	v.SetDefault("server.debug_addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "prompt-gateway")

	v.SetDefault("gateway.min_interval", time.Second)
	v.SetDefault("gateway.poll_interval", time.Second)
	v.SetDefault("gateway.poll_max_attempts", 120)
	v.SetDefault("gateway.request_timeout", 60*time.Second)

	for _, p := range providerDefaults {
		prefix := "providers." + p.key + "."
		v.SetDefault(prefix+"api_key", DemoKey)
		v.SetDefault(prefix+"url", p.url)
		v.SetDefault(prefix+"model", p.model)
		v.SetDefault(prefix+"max_tokens", 1000)
		v.SetDefault(prefix+"temperature", 0.7)
	}
}
