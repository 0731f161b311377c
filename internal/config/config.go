package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Hookdeck    HookdeckConfig    `mapstructure:"hookdeck"`
	Chargebee   ChargebeeConfig   `mapstructure:"chargebee"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Destination DestinationConfig `mapstructure:"destination"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type StorageConfig struct {
	Driver string       `mapstructure:"driver"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HookdeckConfig struct {
	APIKey string `mapstructure:"api_key"`
	APIURL string `mapstructure:"api_url"`
}

type ChargebeeConfig struct {
	Site   string `mapstructure:"site"`
	APIKey string `mapstructure:"api_key"`
	// APIURL overrides the https://<site>.chargebee.com default, used in tests.
	APIURL string `mapstructure:"api_url"`
}

// WebhookConfig holds the credentials the gateway source requires on inbound
// requests and that our own handler layer verifies in turn.
type WebhookConfig struct {
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SigningSecret string `mapstructure:"signing_secret"`
}

type DestinationConfig struct {
	// BaseURL is the public base of the deployed handler app, required in
	// prod mode. Per-role webhook paths are appended to it.
	BaseURL string `mapstructure:"base_url"`
}

func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("hookbridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/hookbridge")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HOOKBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindOperatorEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindOperatorEnv maps the bare variable names operators already have in
// their shell (and .env files) onto config keys, so no HOOKBRIDGE_ prefix is
// needed for the provisioning credentials.
func bindOperatorEnv() {
	viper.BindEnv("hookdeck.api_key", "HOOKBRIDGE_HOOKDECK_API_KEY", "HOOKDECK_API_KEY")
	viper.BindEnv("chargebee.site", "HOOKBRIDGE_CHARGEBEE_SITE", "CHARGEBEE_SITE")
	viper.BindEnv("chargebee.api_key", "HOOKBRIDGE_CHARGEBEE_API_KEY", "CHARGEBEE_API_KEY")
	viper.BindEnv("webhook.username", "HOOKBRIDGE_WEBHOOK_USERNAME", "WEBHOOK_BASIC_AUTH_USERNAME")
	viper.BindEnv("webhook.password", "HOOKBRIDGE_WEBHOOK_PASSWORD", "WEBHOOK_BASIC_AUTH_PASSWORD")
	viper.BindEnv("webhook.signing_secret", "HOOKBRIDGE_WEBHOOK_SIGNING_SECRET", "WEBHOOK_SIGNING_SECRET")
	viper.BindEnv("destination.base_url", "HOOKBRIDGE_DESTINATION_BASE_URL", "DESTINATION_BASE_URL")
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3030)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite.path", "./data/hookbridge.db")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetDefault("hookdeck.api_url", "https://api.hookdeck.com/2024-03-01")
}

// ValidateProvision checks everything the reconciler needs before it makes a
// single network call. prod additionally requires the public destination base
// URL. Every missing variable is named in the one returned error.
func (c *Config) ValidateProvision(prod bool) error {
	var missing []string
	if c.Hookdeck.APIKey == "" {
		missing = append(missing, "HOOKDECK_API_KEY")
	}
	if c.Chargebee.Site == "" {
		missing = append(missing, "CHARGEBEE_SITE")
	}
	if c.Chargebee.APIKey == "" {
		missing = append(missing, "CHARGEBEE_API_KEY")
	}
	if c.Webhook.Username == "" {
		missing = append(missing, "WEBHOOK_BASIC_AUTH_USERNAME")
	}
	if c.Webhook.Password == "" {
		missing = append(missing, "WEBHOOK_BASIC_AUTH_PASSWORD")
	}
	if prod && c.Destination.BaseURL == "" {
		missing = append(missing, "DESTINATION_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateServe checks what the webhook handler app needs.
func (c *Config) ValidateServe() error {
	var missing []string
	if c.Webhook.Username == "" {
		missing = append(missing, "WEBHOOK_BASIC_AUTH_USERNAME")
	}
	if c.Webhook.Password == "" {
		missing = append(missing, "WEBHOOK_BASIC_AUTH_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
