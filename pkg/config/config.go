package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/xaenox/assistant-bot/internal/assistant"
)

var ErrMissingBotToken = errors.New("bot token is not set (BOT_TOKEN or telegram.token)")

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Assistant  AssistantConfig  `mapstructure:"assistant"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"`
	Debug       bool   `mapstructure:"debug"`
}

type OpenAIConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	AssistantID  string        `mapstructure:"assistant_id"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float64       `mapstructure:"temperature"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

type AssistantConfig struct {
	// Mode is one of auto, disabled, stateless, stateful.
	Mode string `mapstructure:"mode"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type DispatcherConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

const ModeAuto = "auto"

// LoadConfig reads path (when non-empty) and overlays environment variables.
// Credentials may come from BOT_TOKEN/TELEGRAM_TOKEN, OPENAI_API_KEY and
// ASSISTANT_ID. A missing bot token is an error; missing AI credentials are not.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.max_tokens", 0)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.system_prompt", assistant.DefaultSystemPrompt)
	v.SetDefault("openai.poll_interval", assistant.DefaultPollInterval)
	v.SetDefault("openai.run_timeout", assistant.DefaultRunTimeout)
	v.SetDefault("assistant.mode", ModeAuto)
	v.SetDefault("catalog.path", "messages.yaml")
	v.SetDefault("dispatcher.max_concurrency", 16)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("telegram.token", "BOT_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.assistant_id", "ASSISTANT_ID", "OPENAI_ASSISTANT_ID")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	config.Telegram.Token = strings.TrimSpace(config.Telegram.Token)
	config.OpenAI.APIKey = strings.TrimSpace(config.OpenAI.APIKey)
	config.OpenAI.AssistantID = strings.TrimSpace(config.OpenAI.AssistantID)

	if config.Telegram.Token == "" {
		return nil, ErrMissingBotToken
	}

	return &config, nil
}

// ResolveMode picks the assistant mode once at startup. Missing credentials
// downgrade the mode to disabled and are reported as warnings.
func (c *Config) ResolveMode() (assistant.Mode, []string, error) {
	requested := strings.ToLower(strings.TrimSpace(c.Assistant.Mode))
	if requested == "" {
		requested = ModeAuto
	}

	hasKey := c.OpenAI.APIKey != ""
	hasAssistant := c.OpenAI.AssistantID != ""

	var warnings []string
	if !hasKey {
		warnings = append(warnings, "OPENAI_API_KEY is not set; AI features are disabled")
	}

	if requested == ModeAuto {
		switch {
		case hasKey && hasAssistant:
			return assistant.ModeStateful, warnings, nil
		case hasKey:
			warnings = append(warnings, "ASSISTANT_ID is not set; using stateless chat completions")
			return assistant.ModeStateless, warnings, nil
		default:
			return assistant.ModeDisabled, warnings, nil
		}
	}

	mode, err := assistant.ParseMode(requested)
	if err != nil {
		return "", nil, err
	}

	switch mode {
	case assistant.ModeStateful:
		if !hasAssistant {
			warnings = append(warnings, "ASSISTANT_ID is not set; AI features are disabled")
		}
		if !hasKey || !hasAssistant {
			return assistant.ModeDisabled, warnings, nil
		}
	case assistant.ModeStateless:
		if !hasKey {
			return assistant.ModeDisabled, warnings, nil
		}
	case assistant.ModeDisabled:
		return assistant.ModeDisabled, nil, nil
	}
	return mode, warnings, nil
}
