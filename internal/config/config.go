package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"habit-planner/internal/bizday"
)

// Config keeps runtime settings for the planner.
type Config struct {
	HTTPAddr       string `mapstructure:"http_addr"`
	DatabaseURL    string `mapstructure:"database_url"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
	DigestTime     string `mapstructure:"digest_time"`
	GenerateTime   string `mapstructure:"generate_time"`
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
}

// BotEnabled reports whether the Telegram surface should run.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from defaults, the optional YAML file at path and
// environment variables, in increasing priority. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database_url", "habit_planner.db")
	v.SetDefault("telegram_token", "")
	v.SetDefault("telegram_chat_id", 0)
	v.SetDefault("digest_time", "21:00")
	v.SetDefault("generate_time", "05:00")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "habit_planner.db"
	}

	if !bizday.ValidClock(cfg.DigestTime) {
		return cfg, fmt.Errorf("digest_time %q must be HH:MM", cfg.DigestTime)
	}
	if !bizday.ValidClock(cfg.GenerateTime) {
		return cfg, fmt.Errorf("generate_time %q must be HH:MM", cfg.GenerateTime)
	}
	if cfg.BotEnabled() && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return cfg, nil
}
