package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DiscordToken string `env:"TOKEN,required,notEmpty"`
	GuildID      string `env:"GUILD_ID,required,notEmpty"`

	// optional; without it the built-in question bank is used
	DatabaseURL      string        `env:"DATABASE_URL"`
	TriviaCategories []string      `env:"TRIVIA_CATEGORIES" envSeparator:","`
	TriviaTimeout    time.Duration `env:"TRIVIA_TIMEOUT" envDefault:"10s"`

	AckDeadline      time.Duration `env:"ACK_DEADLINE" envDefault:"3s"`
	MaxInFlight      int64         `env:"MAX_IN_FLIGHT" envDefault:"0"`
	UserRatePerSec   float64       `env:"USER_RATE_PER_SEC" envDefault:"0"`
	UserRateBurst    int           `env:"USER_RATE_BURST" envDefault:"3"`
	GatewayMaxOutage time.Duration `env:"GATEWAY_MAX_OUTAGE" envDefault:"2m"`

	TranslateBaseURL    string        `env:"TRANSLATE_BASE_URL" envDefault:"https://translate.googleapis.com/translate_a/single"`
	TranslateTimeout    time.Duration `env:"TRANSLATE_TIMEOUT" envDefault:"2500ms"`
	TranslateRatePerSec float64       `env:"TRANSLATE_RATE_PER_SEC" envDefault:"5"`

	HTTPAddr  string `env:"HTTP_ADDR"` // empty disables the ops server
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TriviaTimeout <= 0 {
		return Config{}, fmt.Errorf("TRIVIA_TIMEOUT must be positive, got %s", cfg.TriviaTimeout)
	}
	if cfg.AckDeadline <= 0 {
		return Config{}, fmt.Errorf("ACK_DEADLINE must be positive, got %s", cfg.AckDeadline)
	}
	if cfg.GatewayMaxOutage <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_MAX_OUTAGE must be positive, got %s", cfg.GatewayMaxOutage)
	}
	if cfg.MaxInFlight < 0 {
		return Config{}, fmt.Errorf("MAX_IN_FLIGHT must not be negative, got %d", cfg.MaxInFlight)
	}
	return cfg, nil
}

// BotToken returns the token with the "Bot " prefix discordgo expects.
func (c Config) BotToken() string {
	t := strings.TrimSpace(c.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(t), "bot ") {
		t = "Bot " + t
	}
	return t
}

func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
