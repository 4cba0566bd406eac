package config

import (
	"context"
	"time"
)

// LineConfig holds the LINE Messaging API channel credentials.
type LineConfig struct {
	ChannelSecret string `env:"LINE_CHANNEL_SECRET,required,notEmpty"`
	AccessToken   string `env:"LINE_CHANNEL_ACCESS_TOKEN,required,notEmpty"`
}

func NewLineConfig(ctx context.Context) *LineConfig {
	c := &LineConfig{}
	mustParse(ctx, c, "LINE")
	return c
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY,required,notEmpty"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-flash-latest"`
}

func NewGeminiConfig(ctx context.Context) *GeminiConfig {
	c := &GeminiConfig{}
	mustParse(ctx, c, "Gemini")
	return c
}

type NotionConfig struct {
	APIKey     string        `env:"NOTION_API_KEY,required,notEmpty"`
	DatabaseID string        `env:"NOTION_DATABASE_ID,required,notEmpty"`
	BaseURL    string        `env:"NOTION_BASE_URL" envDefault:"https://api.notion.com"`
	Version    string        `env:"NOTION_VERSION" envDefault:"2022-06-28"`
	Timeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"1500ms"`
}

func NewNotionConfig(ctx context.Context) *NotionConfig {
	c := &NotionConfig{}
	mustParse(ctx, c, "Notion")
	return c
}

type TelegramConfig struct {
	Token   string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	OwnerID int64  `env:"TELEGRAM_OWNER_ID"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	mustParse(ctx, c, "Telegram")
	return c
}
