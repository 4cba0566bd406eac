package config

import (
	"context"
	"strings"
	"time"
)

type ServerConfig struct {
	PublicBaseURL string `env:"PUBLIC_BASE_URL,required,notEmpty"`
	Addr          string `env:"HTTP_ADDR" envDefault:":8000"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"static"`
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c := &ServerConfig{}
	mustParse(ctx, c, "server")
	return c
}

// WebhookURL is the address to register in the LINE developer console.
func (c ServerConfig) WebhookURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/callback"
}

type MemoryConfig struct {
	Deadline  time.Duration `env:"MEMORY_DEADLINE" envDefault:"1500ms"`
	MaxTokens int           `env:"MEMORY_MAX_TOKENS" envDefault:"200"`

	// Per-lookup budget for the SQLite store. Notion reads it from NotionConfig.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"1500ms"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	mustParse(ctx, c, "memory")
	return c
}

type PersistConfig struct {
	Workers   int           `env:"PERSIST_WORKERS" envDefault:"2"`
	QueueSize int           `env:"PERSIST_QUEUE" envDefault:"64"`
	Timeout   time.Duration `env:"PERSIST_TIMEOUT" envDefault:"10s"`
}

func NewPersistConfig(ctx context.Context) *PersistConfig {
	c := &PersistConfig{}
	mustParse(ctx, c, "persistence")
	return c
}
