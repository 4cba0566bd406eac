package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ideapartner/ideapartner/pkg/log"
)

const (
	StoreNotion = "notion"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	RuntimePath string `env:"IDEA_RUNTIME_PATH" envDefault:".ideapartner"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`

	// Context store backend: "notion" or "sqlite".
	StoreBackend string `env:"STORE_BACKEND" envDefault:"notion"`

	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Strip markdown from LINE replies.
	ReplyPlainText bool `env:"REPLY_PLAIN_TEXT" envDefault:"false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	mustParse(ctx, c, "app")
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "ideapartner.db")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}

// mustParse aborts startup when a required variable is missing or malformed.
func mustParse(ctx context.Context, c any, name string) {
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msgf("failed to parse %s config", name)
	}
}
