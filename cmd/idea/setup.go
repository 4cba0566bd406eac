package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/internal/providers/gemini"
	"github.com/ideapartner/ideapartner/internal/providers/notion"
	"github.com/ideapartner/ideapartner/internal/service/dispatch"
	"github.com/ideapartner/ideapartner/internal/service/installer"
	"github.com/ideapartner/ideapartner/internal/service/memory"
	"github.com/ideapartner/ideapartner/internal/service/persist"
	"github.com/ideapartner/ideapartner/internal/service/reply"
	"github.com/ideapartner/ideapartner/internal/service/vision"
	"github.com/ideapartner/ideapartner/internal/storage/sqlite"
	"github.com/ideapartner/ideapartner/internal/transport/line"
	"github.com/ideapartner/ideapartner/internal/transport/telegram"
	"github.com/ideapartner/ideapartner/pkg/log"
	"github.com/ideapartner/ideapartner/pkg/srv"
)

// NewServices builds everything `idea start` runs. Services shut down in
// reverse order, so the store closes last after the persister drained.
func NewServices(ctx context.Context, appCfg *config.AppConfig) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	lineCfg := config.NewLineConfig(ctx)
	serverCfg := config.NewServerConfig(ctx)
	memoryCfg := config.NewMemoryConfig(ctx)
	persistCfg := config.NewPersistConfig(ctx)

	// 1. Context store
	store, closeStore, err := initStore(ctx, appCfg, memoryCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize context store")
	}
	if closeStore != nil {
		services = append(services, srv.Cleanup(closeStore))
	}

	// 2. Model
	model, err := gemini.NewClient(ctx, config.NewGeminiConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Gemini client")
	}
	logger.Info().Str("model", model.ModelName()).Msg("using Gemini model")

	// 3. Background persistence
	persister := persist.NewPersister(store, persistCfg)
	services = append(services, persister)

	// 4. Pipelines
	runtimePath := appCfg.GetRuntimePath()
	dispatcher := dispatch.NewDispatcher(
		memory.NewAggregator(store, memoryCfg),
		reply.NewGenerator(model, readPrompt(ctx, filepath.Join(runtimePath, installer.SystemPromptFile))),
		vision.NewHandler(model, readPrompt(ctx, filepath.Join(runtimePath, installer.VisionPromptFile))),
		persister,
	)

	// 5. Transports
	transports, err := initTransports(ctx, appCfg, lineCfg, serverCfg, dispatcher)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

// initStore returns the configured context store and, for stores that hold
// resources, a close function.
func initStore(ctx context.Context, cfg *config.AppConfig, memoryCfg *config.MemoryConfig) (core.ContextStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreNotion, "":
		store, err := notion.NewStore(config.NewNotionConfig(ctx))
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StoreSQLite:
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewTurnsRepo(db, memoryCfg.StoreTimeout), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func initTransports(
	ctx context.Context,
	appCfg *config.AppConfig,
	lineCfg *config.LineConfig,
	serverCfg *config.ServerConfig,
	dispatcher *dispatch.Dispatcher,
) ([]srv.Service, error) {
	var services []srv.Service

	messenger, err := line.NewMessenger(lineCfg)
	if err != nil {
		return nil, err
	}
	server, err := line.NewServer(serverCfg, lineCfg, appCfg, messenger, dispatcher)
	if err != nil {
		return nil, err
	}
	services = append(services, server)

	if appCfg.IsTelegramSelected() {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), dispatcher)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

// initEnv loads .env from the runtime directory, then from the working
// directory. Variables already set in the environment win.
func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)

	for _, envFile := range []string{filepath.Join(runtimePath, ".env"), ".env"} {
		if _, err := os.Stat(envFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}

		if err := godotenv.Load(envFile); err != nil {
			logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
			return err
		}
		logger.Debug().Str("path", envFile).Msg("loaded .env file")
	}
	return nil
}

// readPrompt returns the prompt override at path, or "" to keep the built-in one.
func readPrompt(ctx context.Context, path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	log.FromCtx(ctx).Info().Str("path", path).Msg("using prompt override")
	return string(content)
}
