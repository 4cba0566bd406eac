package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/pkg/log"
	"github.com/ideapartner/ideapartner/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the webhook server and background workers",
	Long:  `Loads .env, connects to Gemini and the context store, and serves the LINE webhook until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}

		appCfg := config.NewAppConfig(ctx)
		logger.Info().Str("version", core.AppVersion).Str("store", appCfg.StoreBackend).Msg("starting ideapartner")

		services := NewServices(ctx, appCfg)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services, appCfg.ShutdownTimeout)
		logger.Info().Msg("ideapartner has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
