package main

import (
	"github.com/spf13/cobra"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/service/installer"
	"github.com/ideapartner/ideapartner/pkg/log"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Write credentials and prompt files to the runtime directory",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			return err
		}

		serverCfg := config.ServerConfig{PublicBaseURL: state.Env.PublicBaseURL}
		logger.Info().Str("path", runtimePath).Msg("initialized runtime directory")
		logger.Info().Str("webhook_url", serverCfg.WebhookURL()).Msg("register this URL as the LINE webhook")
		logger.Info().Msg("Setup complete! You can now run 'idea start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
