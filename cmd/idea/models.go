package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/providers/gemini"
	"github.com/ideapartner/ideapartner/pkg/log"
)

var modelsCmd = &cobra.Command{
	Use:          "models",
	Short:        "List Gemini models that support generateContent",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		client, err := gemini.NewClient(ctx, config.NewGeminiConfig(ctx))
		if err != nil {
			return err
		}

		names, err := client.ListModels(ctx)
		if err != nil {
			return err
		}

		log.FromCtx(ctx).Debug().Int("count", len(names)).Msg("listed models")
		for _, name := range names {
			marker := " "
			if name == client.ModelName() {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
