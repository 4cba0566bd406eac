package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
	"github.com/ideapartner/ideapartner/internal/service/ui"
)

var checkUserID string

// turnCounter is implemented by stores that can count a user's turns locally.
type turnCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

var storeCheckCmd = &cobra.Command{
	Use:          "store-check",
	Short:        "Write a test turn to the context store and read it back",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		store, closeStore, err := initStore(ctx, appCfg, config.NewMemoryConfig(ctx))
		if err != nil {
			return err
		}
		if closeStore != nil {
			defer closeStore()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "store backend: %s\n", appCfg.StoreBackend)

		snippet, err := checkStore(ctx, store, checkUserID)
		if err != nil {
			fmt.Fprintln(out, ui.FailStyle.Render("FAIL ")+err.Error())
			return err
		}
		fmt.Fprintln(out, ui.OKStyle.Render("OK ")+snippet)

		if counter, ok := store.(turnCounter); ok {
			if n, err := counter.Count(ctx, checkUserID); err == nil {
				fmt.Fprintf(out, "stored turns for %s: %d\n", checkUserID, n)
			}
		}
		return nil
	},
}

func checkStore(ctx context.Context, store core.ContextStore, userID string) (string, error) {
	turn := core.Turn{
		UserID:    userID,
		Input:     "Test Idea (store check)",
		Reply:     "Test Feedback",
		Category:  core.CategoryGeneral,
		Timestamp: time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.SaveTurn(writeCtx, turn); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	snippet, err := store.RecentLookup(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNoContext) {
			return "", errors.New("read: the test turn is not visible yet")
		}
		return "", fmt.Errorf("read: %w", err)
	}
	return snippet, nil
}

func init() {
	storeCheckCmd.Flags().StringVar(&checkUserID, "user", "AdminDebug", "user id to write the test turn under")
	rootCmd.AddCommand(storeCheckCmd)
}
