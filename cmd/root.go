package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/config"
	"github.com/meridian-legal/docaudit/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "docaudit",
	Short: "Immigration case file audit pipeline",
	Long:  "Classifies the pages of a scanned case file, extracts fields via Claude, cross-validates documents, and produces a structured audit report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
