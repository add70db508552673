package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "markdown-cli",
	Short: "Retail markdown analytics",
	Long:  "Computes revenue and sell-through across the four markdown stages (M1-M4) of a product catalog and renders aggregated category, season, and per-product views.",
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
