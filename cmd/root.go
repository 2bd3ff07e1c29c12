package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/breachcase/breachwatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "breachwatch",
	Short: "Security-breach news monitoring pipeline",
	Long:  "Polls security news feeds, classifies and extracts breach reports via Claude, deduplicates against known incidents, and maintains a breach database with per-incident update timelines.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
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
