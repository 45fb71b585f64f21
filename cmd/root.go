package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/config"
)

var (
	cfg      *config.Config
	strategy string
)

var rootCmd = &cobra.Command{
	Use:   "contact-finder",
	Short: "Find public contact emails for lists of companies",
	Long:  "Guesses and probes company websites, scans homepages, contact pages, subdomains and social profiles for business emails, and writes one result per company.",
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

func init() {
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "resolution strategy: fast, accurate or hybrid (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
