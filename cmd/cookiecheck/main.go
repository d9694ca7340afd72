package main

import (
	"fmt"
	"os"

	"github.com/layer-3/cookiecheck/internal/config"
	"github.com/layer-3/cookiecheck/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cookiecheck",
	Short: "Verify LinkedIn session cookies",
	Long: `cookiecheck decides whether a pair of LinkedIn session cookies still
represents a logged-in user, and if so who that user is.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log, err = logger.New(logger.Options{
			Level:   cfg.Log.Level,
			File:    cfg.Log.File,
			Console: cfg.Log.Console,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
