package cmd

import (
	"fmt"
	"os"

	"emireminder/config"
	"emireminder/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "emireminder",
	Short:   "EMI and bill reminder service",
	Long:    `emireminder tracks recurring bills and delivers reminders over push, SMS and WhatsApp before they fall due.`,
	Version: Version,
	// Bare invocation runs the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig reads configuration and initializes the global logger from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, err
	}
	utils.InitializeLogger()
	if _, err := cfg.Location(); err != nil {
		utils.GetLogger().Warn("Reminder timezone unavailable, falling back to IST", zap.Error(err))
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
