package cmd

import (
	"fmt"

	"emireminder/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQLite schema or ensure the Mongo indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, _, closeStorage, err := openStorage(cfg, utils.GetLogger())
		if err != nil {
			return err
		}
		closeStorage()
		fmt.Fprintf(cmd.OutOrStdout(), "storage %s is up to date\n", cfg.DBDriver)
		return nil
	},
}
