package cmd

import (
	"fmt"
	"time"

	"emireminder/utils"

	"github.com/spf13/cobra"
)

var (
	tokenRole string
	tokenTTL  time.Duration
)

// Users authenticate elsewhere; this mints tokens for operators and local testing.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a signed bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		token, err := utils.GenerateToken(args[0], tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "role claim, e.g. admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
