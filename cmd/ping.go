package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		status, err := client.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend at %s is not reachable: %w", client.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), status.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
