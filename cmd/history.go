package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the interactions recorded by the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().History(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			color := out == os.Stdout && isTerminal(os.Stdout)
			return writeJSON(out, resp, color)
		}

		if len(resp.History) == 0 {
			fmt.Fprintln(out, "No history recorded.")
			return nil
		}
		limit, _ := cmd.Flags().GetInt("limit")
		entries := resp.History
		if limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}
		for _, e := range entries {
			fmt.Fprintf(out, "[%s]\n", e.Model)
			if e.SystemPrompt != "" {
				fmt.Fprintf(out, "  System: %s\n", truncate(e.SystemPrompt, 100))
			}
			fmt.Fprintf(out, "  User:   %s\n", e.UserInput)
			fmt.Fprintf(out, "  Bot:    %s\n\n", e.Response)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Bool("json", false, "print the raw history as JSON")
	historyCmd.Flags().Int("limit", 0, "show only the most recent N entries (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
