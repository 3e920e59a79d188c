package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models that can be selected",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			resp, err := newClient().ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}
			table := cfg.Table()
			fmt.Fprintf(out, "%-40s %-12s %s\n", "ID", "PROVIDER", "ALLOWED")
			fmt.Fprintln(out, "─────────────────────────────────────────────────────────────")
			for _, m := range resp.Models {
				allowed := "no"
				if table.Allows(m.ID) {
					allowed = "yes"
				}
				fmt.Fprintf(out, "%-40s %-12s %s\n", truncate(m.ID, 40), m.Provider, allowed)
			}
			return nil
		}

		ctrl, err := newController()
		if err != nil {
			return err
		}
		opts := ctrl.LoadCatalog(cmd.Context())
		if len(opts) == 0 {
			fmt.Fprintln(out, "No models available.")
			return nil
		}
		fmt.Fprintf(out, "%-40s %s\n", "MODEL", "LABEL")
		fmt.Fprintln(out, "─────────────────────────────────────────────────────────────")
		for _, o := range opts {
			fmt.Fprintf(out, "%-40s %s\n", o.Value, o.Label)
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().Bool("raw", false, "show the unfiltered backend catalog")
	rootCmd.AddCommand(modelsCmd)
}
