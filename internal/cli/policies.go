package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPoliciesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List the site policies in effect",
		Long: `List the configured policies that passed validation, in the order they are
matched. When several policies match a URL the last one listed wins.
Invalid policies are dropped and reported in the log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd)
			mgr, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			policies := mgr.Preferences().PolicySet(logger.Named("policy")).Policies()

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, policies)
			}
			if len(policies) == 0 {
				fmt.Fprintln(out, "No policies configured.")
				return nil
			}

			table := NewTable([]string{"#", "Header type", "Header", "Type", "Value"})
			for i, p := range policies {
				table.AddRow([]string{
					fmt.Sprintf("%d", i+1),
					string(p.HeaderType),
					p.Header,
					string(p.Type),
					fmt.Sprintf("%v", p.Value),
				})
			}
			fmt.Fprint(out, table.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}
