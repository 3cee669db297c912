package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is up",
		Long:  "Calls the health endpoint and reports whether the server and its database are ready.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newAPIClient().Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("cannot reach %s: %w", getServerURL(), err)
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), h)
			}
			printHealth(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
