// Package cli defines the cobra command tree for portfolio.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/portfolio/internal/client"
	"github.com/evcraddock/portfolio/internal/logging"
)

var (
	flagFormat  string
	flagServer  string
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio guestbook server and comment client",
		Long:          "Runs the portfolio guestbook comment API and talks to it: list, add and delete comments, check health, or keep a rendered snapshot of the guestbook up to date.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logging.SetupWriter(cmd.ErrOrStderr(), true)
				return
			}
			logging.SetupWriter(io.Discard, false)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "API base URL (default: config or "+defaultServerURL+")")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log client activity to stderr")

	root.AddCommand(
		newServeCmd(),
		newCommentsCmd(),
		newHealthCmd(),
		newWatchCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the comment API.
func newAPIClient() *client.Client {
	return client.New(getServerURL())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
