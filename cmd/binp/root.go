package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pscheid92/binp/internal/client"
	"github.com/pscheid92/binp/internal/platform/logging"
)

const (
	serverEnv     = "BINP_SERVER"
	defaultServer = "http://localhost:8080"
)

type rootOptions struct {
	server  string
	verbose bool
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.server)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "binp",
		Short:         "A cli tool for the binp pastebin service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
		},
	}

	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "binp server URL (env "+serverEnv+")")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		newCreateCmd(opts),
		newGetCmd(opts),
		newStyleCmd(),
		newVersionCmd(),
	)
	return cmd
}
