// Package cli implements the lighthouse-mcp command line.
package cli

import (
	"github.com/melih/lighthouse-mcp/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// replaced once the config is loaded
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lighthouse-mcp",
		Short: "MCP gateway for container lifecycle operations",
		Long:  "lighthouse-mcp exposes container listing, lifecycle control and logs as MCP tools over HTTP.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: defaults plus MCP_* environment)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		if log != nil {
			log.Error().Err(err).Msg("command failed")
		}
		return err
	}
	return nil
}
