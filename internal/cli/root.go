package cli

import (
	"fmt"
	"os"

	"github.com/remon-cli/remon/internal/logger"
	"github.com/spf13/cobra"
)

// Global flags available on all subcommands.
var (
	configFlag string
	debugFlag  bool
)

// rootCmd is the base command for remon.
var rootCmd = &cobra.Command{
	Use:   "remon",
	Short: "Remote server monitoring from your terminal",
	Long: `remon collects system metrics (CPU, memory, network, disk, containers)
from a remote server over SSH and renders them in your terminal.

Run 'remon init' to create a config, then 'remon status' for a one-shot
snapshot or 'remon watch' for a live dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			os.Setenv("REMON_DEBUG", "1")
			logger.SetDefault(logger.NewEnvLogger("remon"))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// Config returns the --config flag value, empty if unset.
func Config() string {
	return configFlag
}

// Execute runs the root command. Errors are printed to stderr and the
// process exits non-zero; structured errors render their suggestion.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
