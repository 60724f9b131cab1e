package cli

import (
	"os"
	"time"

	"github.com/remon-cli/remon/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	statusJSONFlag     bool
	cacheStatsJSONFlag bool
	watchIntervalFlag  string
	initHostFlag       string
	initForce          bool
)

// minWatchInterval is the fastest refresh the watch dashboard allows,
// to avoid hammering the remote server.
const minWatchInterval = 500 * time.Millisecond

// statusCmd collects and prints a single metrics snapshot
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a one-shot metrics snapshot",
	Long: `Connect to the configured server, collect one round of metrics, and
print them.

Includes CPU, memory, network, disk, and container metrics, plus session
and cache statistics for the run.

Examples:
  remon status
  remon status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(statusJSONFlag)
	},
}

// watchCmd starts the live TUI dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live metrics dashboard",
	Long: `Open a full-screen dashboard that refreshes continuously.

Shows CPU, memory, and network sparklines, disk usage, and running
containers. Press q to quit.

Examples:
  remon watch
  remon watch --interval 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var interval time.Duration
		if watchIntervalFlag != "" {
			parsed, err := parseWatchInterval(watchIntervalFlag)
			if err != nil {
				return err
			}
			interval = parsed
		}
		return watchCommand(interval)
	},
}

// cacheStatsCmd reports result-cache statistics
var cacheStatsCmd = &cobra.Command{
	Use:   "cache-stats",
	Short: "Show result cache statistics",
	Long: `Run two collection cycles and report cache usage, hit rate, and
entries by priority.

Two cycles are needed so the second can hit the entries the first one
populated.

Examples:
  remon cache-stats
  remon cache-stats --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cacheStatsCommand(cacheStatsJSONFlag)
	},
}

// initCmd creates a .remon.yaml config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .remon.yaml config file",
	Long: `Interactively create a remon configuration.

Prompts for the SSH target and polling interval, tests the connection,
and writes .remon.yaml in the current directory.

Examples:
  remon init
  remon init --host user@192.168.1.50
  remon init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Host:      initHostFlag,
			Overwrite: initForce,
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for remon.

Examples:
  # Bash
  remon completion bash > /etc/bash_completion.d/remon

  # Zsh
  remon completion zsh > "${fpath[1]}/_remon"

  # Fish
  remon completion fish > ~/.config/fish/completions/remon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

// parseWatchInterval parses the --interval flag and enforces the floor.
func parseWatchInterval(flag string) (time.Duration, error) {
	interval, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			"'"+flag+"' doesn't look like a valid interval",
			"Try something like 2s, 5s, or 1m.")
	}
	if interval < minWatchInterval {
		return 0, errors.New(errors.ErrConfig,
			"Interval '"+flag+"' is too fast",
			"Use 500ms or slower so the server isn't hammered.")
	}
	return interval, nil
}

func init() {
	// status command flags
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "output in JSON format")

	// cache-stats command flags
	cacheStatsCmd.Flags().BoolVar(&cacheStatsJSONFlag, "json", false, "output in JSON format")

	// watch command flags
	watchCmd.Flags().StringVar(&watchIntervalFlag, "interval", "", "refresh interval (e.g., 2s, 5s, 1m); defaults to config")

	// init command flags
	initCmd.Flags().StringVar(&initHostFlag, "host", "", "pre-specify SSH host")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")

	// Register all commands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
