// Package cli implements the remon command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to a small workflow function for the actual work. The
// general structure separates:
//
//   - Command definitions (cobra.Command instances)
//   - Workflow orchestration (load config, build collector, render)
//   - Implementation details (in other internal packages)
//
// # Command Structure
//
// The root command is "remon" with subcommands for different operations:
//
//	remon status        - One-shot metrics snapshot
//	remon watch         - Live TUI dashboard
//	remon cache-stats   - Result cache statistics
//	remon init          - Create .remon.yaml config
//	remon version       - Version information
//	remon completion    - Shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --debug) are defined on the root command and
// available to all subcommands. Command-specific flags like --json and
// --interval are defined on individual commands.
//
// Commands that talk to the remote server share the same workflow: find
// and load the config, build a collector, run it, and close it. The
// collector owns the SSH session, cache, and rate state for the run.
package cli
