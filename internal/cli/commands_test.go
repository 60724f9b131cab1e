package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWatchInterval(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "2s", 2 * time.Second, false},
		{"minutes", "1m", time.Minute, false},
		{"floor value", "500ms", 500 * time.Millisecond, false},
		{"too fast", "100ms", 0, true},
		{"garbage", "fast", 0, true},
		{"bare number", "5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWatchInterval(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCommandRegistration(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"status", "watch", "cache-stats", "init", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
}

// freshRootCmd builds an isolated root for completion tests so generated
// scripts don't depend on package state.
func freshRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remon",
		Short: "Remote server monitoring from your terminal",
	}
}

func TestCompletionBashGeneration(t *testing.T) {
	cmd := freshRootCmd()

	var buf bytes.Buffer
	err := cmd.GenBashCompletion(&buf)

	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "# bash completion for remon")
	assert.Contains(t, output, "complete -o default -F __start_remon remon")
}

func TestCompletionZshGeneration(t *testing.T) {
	cmd := freshRootCmd()

	var buf bytes.Buffer
	err := cmd.GenZshCompletion(&buf)

	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "#compdef remon")
}

func TestCompletionFishGeneration(t *testing.T) {
	cmd := freshRootCmd()

	var buf bytes.Buffer
	err := cmd.GenFishCompletion(&buf, true)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "remon")
}
