package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/remon-cli/remon/internal/config"
	"github.com/remon-cli/remon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInitConfig(t *testing.T) {
	cfg, err := buildInitConfig(initAnswers{
		Host:     "plexbox",
		User:     "admin",
		Port:     "2222",
		Interval: "5s",
	})

	require.NoError(t, err)
	assert.Equal(t, "plexbox", cfg.Server.Host)
	assert.Equal(t, "admin", cfg.Server.User)
	assert.Equal(t, 2222, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
}

func TestBuildInitConfigDefaults(t *testing.T) {
	cfg, err := buildInitConfig(initAnswers{Host: "plexbox"})

	require.NoError(t, err)
	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Server.Port, cfg.Server.Port)
	assert.Equal(t, defaults.Poll.Interval, cfg.Poll.Interval)
	assert.Equal(t, defaults.Cache.MaxSizeBytes, cfg.Cache.MaxSizeBytes)
}

func TestBuildInitConfigTrimsWhitespace(t *testing.T) {
	cfg, err := buildInitConfig(initAnswers{Host: "  plexbox  ", User: " admin "})

	require.NoError(t, err)
	assert.Equal(t, "plexbox", cfg.Server.Host)
	assert.Equal(t, "admin", cfg.Server.User)
}

func TestBuildInitConfigRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		answers initAnswers
	}{
		{"empty host", initAnswers{Host: ""}},
		{"bad port", initAnswers{Host: "plexbox", Port: "not-a-port"}},
		{"interval too fast", initAnswers{Host: "plexbox", Interval: "10ms"}},
		{"bad interval", initAnswers{Host: "plexbox", Interval: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildInitConfig(tt.answers)
			assert.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestProbeTarget(t *testing.T) {
	tests := []struct {
		name   string
		server config.ServerConfig
		want   string
	}{
		{"bare host", config.ServerConfig{Host: "plexbox"}, "plexbox"},
		{"with user", config.ServerConfig{Host: "plexbox", User: "admin"}, "admin@plexbox"},
		{"user already in host", config.ServerConfig{Host: "root@plexbox", User: "admin"}, "root@plexbox"},
		{"custom port", config.ServerConfig{Host: "plexbox", Port: 2222}, "plexbox:2222"},
		{"default port omitted", config.ServerConfig{Host: "plexbox", Port: 22}, "plexbox"},
		{"host with port keeps it", config.ServerConfig{Host: "plexbox:2200", Port: 2222}, "plexbox:2200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, probeTarget(tt.server))
		})
	}
}

func TestValidatePortAnswer(t *testing.T) {
	assert.NoError(t, validatePortAnswer(""))
	assert.NoError(t, validatePortAnswer("22"))
	assert.NoError(t, validatePortAnswer(" 2222 "))
	assert.Error(t, validatePortAnswer("0"))
	assert.Error(t, validatePortAnswer("70000"))
	assert.Error(t, validatePortAnswer("abc"))
}

func TestValidateIntervalAnswer(t *testing.T) {
	assert.NoError(t, validateIntervalAnswer(""))
	assert.NoError(t, validateIntervalAnswer("2s"))
	assert.Error(t, validateIntervalAnswer("100ms"))
	assert.Error(t, validateIntervalAnswer("whenever"))
}

func TestInitNonInteractiveRequiresHost(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	err = Init(InitOptions{NonInteractive: true})
	assert.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestInitNonInteractiveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	existing := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(existing, []byte("version: 1\n"), 0644))

	err = Init(InitOptions{Host: "plexbox", NonInteractive: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
