package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .remon.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Poll    PollConfig    `yaml:"poll" mapstructure:"poll"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
}

// ServerConfig identifies the remote server to monitor.
type ServerConfig struct {
	// Host is the server to connect to. Can be a hostname, user@hostname,
	// or an alias from ~/.ssh/config.
	Host string `yaml:"host" mapstructure:"host"`

	// User overrides the SSH user (optional when Host carries one).
	User string `yaml:"user" mapstructure:"user"`

	// Port overrides the SSH port (default 22).
	Port int `yaml:"port" mapstructure:"port"`
}

// PollConfig controls how often metrics are collected.
type PollConfig struct {
	// Interval between metric collections in watch mode.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// CommandTimeout bounds each remote command execution.
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`
}

// CacheConfig controls the in-memory result cache.
type CacheConfig struct {
	// MaxSizeBytes caps the total estimated size of cached entries.
	MaxSizeBytes int64 `yaml:"max_size_bytes" mapstructure:"max_size_bytes"`

	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// SessionConfig controls the SSH session lifecycle.
type SessionConfig struct {
	// Timeout is how long an idle session stays usable before
	// it is rebuilt on next use.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is how many rebuild attempts follow a failed connection.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// RetryDelay is the base delay between rebuild attempts.
	// The delay doubles on each attempt up to MaxRetryDelay.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`

	// MaxRetryDelay caps the exponential backoff.
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" mapstructure:"max_retry_delay"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server: ServerConfig{
			Port: 22,
		},
		Poll: PollConfig{
			Interval:       2 * time.Second,
			CommandTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			MaxSizeBytes:    50 * 1024 * 1024,
			CleanupInterval: 5 * time.Minute,
		},
		Session: SessionConfig{
			Timeout:       time.Hour,
			MaxRetries:    3,
			RetryDelay:    time.Second,
			MaxRetryDelay: 30 * time.Second,
		},
	}
}
