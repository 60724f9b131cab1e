package config

import (
	"fmt"
	"strings"

	"github.com/remon-cli/remon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but remon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest remon release.")
	}

	if err := validateServer(cfg.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'server' section in your .remon.yaml.")
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'poll' section in your .remon.yaml.")
	}

	if err := validateCache(cfg.Cache); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'cache' section in your .remon.yaml.")
	}

	if err := validateSession(cfg.Session); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'session' section in your .remon.yaml.")
	}

	return nil
}

func validateServer(server ServerConfig) error {
	if strings.TrimSpace(server.Host) == "" {
		return fmt.Errorf("server.host is required - that's the machine remon will monitor")
	}
	if strings.Contains(server.Host, "/") {
		return fmt.Errorf("server.host '%s' contains a path separator - use a hostname, user@hostname, or SSH config alias", server.Host)
	}
	if server.Port < 0 || server.Port > 65535 {
		return fmt.Errorf("server.port %d isn't a valid port - use 1-65535", server.Port)
	}
	return nil
}

func validatePoll(poll PollConfig) error {
	if poll.Interval < 0 {
		return fmt.Errorf("poll.interval can't be negative - that doesn't make sense")
	}
	if poll.CommandTimeout < 0 {
		return fmt.Errorf("poll.command_timeout can't be negative - that doesn't make sense")
	}
	return nil
}

func validateCache(cache CacheConfig) error {
	if cache.MaxSizeBytes < 0 {
		return fmt.Errorf("cache.max_size_bytes can't be negative - that doesn't make sense")
	}
	if cache.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval can't be negative - that doesn't make sense")
	}
	return nil
}

func validateSession(session SessionConfig) error {
	if session.Timeout < 0 {
		return fmt.Errorf("session.timeout can't be negative - that doesn't make sense")
	}
	if session.MaxRetries < 0 {
		return fmt.Errorf("session.max_retries can't be negative - use 0 to disable retries")
	}
	if session.RetryDelay < 0 {
		return fmt.Errorf("session.retry_delay can't be negative - that doesn't make sense")
	}
	if session.MaxRetryDelay > 0 && session.RetryDelay > session.MaxRetryDelay {
		return fmt.Errorf("session.retry_delay (%v) is longer than session.max_retry_delay (%v) - the cap would never apply", session.RetryDelay, session.MaxRetryDelay)
	}
	return nil
}
