package cli

import (
	"time"

	"github.com/remon-cli/remon/internal/collector"
	"github.com/remon-cli/remon/internal/dashboard"
	"github.com/remon-cli/remon/internal/logger"
)

// watchCommand starts the live dashboard. A zero interval falls back to
// the configured polling interval.
func watchCommand(interval time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if interval == 0 {
		interval = cfg.Poll.Interval
	}
	if interval < minWatchInterval {
		interval = minWatchInterval
	}

	coll, err := collector.NewFromConfig(cfg, logger.Default())
	if err != nil {
		return err
	}

	err = dashboard.Run(coll, cfg.Server.Host, interval)

	// Graceful shutdown: close the SSH session
	if closeErr := coll.Close(); err == nil {
		err = closeErr
	}

	return err
}
