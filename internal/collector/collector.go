package collector

import (
	"context"
	"strings"
	"time"

	"github.com/remon-cli/remon/internal/cache"
	"github.com/remon-cli/remon/internal/config"
	"github.com/remon-cli/remon/internal/errors"
	"github.com/remon-cli/remon/internal/logger"
	"github.com/remon-cli/remon/internal/rates"
	"github.com/remon-cli/remon/internal/session"
	"github.com/remon-cli/remon/pkg/sshutil"
)

// Cache keys for slow-changing results.
const (
	diskCacheKey      = "disk:usage"
	containerCacheKey = "docker:ps"
)

// Slow-changing sections are served from cache between refreshes.
const (
	diskCacheTTL      = 5 * time.Minute
	containerCacheTTL = time.Minute
)

// Rate tracker keys. Network interfaces use "net.<iface>.rx" / ".tx".
const (
	rateKeyCPUBusy  = "cpu.busy"
	rateKeyCPUTotal = "cpu.total"
)

// commandRunner is the capability the collector needs from a session handle.
type commandRunner interface {
	Run(ctx context.Context, cmd string) (sshutil.Result, error)
}

// Options configures a Collector.
type Options struct {
	// Session controls the managed SSH session lifecycle.
	Session session.Config

	// CacheMaxSize caps the result cache in bytes. 0 uses the default.
	CacheMaxSize int64

	// CacheCleanupInterval is how often expired cache entries are swept.
	// 0 uses the default.
	CacheCleanupInterval time.Duration

	// CommandTimeout bounds each batched metrics command. 0 means no limit
	// beyond the caller's context.
	CommandTimeout time.Duration

	// Logger receives diagnostics. Nil means no logging.
	Logger logger.Logger
}

// Collector gathers system metrics from a single remote server.
// It owns its session manager, result cache, and rate tracker, so
// independent collectors never share connection or counter state.
type Collector struct {
	sessions *session.Manager
	cache    *cache.Store
	tracker  *rates.Tracker
	timeout  time.Duration
	log      logger.Logger

	now func() time.Time
}

// New creates a collector that acquires sessions from factory.
func New(factory session.Factory, opts Options) (*Collector, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	mgr, err := session.NewManager(factory, opts.Session, log)
	if err != nil {
		return nil, err
	}

	return &Collector{
		sessions: mgr,
		cache:    cache.New(opts.CacheMaxSize, opts.CacheCleanupInterval, log),
		tracker:  rates.NewTracker(),
		timeout:  opts.CommandTimeout,
		log:      log,
		now:      time.Now,
	}, nil
}

// NewFromConfig creates a collector for the configured server.
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Collector, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return New(DialFactory(cfg.Server), Options{
		Session: session.Config{
			SessionTimeout: cfg.Session.Timeout,
			MaxRetries:     cfg.Session.MaxRetries,
			RetryDelay:     cfg.Session.RetryDelay,
			MaxRetryDelay:  cfg.Session.MaxRetryDelay,
		},
		CacheMaxSize:         cfg.Cache.MaxSizeBytes,
		CacheCleanupInterval: cfg.Cache.CleanupInterval,
		CommandTimeout:       cfg.Poll.CommandTimeout,
		Logger:               log,
	})
}

// Collect runs one metrics cycle and returns the snapshot.
// A broken session is rebuilt and the command retried; individual
// sections that fail to parse degrade to cached or empty values
// rather than failing the cycle.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	var res sshutil.Result
	err := c.sessions.ExecuteWithRetry(ctx, func(ctx context.Context, h session.Handle) error {
		runner, ok := h.(commandRunner)
		if !ok {
			return errors.New(errors.ErrExec,
				"Session handle cannot execute commands",
				"This is unexpected - please report it.")
		}

		runCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		r, err := runner.Run(runCtx, MetricsCommand())
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Metrics collection failed",
			"Check the server is reachable and try again")
	}

	return c.parseSnapshot(res.Stdout), nil
}

// parseSnapshot splits the batched output into sections and parses each
// one defensively.
func (c *Collector) parseSnapshot(output string) *Snapshot {
	now := c.now()
	snap := &Snapshot{CollectedAt: now}

	sections := strings.Split(output, SectionSeparator+"\n")
	section := func(i int) string {
		if i >= len(sections) {
			return ""
		}
		return strings.TrimSpace(sections[i])
	}

	// Sections: 0=/proc/stat 1=/proc/loadavg 2=/proc/meminfo
	//           3=/proc/net/dev 4=/proc/uptime 5=df 6=docker ps
	if ticks, err := parseCPUTicks(section(0)); err != nil {
		c.log.Warn("cpu section unparseable: %v", err)
	} else {
		snap.CPU.Cores = ticks.cores
		snap.CPU.UsagePercent = c.cpuPercent(ticks, now)
	}

	if loadAvg, err := parseLoadAvg(section(1)); err != nil {
		c.log.Warn("loadavg section unparseable: %v", err)
	} else {
		snap.CPU.LoadAvg = loadAvg
	}

	if mem, err := parseMemInfo(section(2)); err != nil {
		c.log.Warn("meminfo section unparseable: %v", err)
	} else {
		snap.Memory = mem
	}

	if ifaces, err := parseNetDev(section(3)); err != nil {
		c.log.Warn("netdev section unparseable: %v", err)
	} else {
		snap.Network = c.networkRates(ifaces, now)
	}

	if uptime, err := parseUptime(section(4)); err != nil {
		c.log.Warn("uptime section unparseable: %v", err)
	} else {
		snap.Uptime = uptime
	}

	snap.Disks = c.cachedDisks(section(5))
	snap.Containers = c.cachedContainers(section(6))

	return snap
}

// cpuPercent computes instantaneous CPU usage from the busy and total
// tick rates. The first observation has no baseline and reports 0.
func (c *Collector) cpuPercent(ticks cpuTicks, now time.Time) float64 {
	busy := c.tracker.Observe(rateKeyCPUBusy, float64(ticks.busy), now)
	total := c.tracker.Observe(rateKeyCPUTotal, float64(ticks.total), now)
	if total.Rate <= 0 {
		return 0
	}
	pct := busy.Rate / total.Rate * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// networkRates fills in per-second byte rates from counter deltas.
func (c *Collector) networkRates(ifaces []Interface, now time.Time) []Interface {
	for i := range ifaces {
		rx := c.tracker.Observe("net."+ifaces[i].Name+".rx", float64(ifaces[i].RxBytes), now)
		tx := c.tracker.Observe("net."+ifaces[i].Name+".tx", float64(ifaces[i].TxBytes), now)
		ifaces[i].RxBytesPerSec = rx.Rate
		ifaces[i].TxBytesPerSec = tx.Rate
	}
	return ifaces
}

// cachedDisks parses the df section, falling back to the cached
// inventory when the section is missing or malformed.
func (c *Collector) cachedDisks(section string) []Disk {
	if section != "" {
		disks, err := parseDiskFree(section)
		if err == nil {
			c.cache.Set(diskCacheKey, disks, diskCacheTTL, cache.PriorityMedium)
			return disks
		}
		c.log.Warn("df section unparseable: %v", err)
	}

	if v, ok := c.cache.Get(diskCacheKey); ok {
		if disks, ok := v.([]Disk); ok {
			return disks
		}
	}
	return nil
}

// cachedContainers serves the container listing from cache, refreshing
// it from the docker ps section when the cached value expires. A
// malformed section degrades to no containers instead of failing.
func (c *Collector) cachedContainers(section string) []Container {
	v := c.cache.GetWithFallback(containerCacheKey, func() (interface{}, error) {
		return parseContainers(section)
	}, containerCacheTTL, cache.PriorityLow)

	if containers, ok := v.([]Container); ok {
		return containers
	}
	return nil
}

// CacheStats returns statistics for the collector's result cache.
func (c *Collector) CacheStats() cache.Stats {
	return c.cache.GetStats()
}

// InvalidateCache drops cached results matching the key prefix and
// returns how many entries were removed.
func (c *Collector) InvalidateCache(prefix string) int {
	return c.cache.InvalidateByPrefix(prefix)
}

// SessionState reports the managed session's lifecycle state.
func (c *Collector) SessionState() session.State {
	return c.sessions.State()
}

// Rebuilds reports how many times the session has been rebuilt.
func (c *Collector) Rebuilds() int64 {
	return c.sessions.Rebuilds()
}

// Close tears down the managed session. Safe to call more than once.
func (c *Collector) Close() error {
	return c.sessions.Close()
}
