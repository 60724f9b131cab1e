// Package session owns a single reusable handle to an external stateful
// resource (an SSH client, a Docker endpoint). The manager lazily builds
// the handle on first use, rebuilds it when it goes stale or fails, and
// serializes every lifecycle transition so there are never two live
// handles and never two rebuilds in flight.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/remon-cli/remon/internal/errors"
	"github.com/remon-cli/remon/internal/logger"
)

// ErrClosed is returned by operations on a closed manager. Closed is
// terminal: subsequent GetClient calls fail fast without network I/O.
var ErrClosed = stderrors.New("session manager is closed")

// Handle adapts the external resource to exactly what the manager needs:
// a cheap liveness probe and teardown. No reflection over the underlying
// client, ever.
type Handle interface {
	// Probe verifies the handle is usable (e.g., a trivial listing call).
	Probe(ctx context.Context) error
	// Close releases the handle's resources.
	Close() error
}

// Factory constructs a fresh handle. It is treated as stateless and safe
// to invoke repeatedly.
type Factory func(ctx context.Context) (Handle, error)

// State describes the manager's lifecycle position.
type State int

const (
	// StateUninitialized means no handle has been built yet.
	StateUninitialized State = iota
	// StateActive means a live handle exists and is fresh.
	StateActive
	// StateStale means the handle exists but has aged past the session
	// timeout; the next GetClient rebuilds it.
	StateStale
	// StateClosed is terminal.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateStale:
		return "stale"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Config tunes rebuild and retry behavior.
type Config struct {
	// SessionTimeout is the handle's maximum idle age before it is
	// considered stale and rebuilt. Default 1 hour.
	SessionTimeout time.Duration
	// MaxRetries bounds construction attempts inside one rebuild, and
	// the retry count of ExecuteWithRetry. Default 3.
	MaxRetries int
	// RetryDelay is the base backoff delay; the wait after failed
	// attempt n is RetryDelay * 2^n, capped at MaxRetryDelay. Default 1s.
	RetryDelay time.Duration
	// MaxRetryDelay caps the exponential backoff. Default 30s.
	MaxRetryDelay time.Duration
	// ProbeTimeout bounds each verification probe. Default 10s.
	ProbeTimeout time.Duration
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = time.Hour
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = 30 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	return c
}

// Manager owns at most one live handle. One mutex serializes GetClient,
// rebuild, and Close; the user operation in ExecuteWithRetry runs outside
// the mutex so it never blocks other lifecycle work longer than needed.
type Manager struct {
	mu      sync.Mutex
	factory Factory
	cfg     Config
	log     logger.Logger

	handle   Handle
	lastUsed time.Time
	closed   bool
	rebuilds int64

	// closedCh interrupts in-flight backoff waits; closing it is the one
	// transition taken outside the mutex so Close can cut a wait short.
	closedCh  chan struct{}
	closeOnce sync.Once

	// now is overridable in tests to exercise staleness without sleeping.
	now func() time.Time
}

// NewManager creates a Manager. A nil factory is a configuration error
// and fails immediately; it is never retried.
func NewManager(factory Factory, cfg Config, log logger.Logger) (*Manager, error) {
	if factory == nil {
		return nil, errors.New(errors.ErrConfig,
			"Session manager needs a connection factory",
			"Pass a non-nil Factory when constructing the manager")
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Manager{
		factory:  factory,
		cfg:      cfg.withDefaults(),
		log:      log,
		closedCh: make(chan struct{}),
		now:      time.Now,
	}, nil
}

// GetClient returns a usable handle, rebuilding first if the current one
// is missing or stale. On a closed manager it fails fast with ErrClosed.
// Rebuild exhaustion surfaces as an ErrSession-coded failure.
func (m *Manager) GetClient(ctx context.Context) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.WrapWithCode(ErrClosed, errors.ErrSession,
			"Session manager is closed",
			"Construct a new manager; closed is terminal")
	}

	if m.handle == nil || m.staleLocked() {
		if err := m.rebuildLocked(ctx); err != nil {
			return nil, err
		}
	}

	m.lastUsed = m.now()
	return m.handle, nil
}

// ExecuteWithRetry runs op with a managed handle. On a retryable failure
// the current handle is torn down and rebuilt, then op is retried, up to
// MaxRetries retries; the last error is returned after the ceiling. The
// manager's mutex is not held while op runs.
func (m *Manager) ExecuteWithRetry(ctx context.Context, op func(context.Context, Handle) error) error {
	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		handle, err := m.GetClient(ctx)
		if err != nil {
			return err
		}

		if err = op(ctx, handle); err == nil {
			return nil
		}
		lastErr = err

		if !errors.IsRetryable(err) {
			return err
		}
		if attempt == m.cfg.MaxRetries {
			break
		}

		m.log.Warn("operation failed (attempt %d/%d, %s): %v",
			attempt+1, m.cfg.MaxRetries+1, errors.KindOf(err), err)
		m.invalidate()
	}
	return lastErr
}

// Close tears down the handle and marks the manager closed. It is
// idempotent and safe under concurrent calls, and interrupts any backoff
// wait in a rebuild that started before the close.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() { close(m.closedCh) })

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.teardownLocked()
	return nil
}

// IsConnected reports whether a live, non-closed handle exists.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && m.handle != nil
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return StateClosed
	case m.handle == nil:
		return StateUninitialized
	case m.staleLocked():
		return StateStale
	default:
		return StateActive
	}
}

// Rebuilds returns how many successful rebuilds have occurred.
func (m *Manager) Rebuilds() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuilds
}

// invalidate tears down the current handle so the next GetClient rebuilds.
func (m *Manager) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

// staleLocked reports whether the handle aged past the session timeout.
// Caller holds mu.
func (m *Manager) staleLocked() bool {
	if m.lastUsed.IsZero() {
		return true
	}
	return m.now().Sub(m.lastUsed) >= m.cfg.SessionTimeout
}

// rebuildLocked replaces the handle: tear down the old one (best-effort),
// then attempt construction up to MaxRetries times with capped exponential
// backoff, verifying each candidate with a bounded probe. Exhaustion
// leaves the manager without a handle. Caller holds mu, so rebuilds are
// totally ordered.
func (m *Manager) rebuildLocked(ctx context.Context) error {
	m.teardownLocked()

	var lastErr error
	for attempt := 0; attempt < m.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitBackoff(ctx, attempt-1); err != nil {
				return err
			}
		}

		handle, err := m.factory(ctx)
		if err != nil {
			lastErr = err
			m.log.Warn("connection attempt %d/%d failed (%s): %v",
				attempt+1, m.cfg.MaxRetries, errors.KindOf(err), err)
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
		err = handle.Probe(probeCtx)
		cancel()
		if err != nil {
			lastErr = err
			m.log.Warn("probe of new handle failed (attempt %d/%d, %s): %v",
				attempt+1, m.cfg.MaxRetries, errors.KindOf(err), err)
			if cerr := handle.Close(); cerr != nil {
				m.log.Debug("closing unverified handle: %v", cerr)
			}
			continue
		}

		m.handle = handle
		m.rebuilds++
		m.log.Debug("established new session (rebuild #%d)", m.rebuilds)
		return nil
	}

	return errors.WrapWithCode(lastErr, errors.ErrSession,
		fmt.Sprintf("Couldn't establish a session after %d attempts", m.cfg.MaxRetries),
		"Check the server is reachable and try again")
}

// teardownLocked closes and drops the current handle. Teardown errors are
// logged only; a failed close never blocks a rebuild. Caller holds mu.
func (m *Manager) teardownLocked() {
	if m.handle == nil {
		return
	}
	if err := m.handle.Close(); err != nil {
		m.log.Debug("session teardown: %v", err)
	}
	m.handle = nil
}

// waitBackoff sleeps for the capped exponential delay after failed
// attempt n. The wait is cut short when the manager is closed or the
// context is cancelled.
func (m *Manager) waitBackoff(ctx context.Context, n int) error {
	delay := m.cfg.RetryDelay
	for i := 0; i < n; i++ {
		delay *= 2
		if delay >= m.cfg.MaxRetryDelay {
			delay = m.cfg.MaxRetryDelay
			break
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-m.closedCh:
		return errors.WrapWithCode(ErrClosed, errors.ErrSession,
			"Session manager closed during reconnect backoff", "")
	case <-ctx.Done():
		return ctx.Err()
	}
}
