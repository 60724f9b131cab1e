package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/remon-cli/remon/internal/config"
	"github.com/remon-cli/remon/internal/errors"
	"github.com/remon-cli/remon/internal/session"
	"github.com/remon-cli/remon/pkg/sshutil"
)

// dialTimeout bounds the TCP connect and SSH handshake for new sessions.
const dialTimeout = 10 * time.Second

// Handle wraps a command runner as a managed session handle.
type Handle struct {
	runner sshutil.Runner
}

// NewHandle wraps runner for use with a session manager.
func NewHandle(runner sshutil.Runner) *Handle {
	return &Handle{runner: runner}
}

// Run executes a command on the remote.
func (h *Handle) Run(ctx context.Context, cmd string) (sshutil.Result, error) {
	return h.runner.Run(ctx, cmd)
}

// Probe verifies the session is alive by running a trivial command.
func (h *Handle) Probe(ctx context.Context) error {
	res, err := h.runner.Run(ctx, ProbeCommand)
	if err != nil {
		return err
	}
	if res.ExitStatus != 0 {
		return errors.New(errors.ErrSession,
			fmt.Sprintf("Session probe exited with status %d", res.ExitStatus),
			"The connection may be broken - it will be rebuilt on the next attempt").
			WithKind(errors.KindTransient)
	}
	return nil
}

// Close closes the underlying connection.
func (h *Handle) Close() error {
	return h.runner.Close()
}

var _ session.Handle = (*Handle)(nil)

// DialFactory returns a session factory that connects to the configured
// server over SSH. User and port from the config override whatever the
// host string or ~/.ssh/config carry.
func DialFactory(server config.ServerConfig) session.Factory {
	target := dialTarget(server)
	return func(ctx context.Context) (session.Handle, error) {
		client, err := sshutil.Dial(target, dialTimeout)
		if err != nil {
			return nil, err
		}
		return NewHandle(client), nil
	}
}

// dialTarget builds a user@host:port string from the server config.
func dialTarget(server config.ServerConfig) string {
	target := server.Host
	if server.User != "" && !strings.Contains(target, "@") {
		target = server.User + "@" + target
	}
	if server.Port != 0 && server.Port != 22 && !strings.Contains(server.Host, ":") {
		target += ":" + strconv.Itoa(server.Port)
	}
	return target
}
