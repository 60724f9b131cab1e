package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/remon-cli/remon/internal/errors"
)

// Result holds the outcome of one remote command execution.
// A non-zero ExitStatus with a nil error means the command ran but failed.
type Result struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

// Runner executes commands on a remote host. The real Client satisfies
// it; tests use the fake in sshtest.
type Runner interface {
	// Run executes cmd and returns its exit status and captured output.
	// The context bounds the whole execution; expiry classifies as a
	// timeout error, not a fatal one.
	Run(ctx context.Context, cmd string) (Result, error)

	// Close releases the underlying connection.
	Close() error
}

var _ Runner = (*Client)(nil)

// Run executes a command on the remote host, honoring ctx cancellation.
// Session-level failures are classified transient at this boundary so
// retry logic upstream can switch on error kind.
func (c *Client) Run(ctx context.Context, cmd string) (Result, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return Result{ExitStatus: -1}, errors.Transient(err, errors.ErrSSH,
			"Failed to create SSH session")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return Result{ExitStatus: -1}, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
			fmt.Sprintf("Command timed out: %s", cmd), "").
			WithKind(errors.KindTimeout)
	case err = <-done:
	}

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			// The command ran; a non-zero exit is data, not a transport error.
			result.ExitStatus = exitErr.ExitStatus()
			return result, nil
		}
		result.ExitStatus = -1
		return result, errors.Transient(err, errors.ErrExec,
			fmt.Sprintf("Failed to execute command: %s", cmd))
	}

	return result, nil
}
