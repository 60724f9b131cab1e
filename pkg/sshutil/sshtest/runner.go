// Package sshtest provides an in-memory Runner for testing SSH-dependent
// code without real connections.
package sshtest

import (
	"context"
	stderrors "errors"
	"regexp"
	"sync"

	"github.com/remon-cli/remon/pkg/sshutil"
)

// Response is a canned result for a command pattern.
type Response struct {
	Stdout     string
	Stderr     string
	ExitStatus int
	Err        error
}

// FakeRunner satisfies sshutil.Runner with scripted responses. Commands
// are matched first exactly, then against registered regexp patterns.
type FakeRunner struct {
	mu        sync.Mutex
	exact     map[string]Response
	patterns  []patternResponse
	calls     []string
	closed    bool
	defaultRe Response
	hasDef    bool
}

type patternResponse struct {
	re   *regexp.Regexp
	resp Response
}

// NewFakeRunner creates an empty FakeRunner. Unmatched commands fail
// with an error unless a default response is set.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{exact: make(map[string]Response)}
}

// Respond registers an exact-match response for cmd.
func (f *FakeRunner) Respond(cmd string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[cmd] = resp
}

// RespondPattern registers a regexp-matched response.
func (f *FakeRunner) RespondPattern(pattern string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, patternResponse{re: regexp.MustCompile(pattern), resp: resp})
}

// RespondDefault registers the response for any unmatched command.
func (f *FakeRunner) RespondDefault(resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultRe = resp
	f.hasDef = true
}

// Run returns the scripted response for cmd.
func (f *FakeRunner) Run(ctx context.Context, cmd string) (sshutil.Result, error) {
	if err := ctx.Err(); err != nil {
		return sshutil.Result{ExitStatus: -1}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return sshutil.Result{ExitStatus: -1}, stderrors.New("runner is closed")
	}
	f.calls = append(f.calls, cmd)

	resp, ok := f.exact[cmd]
	if !ok {
		for _, p := range f.patterns {
			if p.re.MatchString(cmd) {
				resp, ok = p.resp, true
				break
			}
		}
	}
	if !ok {
		if !f.hasDef {
			return sshutil.Result{ExitStatus: -1}, stderrors.New("no response configured for: " + cmd)
		}
		resp = f.defaultRe
	}

	return sshutil.Result{
		ExitStatus: resp.ExitStatus,
		Stdout:     resp.Stdout,
		Stderr:     resp.Stderr,
	}, resp.Err
}

// Close marks the runner closed; further Run calls fail.
func (f *FakeRunner) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Calls returns the commands run so far, in order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Closed reports whether Close was called.
func (f *FakeRunner) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var _ sshutil.Runner = (*FakeRunner)(nil)
