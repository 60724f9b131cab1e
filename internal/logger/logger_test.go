package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	l := Noop()
	require.NotNil(t, l)

	// None of these should panic or produce output
	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("one %d", 1)
	l.Info("two %d", 2)
	l.Warn("three %d", 3)
	l.Error("four %d", 4)

	require.Len(t, l.Messages, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "one 1"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "info", Message: "two 2"}, l.Messages[1])
	assert.Equal(t, LogMessage{Level: "warn", Message: "three 3"}, l.Messages[2])
	assert.Equal(t, LogMessage{Level: "error", Message: "four 4"}, l.Messages[3])
}

func TestBufferLoggerHasLevel(t *testing.T) {
	l := NewBufferLogger()
	assert.False(t, l.HasLevel("error"))

	l.Error("boom")
	assert.True(t, l.HasLevel("error"))
	assert.False(t, l.HasLevel("warn"))

	// Levels are recorded lowercase; queries are case-sensitive.
	assert.False(t, l.HasLevel("ERROR"))

	l.Warn("careful")
	assert.True(t, l.HasLevel("warn"))
}

func TestBufferLoggerClear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("a")
	l.Info("b")
	require.Len(t, l.Messages, 2)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestEnvLoggerDebugGated(t *testing.T) {
	// With REMON_DEBUG unset, Debug must be a no-op (no panic, no output
	// captured here; mainly verifying the env check path runs).
	t.Setenv("REMON_DEBUG", "")
	l := NewEnvLogger("[test]")
	l.Debug("hidden")

	t.Setenv("REMON_DEBUG", "1")
	l.Debug("visible")
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	buf := NewBufferLogger()
	SetDefault(buf)
	require.Same(t, Logger(buf), Default())

	Default().Info("routed")
	assert.True(t, buf.HasLevel("info"))
}
