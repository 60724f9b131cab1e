package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/remon-cli/remon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONSuccess_BasicData(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]string{"key": "value"}
	err := WriteJSONSuccess(&buf, data)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.NotNil(t, env.Data)
}

func TestWriteJSONError_Fields(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONError(&buf, ErrCodeConfigInvalid, "bad port", "Fix the port.", map[string]int{"port": 99999})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeConfigInvalid, env.Error.Code)
	assert.Equal(t, "bad port", env.Error.Message)
	assert.Equal(t, "Fix the port.", env.Error.Suggestion)
	assert.NotNil(t, env.Error.Details)
}

func TestWriteJSONFromError_StructuredError(t *testing.T) {
	var buf bytes.Buffer

	srcErr := errors.New(errors.ErrSession, "Session lost", "Try reconnecting.")
	require.NoError(t, WriteJSONFromError(&buf, srcErr))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeSessionLost, env.Error.Code)
	assert.Equal(t, "Session lost", env.Error.Message)
	assert.Equal(t, "Try reconnecting.", env.Error.Suggestion)
}

func TestErrorToJSON_NilError(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestErrorToJSON_PlainError(t *testing.T) {
	jsonErr := ErrorToJSON(fmt.Errorf("something broke"))

	require.NotNil(t, jsonErr)
	assert.Equal(t, ErrCodeUnknown, jsonErr.Code)
	assert.Equal(t, "something broke", jsonErr.Message)
}

func TestErrorToJSON_CodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *errors.Error
		want string
	}{
		{
			name: "config not found",
			err:  errors.New(errors.ErrConfig, "No config file found", "Run 'remon init'."),
			want: ErrCodeConfigNotFound,
		},
		{
			name: "config invalid",
			err:  errors.New(errors.ErrConfig, "Invalid port", "Use 1-65535."),
			want: ErrCodeConfigInvalid,
		},
		{
			name: "ssh timeout",
			err:  errors.New(errors.ErrSSH, "Dial timed out", "").WithKind(errors.KindTimeout),
			want: ErrCodeSSHTimeout,
		},
		{
			name: "ssh failed",
			err:  errors.New(errors.ErrSSH, "Connection refused", ""),
			want: ErrCodeSSHFailed,
		},
		{
			name: "session lost",
			err:  errors.New(errors.ErrSession, "Session closed", ""),
			want: ErrCodeSessionLost,
		},
		{
			name: "cache",
			err:  errors.New(errors.ErrCache, "Entry too large", ""),
			want: ErrCodeCacheError,
		},
		{
			name: "exec",
			err:  errors.New(errors.ErrExec, "Command failed", ""),
			want: ErrCodeCommandFailed,
		},
		{
			name: "unknown code",
			err:  errors.New("WEIRD", "Mystery", ""),
			want: ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonErr := ErrorToJSON(tt.err)
			require.NotNil(t, jsonErr)
			assert.Equal(t, tt.want, jsonErr.Code)
		})
	}
}
