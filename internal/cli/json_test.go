package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineMode_DefaultValue(t *testing.T) {
	// Reset to default
	oldMode := machineMode
	defer func() { machineMode = oldMode }()

	machineMode = false
	assert.False(t, MachineMode())

	machineMode = true
	assert.True(t, MachineMode())
}

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

	// Verify data content
	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", dataMap["key"])
}

func TestWriteJSONSuccess_ComplexData(t *testing.T) {
	var buf bytes.Buffer

	data := struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Items []string `json:"items"`
	}{
		Name:  "test",
		Count: 42,
		Items: []string{"a", "b", "c"},
	}

	err := WriteJSONSuccess(&buf, data)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.True(t, env.Success)
	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test", dataMap["name"])
	assert.Equal(t, float64(42), dataMap["count"]) // JSON numbers are float64
}

func TestWriteJSONSuccess_NilData(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONSuccess(&buf, nil)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Nil(t, env.Error)
}

func TestWriteJSONError_AllFields(t *testing.T) {
	var buf bytes.Buffer

	details := map[string]string{"source": "forecast"}
	err := WriteJSONError(&buf, ErrCodeSourceUnreachable, "Connection timed out", "Check network connectivity", details)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)

	assert.Equal(t, ErrCodeSourceUnreachable, env.Error.Code)
	assert.Equal(t, "Connection timed out", env.Error.Message)
	assert.Equal(t, "Check network connectivity", env.Error.Suggestion)

	detailsMap, ok := env.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "forecast", detailsMap["source"])
}

func TestWriteJSONError_NoSuggestion(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONError(&buf, ErrCodeUnknown, "Something went wrong", "", nil)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.False(t, env.Success)
	assert.Equal(t, ErrCodeUnknown, env.Error.Code)
	assert.Empty(t, env.Error.Suggestion)
	assert.Nil(t, env.Error.Details)
}

func TestWriteJSONFromError_NilError(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONFromError(&buf, nil)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.False(t, env.Success)
	assert.Nil(t, env.Error)
}

func TestWriteJSONFromError_GenericError(t *testing.T) {
	var buf bytes.Buffer

	goErr := fmt.Errorf("something went wrong")
	err := WriteJSONFromError(&buf, goErr)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeUnknown, env.Error.Code)
	assert.Equal(t, "something went wrong", env.Error.Message)
}

func TestWriteJSONFromError_StructuredError(t *testing.T) {
	var buf bytes.Buffer

	rrErr := errors.New(errors.ErrConfig, "Config file not found", "Run 'storelens init' to create one")
	err := WriteJSONFromError(&buf, rrErr)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeConfigNotFound, env.Error.Code)
	assert.Equal(t, "Config file not found", env.Error.Message)
	assert.Equal(t, "Run 'storelens init' to create one", env.Error.Suggestion)
}

func TestWriteJSONFromError_WrappedStructuredError(t *testing.T) {
	var buf bytes.Buffer

	innerErr := errors.New(errors.ErrChat, "Chat request failed", "Check the chat service")
	wrappedErr := fmt.Errorf("failed to connect: %w", innerErr)
	err := WriteJSONFromError(&buf, wrappedErr)
	require.NoError(t, err)

	var env JSONEnvelope
	err = json.Unmarshal(buf.Bytes(), &env)
	require.NoError(t, err)

	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeChatFailed, env.Error.Code)
}

func TestErrorToJSON_NilReturnsNil(t *testing.T) {
	result := ErrorToJSON(nil)
	assert.Nil(t, result)
}

func TestErrorToJSON_GenericError(t *testing.T) {
	err := fmt.Errorf("generic error message")
	result := ErrorToJSON(err)

	require.NotNil(t, result)
	assert.Equal(t, ErrCodeUnknown, result.Code)
	assert.Equal(t, "generic error message", result.Message)
	assert.Empty(t, result.Suggestion)
}

func TestErrorToJSON_AllInternalErrorCodes(t *testing.T) {
	tests := []struct {
		name         string
		internalCode string
		message      string
		wantCode     string
	}{
		{
			name:         "config not found",
			internalCode: errors.ErrConfig,
			message:      "Config file not found: /tmp/x.yaml",
			wantCode:     ErrCodeConfigNotFound,
		},
		{
			name:         "config invalid",
			internalCode: errors.ErrConfig,
			message:      "api.timeout must be positive",
			wantCode:     ErrCodeConfigInvalid,
		},
		{
			name:         "transport",
			internalCode: errors.ErrTransport,
			message:      "Couldn't reach forecast",
			wantCode:     ErrCodeSourceUnreachable,
		},
		{
			name:         "schema",
			internalCode: errors.ErrSchema,
			message:      "forecast: predicted is not a list",
			wantCode:     ErrCodeBadPayload,
		},
		{
			name:         "chat",
			internalCode: errors.ErrChat,
			message:      "Chat request failed",
			wantCode:     ErrCodeChatFailed,
		},
		{
			name:         "total failure",
			internalCode: errors.ErrTotalFailure,
			message:      "Every widget is unavailable",
			wantCode:     ErrCodeTotalFailure,
		},
		{
			name:         "exec",
			internalCode: errors.ErrExec,
			message:      "Unknown shell",
			wantCode:     ErrCodeCommandFailed,
		},
		{
			name:         "stale is not user facing",
			internalCode: errors.ErrStale,
			message:      "stale result",
			wantCode:     ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ErrorToJSON(errors.New(tt.internalCode, tt.message, ""))
			require.NotNil(t, result)
			assert.Equal(t, tt.wantCode, result.Code)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestErrorToJSON_Details(t *testing.T) {
	err := &detailedError{
		err:     errors.New(errors.ErrTotalFailure, "Every widget is unavailable", "Check the API"),
		details: map[string]int{"total": 8},
	}

	result := ErrorToJSON(err)
	require.NotNil(t, result)
	assert.Equal(t, ErrCodeTotalFailure, result.Code)
	assert.Equal(t, map[string]int{"total": 8}, result.Details)
	assert.Contains(t, err.Error(), "Every widget is unavailable")
}

func TestMapErrorCode_UnknownCode(t *testing.T) {
	assert.Equal(t, ErrCodeUnknown, mapErrorCode("SOMETHING_ELSE", "message"))
}

func TestJSONError_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(JSONError{Code: ErrCodeUnknown, Message: "oops"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "suggestion")
	assert.NotContains(t, string(data), "details")
}

func TestWriteJSONEnvelope_Formatting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]string{"a": "b"}))

	assert.Contains(t, buf.String(), "\n  \"success\": true")
	assert.True(t, buf.Len() > 0 && buf.String()[buf.Len()-1] == '\n')
}

func TestErrorCodes_AreUnique(t *testing.T) {
	codes := []string{
		ErrCodeConfigNotFound,
		ErrCodeConfigInvalid,
		ErrCodeSourceUnreachable,
		ErrCodeBadPayload,
		ErrCodeChatFailed,
		ErrCodeTotalFailure,
		ErrCodeCommandFailed,
		ErrCodeUnknown,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code: %s", code)
		seen[code] = true
		assert.Equal(t, strings.ToUpper(code), code)
	}
}
