package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("session settled", "status", "anonymous")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session settled", entry["msg"])
	assert.Equal(t, "shopctl", entry["app"])
	assert.Equal(t, "anonymous", entry["status"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", "")
	require.NoError(t, err)

	logger.Debug("resolving account")
	assert.Contains(t, buf.String(), "msg=\"resolving account\"")
	assert.Contains(t, buf.String(), "app=shopctl")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(nil, "loud", "text")
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(nil, "info", "xml")
	assert.ErrorContains(t, err, "invalid log format")
}
