package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Level: "warn", Format: "json"})
	require.NoError(t, err)

	logger.Info("dropped", "body", "Mars")
	logger.Warn("kept", "body", "Earth")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["message"])
	assert.Equal(t, "Earth", rec["body"])
}

func TestNewWithKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Format: "json"})
	require.NoError(t, err)

	logger.With("run_id", "abc").Info("frame")
	assert.Contains(t, buf.String(), `"run_id":"abc"`)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, Config{Level: "chatty"})
	assert.Error(t, err)

	_, err = New(nil, Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("ignored", "k", 1)
	})
}
