package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "")

	logger.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewLogger_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development", "")

	logger.Debug("verbose")

	assert.Contains(t, buf.String(), "verbose")
}

func TestNewLogger_LevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development", "warn")

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"debug", true},
		{"INFO", true},
		{" warning ", true},
		{"error", true},
		{"", false},
		{"verbose", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := parseLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
