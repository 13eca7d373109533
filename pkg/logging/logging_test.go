package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitForCLI_TextHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, FormatText, &buf)

	Info("runner", "dispatching %s", "t1")
	Warn("runner", "slow test %s", "t2")

	out := buf.String()
	assert.NotContains(t, out, "dispatching")
	assert.Contains(t, out, "slow test t2")
	assert.Contains(t, out, "subsystem=runner")
}

func TestInitForCLI_JSONHandlerCarriesError(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, FormatJSON, &buf)

	Error("sink", errors.New("reporter exploded"), "reporter failed on %s", "TestStarting")

	line := strings.TrimSpace(buf.String())
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "sink", record["subsystem"])
	assert.Equal(t, "reporter exploded", record["error"])
	assert.Equal(t, "reporter failed on TestStarting", record["msg"])
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
