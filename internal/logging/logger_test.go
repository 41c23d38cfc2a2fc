package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	require.NotNil(t, log)

	log.Info().Msg("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestNewDefaultWriter(t *testing.T) {
	// nil writer should default to stderr console writer
	log := New(nil, "info")
	require.NotNil(t, log)
}

func TestSubChain(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")
	sub := log.Sub("widget").Sub("chat")

	sub.Info().Msg("deep message")
	output := buf.String()
	assert.Contains(t, output, "deep message")
	assert.Contains(t, output, "chat")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info").With("conn", "abc123")

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"conn":"abc123"`)
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Trace().Msg("trace msg")
	log.Debug().Msg("debug msg")
	log.Info().Msg("info msg")
	assert.Empty(t, buf.String(), "trace, debug and info should be filtered at warn level")

	log.Warn().Msg("warn msg")
	assert.Contains(t, buf.String(), "warn msg")

	buf.Reset()
	log.Error().Msg("error msg")
	assert.Contains(t, buf.String(), "error msg")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"silent", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
		{"INFO", zerolog.InfoLevel}, // case-sensitive, defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestSilentLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "silent")

	log.Debug().Msg("should not appear")
	log.Error().Msg("should not appear")

	assert.Empty(t, buf.String())
}

func TestOpenJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := Open(Options{Level: "info", Style: "json", Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Str("k", "v").Msg("json line")
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "expected raw JSON, got %q", line)
	assert.Contains(t, line, `"k":"v"`)
}

func TestOpenPrettyConsole(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := Open(Options{Level: "info", Style: "pretty", Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("pretty line")
	assert.Contains(t, buf.String(), "pretty line")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestOpenFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "agentchat.log")
	log, closer, err := Open(Options{Level: "debug", File: path, NoConsole: true})
	require.NoError(t, err)

	log.Debug().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestOpenNoOutputs(t *testing.T) {
	log, closer, err := Open(Options{Level: "info", NoConsole: true})
	require.NoError(t, err)
	require.NotNil(t, closer)
	log.Info().Msg("discarded")
	assert.NoError(t, closer.Close())
}
