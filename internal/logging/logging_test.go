package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/internal/config"
)

// ---------------------------------------------------------------------------
// ParseLevel
// ---------------------------------------------------------------------------

func Test_ParseLevel_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: " INFO ", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "Error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func Test_New_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{format: "text", want: "msg=hello"},
		{format: "json", want: `"msg":"hello"`},
		{format: "", want: "msg=hello"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger, closer, err := New(config.LoggingConfig{Level: "info", Format: tt.format}, &buf)
			require.NoError(t, err)
			defer closer.Close()

			logger.Info("hello")
			logger.Debug("hidden")
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "hidden")
		})
	}
}

func Test_New_Invalid(t *testing.T) {
	t.Parallel()
	_, _, err := New(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, _, err = New(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func Test_New_FansOutToFileAndExtra(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sandbox.log")
	var primary, extra bytes.Buffer

	logger, closer, err := New(
		config.LoggingConfig{Level: "debug", Format: "text", File: path},
		&primary,
		slog.NewTextHandler(&extra, nil),
	)
	require.NoError(t, err)

	logger.Info("guild seeded", "guild", "sandbox")
	require.NoError(t, closer.Close())

	assert.Contains(t, primary.String(), "guild seeded")
	assert.Contains(t, extra.String(), "guild=sandbox")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"guild":"sandbox"`), "file log = %s", data)
}
