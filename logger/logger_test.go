package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesOnlyErrorsToFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	log, err := New(Options{Level: "info", Dir: dir, Console: &console})
	require.NoError(t, err)

	log.Info().Msg("processing link")
	log.Warn().Msg("no listings found")
	log.ForComponent("notifier").Error().Err(errors.New("boom")).Msg("send failed")
	require.NoError(t, log.Close())

	assert.Contains(t, console.String(), "processing link")
	assert.Contains(t, console.String(), "no listings found")
	assert.Contains(t, console.String(), "send failed")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "send failed")
	assert.Contains(t, string(data), "notifier")
	assert.NotContains(t, string(data), "processing link")
	assert.NotContains(t, string(data), "no listings found")
}

func TestLoggerConsoleLevel(t *testing.T) {
	var console bytes.Buffer

	log, err := New(Options{Level: "info", Console: &console})
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
	assert.False(t, log.IsDebugEnabled())
	assert.NoError(t, log.Close())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel("", "production"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("", "development"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn", "production"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("not-a-level", ""))
}
