package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := Init(Config{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("creates log directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")
		err := Init(Config{
			Level:         "info",
			Format:        "json",
			FileEnabled:   true,
			FilePath:      dir,
			RotationSize:  1,
			RetentionDays: 1,
			ServiceName:   "cluefin",
		})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})
}

func TestErrorOnlyWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &errorOnlyWriter{w: &buf}

	n, err := w.WriteLevel(zerolog.WarnLevel, []byte("warn\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Empty(t, buf.String())

	_, err = w.WriteLevel(zerolog.ErrorLevel, []byte("boom\n"))
	require.NoError(t, err)
	assert.Equal(t, "boom\n", buf.String())
}

func TestNewQueryLogger_EmptyPathFallsBack(t *testing.T) {
	l := NewQueryLogger("", 1, 1)
	assert.Equal(t, log.Logger.GetLevel(), l.GetLevel())
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestID(ctx))
	assert.Equal(t, "req-1", RequestID(WithRequestID(ctx, "req-1")))
}
