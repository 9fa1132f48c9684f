package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	t.Run("json outside dev", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Setup("PROD", "debug", &buf)
		logger.Debug().Str("path", "/hierarchy/").Msg("sent")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "debug", line["level"])
		require.Equal(t, "/hierarchy/", line["path"])
	})

	t.Run("console in dev", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Setup("dev", "info", &buf)
		logger.Info().Msg("logged in")
		require.Contains(t, buf.String(), "logged in")
		require.False(t, json.Valid(buf.Bytes()))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := Setup("PROD", "chatty", &buf)
		logger.Debug().Msg("hidden")
		require.Empty(t, buf.String())
		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}
