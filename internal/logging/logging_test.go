package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestConfigure_JSONOutput(t *testing.T) {
	defer Configure(Options{})

	var buf bytes.Buffer
	Configure(Options{Level: "debug", JSON: true, Output: &buf})
	L().Debug("resolved chain", "locator", "widgets.WidgetTransform", "steps", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "resolved chain", rec["msg"])
	assert.Equal(t, "widgets.WidgetTransform", rec["locator"])
}

func TestInitFromEnv(t *testing.T) {
	defer Configure(Options{})

	t.Setenv(EnvLevel, "error")
	t.Setenv(EnvJSON, "true")
	InitFromEnv()
	assert.False(t, L().Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, L().Enabled(context.Background(), slog.LevelError))
}
