package observability

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
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFromContextAddsSessionID(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, "info", "json")

	ctx := WithSessionID(context.Background(), "sess_1")
	FromContext(ctx, base).Info("action invoked", "action", "lookup_user")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sess_1", entry["session_id"])
	assert.Equal(t, "lookup_user", entry["action"])
	assert.Equal(t, "action invoked", entry["msg"])
}

func TestFromContextWithoutSession(t *testing.T) {
	base := newLogger(&bytes.Buffer{}, "info", "text")
	assert.Same(t, base, FromContext(context.Background(), base))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "text")

	logger.Info("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
