package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSystemLogMapsKnownAttrs(t *testing.T) {
	rec := slog.NewRecord(time.Unix(1700000000, 0), slog.LevelError, "donor upsert failed", 0)
	rec.AddAttrs(
		slog.String("user_id", "u-1"),
		slog.String("action", "donor_submission"),
		slog.String("error", "conn reset"),
		slog.Float64("latency_ms", 12.6),
		slog.String("blood_group", "O-"),
	)

	entry := toSystemLog(rec, []slog.Attr{slog.String("request_id", "req-9")})

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "donor upsert failed", entry.Message)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "donor_submission", entry.Action)
	assert.Equal(t, "conn reset", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)
	assert.Equal(t, "req-9", entry.TraceID)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "O-", extra["blood_group"])
}

func TestPGHandlerBuffersOnlyErrors(t *testing.T) {
	h := &PGHandler{shared: &pgBuffer{}}
	logger := slog.New(NewMultiHandler(slog.NewJSONHandler(&bytes.Buffer{}, nil), h))

	logger.Info("ignored")
	logger.With("action", "search").Error("kept")

	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.Equal(t, 1, h.pending())
	assert.Equal(t, "search", h.shared.entries[0].Action)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(m).With("component", "live_feed")

	logger.Info("subscribed")
	assert.Contains(t, a.String(), `"component":"live_feed"`)
	assert.Empty(t, b.String())

	logger.Error("redis down")
	assert.Contains(t, b.String(), "redis down")
}

func TestStdoutHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewStdoutHandler(&buf, "production")).Debug("hidden")
	assert.Empty(t, buf.String())

	slog.New(NewStdoutHandler(&buf, "development")).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
