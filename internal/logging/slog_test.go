package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newBufLogger(slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "d", "k", 1)
	log.Info(ctx, "i")
	log.Warn(ctx, "w")
	log.Error(ctx, "e")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR"} {
		require.Contains(t, out, want)
	}
}

func TestSlogLogger_WithAddsAttrs(t *testing.T) {
	log, buf := newBufLogger(slog.LevelInfo)

	child := log.With("component", "syncer")
	child.Info(context.Background(), "pass done", "succeeded", 2)

	out := buf.String()
	require.Contains(t, out, "component=syncer")
	require.Contains(t, out, "succeeded=2")
	require.Equal(t, 1, strings.Count(out, "\n"))
}
