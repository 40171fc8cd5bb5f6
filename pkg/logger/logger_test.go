package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

func TestFromContextAddsRequestID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger.SetupWriter(&buf, "info", "json")

	ctx := logger.WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", logger.RequestID(ctx))
	logger.FromContext(ctx).Info("search completed", "query", "love dogs")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "love dogs", line["query"])
}

func TestSetupLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger.SetupWriter(&buf, "warn", "text")
	logger.WithComponent("indexer").Info("hidden")
	assert.Zero(t, buf.Len())
	logger.WithComponent("indexer").Warn("shown")
	assert.Contains(t, buf.String(), "component=indexer")
	assert.Empty(t, logger.RequestID(context.Background()))
}
