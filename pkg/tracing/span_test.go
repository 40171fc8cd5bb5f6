package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "search", "req-1")
	assert.Same(t, root, SpanFromContext(ctx))

	childCtx, child := StartChildSpan(ctx, "execute")
	child.SetAttr("total_hits", 2)
	child.End()
	_, grandchild := StartChildSpan(childCtx, "rank")
	grandchild.End()
	root.End()

	require.Len(t, root.Children(), 1)
	assert.Same(t, child, root.Children()[0])
	assert.Equal(t, "req-1", child.TraceID)
	assert.Equal(t, "req-1", grandchild.TraceID)
	v, ok := child.Attr("total_hits")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.GreaterOrEqual(t, root.Duration, child.Duration)
}

func TestChildWithoutParent(t *testing.T) {
	ctx, span := StartChildSpan(context.Background(), "orphan")
	assert.Empty(t, span.TraceID)
	assert.Same(t, span, SpanFromContext(ctx))
	assert.Nil(t, SpanFromContext(context.Background()))
}

func TestLogWritesTreeAtDebug(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "corpus-rebuild", "t-1")
	_, child := StartChildSpan(ctx, "load")
	child.SetAttr("documents", 3)
	child.End()
	root.End()

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=corpus-rebuild")
	assert.Contains(t, lines[0], "depth=0")
	assert.Contains(t, lines[1], "span=load")
	assert.Contains(t, lines[1], "documents=3")

	buf.Reset()
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	assert.Empty(t, buf.String())
}
