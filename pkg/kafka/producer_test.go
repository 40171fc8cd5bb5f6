package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	writes [][]kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, msgs)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type reloadRequest struct {
	Reason string `json:"reason"`
}

func (reloadRequest) PartitionKey() string { return "reload" }

func TestPublishUsesValueKey(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "corpus-reload")

	require.NoError(t, p.Publish(context.Background(), Event{Value: reloadRequest{Reason: "new files"}}))
	require.Len(t, w.writes, 1)
	msg := w.writes[0][0]
	assert.Equal(t, "reload", string(msg.Key))
	assert.JSONEq(t, `{"reason":"new files"}`, string(msg.Value))
	assert.Equal(t, []kafka.Header{{Key: "content-type", Value: []byte("application/json")}}, msg.Headers)
}

func TestPublishBatchKeys(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "analytics-events")

	err := p.PublishBatch(context.Background(), []Event{
		{Key: "explicit", Value: reloadRequest{}},
		{Value: reloadRequest{}},
		{Value: map[string]int{"n": 1}},
	})
	require.NoError(t, err)
	require.Len(t, w.writes, 1, "one write per batch")
	keys := make([]string, 0, 3)
	for _, msg := range w.writes[0] {
		keys = append(keys, string(msg.Key))
	}
	assert.Equal(t, []string{"explicit", "reload", ""}, keys)

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Len(t, w.writes, 1)
}

func TestPublishBatchEncodeFailureWritesNothing(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "analytics-events")

	err := p.PublishBatch(context.Background(), []Event{
		{Value: reloadRequest{}},
		{Value: make(chan int)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chan int")
	assert.Empty(t, w.writes)
}

func TestPublishWriterFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, "corpus-reload")

	err := p.Publish(context.Background(), Event{Value: reloadRequest{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
	assert.Contains(t, err.Error(), "publishing 1 events")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
