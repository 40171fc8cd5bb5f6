package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

type fakeRebuilder struct {
	calls int
	gen   uint64
	err   error
	// failures is how many calls fail before err takes over.
	failures int
}

func (f *fakeRebuilder) Rebuild(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("source briefly unavailable")
	}
	if f.err != nil {
		return f.err
	}
	f.gen++
	return nil
}

func (f *fakeRebuilder) Generation() uint64 { return f.gen }

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return f.err
}

func reloadMessage(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(ingestion.ReloadEvent{
		Reason:      "documents updated",
		RequestedBy: "test",
		RequestedAt: time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestHandleReloadRebuildsAndInvalidates(t *testing.T) {
	engine := &fakeRebuilder{}
	inv := &fakeInvalidator{}
	handler := consumer.HandleReload(engine, inv, fastRetry())

	require.NoError(t, handler(context.Background(), []byte("reload"), reloadMessage(t)))
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, uint64(1), engine.gen)
	assert.Equal(t, 1, inv.calls)
}

func TestHandleReloadSkipsUndecodableMessages(t *testing.T) {
	engine := &fakeRebuilder{}
	handler := consumer.HandleReload(engine, nil, fastRetry())

	assert.NoError(t, handler(context.Background(), nil, []byte("{not json")))
	assert.Zero(t, engine.calls)
}

func TestHandleReloadPropagatesRebuildFailure(t *testing.T) {
	engine := &fakeRebuilder{err: errors.New("source down")}
	inv := &fakeInvalidator{}
	handler := consumer.HandleReload(engine, inv, fastRetry())

	err := handler(context.Background(), nil, reloadMessage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source down")
	assert.Equal(t, 3, engine.calls, "every attempt is used before giving up")
	assert.Zero(t, inv.calls)
}

func TestHandleReloadRetriesTransientFailure(t *testing.T) {
	engine := &fakeRebuilder{failures: 2}
	inv := &fakeInvalidator{}
	handler := consumer.HandleReload(engine, inv, fastRetry())

	require.NoError(t, handler(context.Background(), []byte("reload"), reloadMessage(t)))
	assert.Equal(t, 3, engine.calls)
	assert.Equal(t, uint64(1), engine.gen)
	assert.Equal(t, 1, inv.calls)
}

func TestHandleReloadStopsOnCancellation(t *testing.T) {
	engine := &fakeRebuilder{err: context.Canceled}
	handler := consumer.HandleReload(engine, nil, fastRetry())

	err := handler(context.Background(), nil, reloadMessage(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, engine.calls)
}

func TestHandleReloadToleratesInvalidationFailure(t *testing.T) {
	engine := &fakeRebuilder{}
	inv := &fakeInvalidator{err: errors.New("redis down")}
	handler := consumer.HandleReload(engine, inv, fastRetry())

	assert.NoError(t, handler(context.Background(), nil, reloadMessage(t)))
	assert.Equal(t, 1, inv.calls)
}
