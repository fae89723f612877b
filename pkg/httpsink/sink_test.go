package httpsink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/sender"
)

func TestSinkSendsAndRemovesOnSuccess(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	q := sender.NewQueue(4)
	it := &sender.Item{Payload: []byte("hello")}
	q.Push(it)

	var doneErr error
	var doneCalled int32
	dest := NewDestination(srv.URL, nil)

	s := New(Config{
		Queue:          q,
		MaxConcurrency: 2,
		OnSendDone: func(it *sender.Item, err error) {
			atomic.AddInt32(&doneCalled, 1)
			doneErr = err
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go s.Run(ctx, func(*sender.Item) *Destination { return dest })
	require.Eventually(t, func() bool { return atomic.LoadInt32(&doneCalled) == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()

	assert.NoError(t, doneErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 0, q.Len())
}

func TestSinkRetriesThenGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	q := sender.NewQueue(4)
	it := &sender.Item{Payload: []byte("hello")}
	q.Push(it)
	dest := NewDestination(srv.URL, nil)

	var doneCalled int32
	var lastErr error
	s := New(Config{
		Queue:       q,
		MaxTryCount: 2,
		OnSendDone: func(it *sender.Item, err error) {
			atomic.AddInt32(&doneCalled, 1)
			lastErr = err
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go s.Run(ctx, func(*sender.Item) *Destination { return dest })
	require.Eventually(t, func() bool { return atomic.LoadInt32(&doneCalled) == 1 }, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Error(t, lastErr)
	assert.Equal(t, 2, it.TryCount)
}
