package gateway

import (
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/soyeahso/agentchat/internal/logging"
)

func TestClientRegistry(t *testing.T) {
	r := NewClientRegistry(logging.New(nil, "silent"))
	base := testutil.ToFloat64(metricConnections)

	a := &Client{ConnID: "a", Info: ClientInfo{ID: "web"}}
	b := &Client{ConnID: "b"}
	r.Add(a)
	r.Add(b)
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, base+2, testutil.ToFloat64(metricConnections))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	r.Remove("a")
	r.Remove("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, base+1, testutil.ToFloat64(metricConnections))

	r.Remove("b")
	assert.Equal(t, base, testutil.ToFloat64(metricConnections))
}

func TestClient_SendAfterClose(t *testing.T) {
	c := &Client{ConnID: "x", closed: true}
	assert.ErrorIs(t, c.Send(Frame{Type: FrameTypeEvent}), ErrClientClosed)
	assert.ErrorIs(t, c.SendEvent(EventScroll, nil), ErrClientClosed)
	assert.NoError(t, c.Close())
}

func TestClient_Allow(t *testing.T) {
	unlimited := &Client{}
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow())
	}

	limited := &Client{limiter: rate.NewLimiter(rate.Limit(0.001), 2)}
	assert.True(t, limited.Allow())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

func TestClient_GoWait(t *testing.T) {
	c := &Client{}
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		c.Go(func() { n.Add(1) })
	}
	c.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestClientRegistry_BroadcastReachesEveryPage(t *testing.T) {
	srv, ts, _ := testServer(t, nil)
	first := connect(t, ts, ConnectParams{UserID: "web_user_aaaaaaaaa"})
	second := connect(t, ts, ConnectParams{UserID: "web_user_bbbbbbbbb"})

	require.Eventually(t, func() bool { return srv.clients.Count() == 2 }, testWait, testTick)
	srv.clients.Broadcast(EventShutdown, struct{}{})

	first.event(EventShutdown)
	second.event(EventShutdown)
}
