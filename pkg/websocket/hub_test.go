package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backsoul/quizquest/pkg/logger"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logger.New(io.Discard, "info"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Register(good)
	hub.Register(bad)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.BroadcastLike("q1", 4)

	require.Eventually(t, func() bool { return len(good.received()) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, bad.isClosed())

	var msg struct {
		Type string      `json:"type"`
		Data LikeChanged `json:"data"`
	}
	require.NoError(t, json.Unmarshal(good.received()[0], &msg))
	assert.Equal(t, TypeLikeChanged, msg.Type)
	assert.Equal(t, LikeChanged{QuizID: "q1", Likes: 4}, msg.Data)

	hub.Unregister(good)
	require.Eventually(t, good.isClosed, time.Second, 5*time.Millisecond)
	assert.Zero(t, hub.ClientCount())
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub(logger.New(io.Discard, "info"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	conn := &fakeConn{}
	hub.Register(conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.True(t, conn.isClosed())
	assert.Zero(t, hub.ClientCount())
}

func TestRegisterAfterStop(t *testing.T) {
	hub := NewHub(logger.New(io.Discard, "info"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	conn := &fakeConn{}
	hub.Register(conn)
	hub.Unregister(conn)
	assert.True(t, conn.isClosed())
	assert.Zero(t, hub.ClientCount())
}
