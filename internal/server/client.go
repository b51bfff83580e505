package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

// client is one extension connection. Only writeLoop writes to ws.
type client struct {
	ws   *websocket.Conn
	send chan Frame
	done chan struct{}
	once sync.Once
	ctx  context.Context

	mu      sync.Mutex
	pending map[uint64]chan Frame
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// enqueue queues f for writing. It reports false once the client is closed.
func (c *client) enqueue(f Frame) bool {
	select {
	case c.send <- f:
		return true
	case <-c.done:
		return false
	}
}

func (c *client) await(id uint64) <-chan Frame {
	ch := make(chan Frame, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// resolve hands a response to the waiting request. Late responses are dropped.
func (c *client) resolve(f Frame) {
	c.mu.Lock()
	ch, ok := c.pending[f.ID]
	delete(c.pending, f.ID)
	c.mu.Unlock()
	if ok {
		ch <- f
	}
}

func (c *client) writeLoop(logger hclog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case f := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				logger.Debug("WebSocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
