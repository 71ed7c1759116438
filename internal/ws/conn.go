package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"cosync/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Sender is the hub-facing side of one connection. Sends are
// enqueue-and-continue; the hub never waits on a socket write.
type Sender interface {
	ID() domain.ConnID
	TrySend(frame []byte) error
	Close()
}

type wsConn struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newWsConn(id domain.ConnID, conn *websocket.Conn, queue int) *wsConn {
	return &wsConn{
		id:   id,
		conn: conn,
		send: make(chan []byte, queue),
	}
}

func (c *wsConn) ID() domain.ConnID { return c.id }

// TrySend enqueues a frame for the write pump. A full queue drops the
// frame rather than blocking the caller.
func (c *wsConn) TrySend(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
