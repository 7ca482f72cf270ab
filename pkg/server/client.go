package server

import (
	"net"
	"sync"
)

// client is an opaque handle to one live connection. It is created on accept
// and never reused after close. Everything except the write path is owned by
// the event loop; writes take a mutex so the TCP and WebSocket transports can
// share the same framing.
type client struct {
	id   uint64
	conn net.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// writeLine sends one frame: the line plus the terminating newline in a
// single Write call.
func (c *client) writeLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := c.conn.Write(append([]byte(line), '\n'))
	return err
}

// close shuts the connection down. Safe to call more than once; the reader
// goroutine notices the closed transport and emits the disconnect event.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}
