package stream

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/weave/pkg/protocol"
)

// Client is one connected remote tree.
type Client struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger

	acked atomic.Uint64
	sent  atomic.Uint64
}

// generateClientID generates a cryptographically random client ID.
func generateClientID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	id := generateClientID()
	return &Client{
		ID:     id,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.config.SendBuffer),
		done:   make(chan struct{}),
		logger: h.logger.With("client_id", id),
	}
}

// Acked returns the last sequence number the client acknowledged.
func (c *Client) Acked() uint64 {
	return c.acked.Load()
}

// queue hands an encoded frame to the write loop without blocking. It
// returns false when the buffer is full or the client is closed.
func (c *Client) queue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close signals the write loop to say goodbye and close the connection,
// which in turn ends the read loop. Safe to call more than once.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// readLoop handles control frames until the connection fails.
func (c *Client) readLoop() {
	defer c.hub.unregister(c, "read closed")

	cfg := c.hub.config
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		frame, err := protocol.DecodeFrameWithLimits(msg, c.hub.limits)
		if err != nil {
			c.logger.Warn("frame decode error", "error", err)
			c.queue(errorFrame(err, false))
			continue
		}
		switch frame.Type {
		case protocol.FrameControl:
			c.handleControl(frame.Payload)
		default:
			c.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

func (c *Client) handleControl(payload []byte) {
	ctl, err := protocol.DecodeControl(payload)
	if err != nil {
		c.logger.Warn("control decode error", "error", err)
		c.queue(errorFrame(err, false))
		return
	}
	switch ctl.Type {
	case protocol.ControlPing:
		pong := protocol.EncodeControl(&protocol.Control{Type: protocol.ControlPong, Seq: ctl.Seq})
		c.queue(protocol.NewFrame(protocol.FrameControl, pong).Encode())
	case protocol.ControlAck:
		c.acked.Store(ctl.Seq)
		c.logger.Debug("ack", "seq", ctl.Seq)
	case protocol.ControlResync:
		c.logger.Info("resync requested", "last_seq", ctl.Seq)
		c.hub.resync(c, ctl.Seq)
	}
}

// writeLoop writes queued frames and keeps the connection alive with pings.
func (c *Client) writeLoop() {
	cfg := c.hub.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.hub.unregister(c, "write closed")
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.logger.Warn("write error", "error", err)
				return
			}
			c.sent.Add(1)
			c.hub.observer.FrameSent(len(frame))

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func errorFrame(err error, fatal bool) []byte {
	payload := protocol.EncodeErrorMessage(protocol.NewErrorMessage(err, fatal))
	return protocol.NewFrame(protocol.FrameError, payload).Encode()
}
