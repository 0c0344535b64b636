package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout     = 10 * time.Second
	defaultHandshake = 7 * time.Second
	messageBuffer    = 16
)

// Channel is a duplex text-frame message channel to one endpoint.
//
// Messages() is closed when the peer goes away or Close is called;
// consumers must treat a closed channel as end of stream, not an error.
type Channel interface {
	// Send writes one text frame.
	Send(ctx context.Context, payload []byte) error

	// Messages returns the inbound frame stream.
	Messages() <-chan []byte

	// Close tears the channel down. Safe to call more than once.
	Close() error
}

// Dialer opens a Channel to a named endpoint. The production
// implementation is WebsocketDialer; tests substitute in-memory fakes.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Channel, error)
}

// WebsocketDialer opens websocket channels.
type WebsocketDialer struct {
	// HandshakeTimeout bounds the dial; zero means the default.
	HandshakeTimeout time.Duration
}

// Dial connects to the endpoint (normalized first) and starts the read
// pump. The returned channel delivers only text frames; binary frames
// are dropped.
func (d *WebsocketDialer) Dial(ctx context.Context, endpoint string) (Channel, error) {
	endpoint, err := NormalizeURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", endpoint, err)
	}

	handshake := d.HandshakeTimeout
	if handshake <= 0 {
		handshake = defaultHandshake
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshake}

	wc, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", endpoint, err)
	}

	c := &wsChannel{
		endpoint: endpoint,
		wc:       wc,
		messages: make(chan []byte, messageBuffer),
	}
	go c.readPump()
	return c, nil
}

// wsChannel adapts a websocket connection to the Channel interface.
type wsChannel struct {
	endpoint string
	wc       *websocket.Conn
	messages chan []byte

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// readPump moves inbound text frames onto the messages channel until the
// connection errors, then closes the stream. Runs in its own goroutine.
func (c *wsChannel) readPump() {
	defer close(c.messages)
	for {
		op, data, err := c.wc.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("relay channel closed", "endpoint", c.endpoint, "error", err)
			}
			return
		}
		if op != websocket.TextMessage {
			continue
		}
		c.messages <- data
	}
}

// Send writes one text frame under a write deadline.
func (c *wsChannel) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.wc.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.wc.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write to %s: %w", c.endpoint, err)
	}
	return nil
}

// Messages returns the inbound frame stream.
func (c *wsChannel) Messages() <-chan []byte {
	return c.messages
}

// Close closes the websocket. The read pump notices the closed socket
// and closes the messages channel.
func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.wc.Close()
	})
	return err
}
