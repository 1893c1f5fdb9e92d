package live

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/gorilla/websocket"

	"github.com/recera/netviz/pkg/debug"
)

// Endpoint builds the websocket URL of diagram id under base,
// e.g. ws://localhost:8080 and 3 give ws://localhost:8080/viz_component?id=3.
func Endpoint(base string, id int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", base, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme %q", base, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + Path
	q := u.Query()
	q.Set("id", strconv.Itoa(id))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Client reads diagram frames from a publisher.
// Reconnecting is left to the caller.
type Client struct {
	url         string
	dialer      *websocket.Dialer
	readTimeout time.Duration

	onFrame func([]byte)
	onReady func()
	onError func(error)

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewClient creates a client for a full endpoint URL, see Endpoint.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		readTimeout: 300 * time.Second,
	}
}

// OnFrame sets the text frame handler. It runs on the reader goroutine.
func (c *Client) OnFrame(handler func([]byte)) {
	c.onFrame = handler
}

// OnReady sets the handler called once the socket is open.
func (c *Client) OnReady(handler func()) {
	c.onReady = handler
}

// OnError sets the handler called when the connection fails.
func (c *Client) OnError(handler func(error)) {
	c.onError = handler
}

// Run dials the publisher and reads frames until ctx is done or the
// connection drops. A clean close or cancellation returns nil.
func (c *Client) Run(ctx context.Context) error {
	ctx = debug.Named(ctx, "live.client")
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		err = fmt.Errorf("failed to connect to %s: %w", c.url, err)
		c.fail(err)
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.mu.Unlock()
	debug.Info(ctx, "connected", slog.F("url", c.url))

	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	defer c.Close()

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(10*time.Second))
	})

	if c.onReady != nil {
		c.onReady()
	}

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || c.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				debug.Info(ctx, "disconnected")
				return nil
			}
			err = fmt.Errorf("read from %s: %w", c.url, err)
			debug.Warn(ctx, "connection lost", slog.Error(err))
			c.fail(err)
			return err
		}
		conn.SetReadDeadline(time.Now().Add(c.readTimeout))

		if messageType != websocket.TextMessage {
			debug.Debug(ctx, "ignoring binary frame", slog.F("size", len(data)))
			continue
		}
		if c.onFrame != nil {
			c.onFrame(data)
		}
	}
}

// Close closes the connection, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.conn.Close()
	c.conn = nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) fail(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
