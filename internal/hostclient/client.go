// Package hostclient drives a running bridge over its WebSocket endpoint.
package hostclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/capture"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/resilience"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/server"
)

// PingInterval keeps idle connections alive through proxies.
const PingInterval = 25 * time.Second

// ErrClosed is returned once the connection has gone away.
var ErrClosed = errors.New("hostclient: connection closed")

// Client is a WebSocket client for the bridge host.
type Client struct {
	conn    *websocket.Conn
	results chan server.CaptureResultMessage

	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// Dial connects to url, retrying while the host is unreachable.
// A handshake the host answers with a 4xx status is not retried.
func Dial(ctx context.Context, url string) (*Client, error) {
	var conn *websocket.Conn
	err := resilience.Retry(ctx, resilience.DialRetryConfig(), func() error {
		c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			if resp != nil && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
				return resilience.Permanent(fmt.Errorf("handshake rejected with %d: %w", resp.StatusCode, err))
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hostclient dial: %w", err)
	}

	c := &Client{
		conn:    conn,
		results: make(chan server.CaptureResultMessage, 16),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	go c.pingLoop()
	return c, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// Results delivers capture acknowledgements. It is closed with the connection.
func (c *Client) Results() <-chan server.CaptureResultMessage {
	return c.results
}

// SendCapture posts a capture command. The action tag is set for the caller.
func (c *Client) SendCapture(req capture.Request) error {
	req.Action = capture.ActionCapture
	return c.send(req)
}

// SendResize changes the host viewport.
func (c *Client) SendResize(width, height int) error {
	return c.send(server.ResizeMessage{Type: server.TypeResize, Width: width, Height: height})
}

// Capture sends req and waits for its acknowledgement. req.ID must be set.
func (c *Client) Capture(ctx context.Context, req capture.Request) (server.CaptureResultMessage, error) {
	if req.ID == "" {
		return server.CaptureResultMessage{}, errors.New("hostclient: capture needs an id to be acknowledged")
	}
	if err := c.SendCapture(req); err != nil {
		return server.CaptureResultMessage{}, err
	}
	for {
		select {
		case <-ctx.Done():
			return server.CaptureResultMessage{}, ctx.Err()
		case res, ok := <-c.results:
			if !ok {
				return server.CaptureResultMessage{}, ErrClosed
			}
			if res.ID == req.ID {
				return res, nil
			}
		}
	}
}

func (c *Client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) readLoop() {
	defer close(c.results)
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				slog.Debug("hostclient read error", "error", err)
			}
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return
	}

	switch base.Type {
	case server.TypeCaptureResult:
		var res server.CaptureResultMessage
		if err := json.Unmarshal(data, &res); err != nil {
			return
		}
		select {
		case c.results <- res:
		case <-c.done:
		}
	case server.TypeError:
		var msg server.ErrorMessage
		if err := json.Unmarshal(data, &msg); err == nil {
			slog.Warn("host reported error", "message", msg.Message)
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.closed {
				_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			}
			c.mu.Unlock()
		}
	}
}
