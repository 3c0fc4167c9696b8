package server

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/capture"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

// Acks routes capture results back to the connection that sent the command.
// Commands without an id are never acknowledged.
type Acks struct {
	mu      sync.Mutex
	pending map[string]*websocket.Conn
}

// NewAcks creates an empty router.
func NewAcks() *Acks {
	return &Acks{pending: make(map[string]*websocket.Conn)}
}

// register claims id for conn. It fails while another command holds the id.
func (a *Acks) register(id string, conn *websocket.Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.pending[id]; ok {
		return false
	}
	a.pending[id] = conn
	return true
}

func (a *Acks) take(id string) *websocket.Conn {
	a.mu.Lock()
	defer a.mu.Unlock()
	conn := a.pending[id]
	delete(a.pending, id)
	return conn
}

// forget drops every pending id of a closed connection.
func (a *Acks) forget(conn *websocket.Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, c := range a.pending {
		if c == conn {
			delete(a.pending, id)
		}
	}
}

// Pending returns the number of unacknowledged commands.
func (a *Acks) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Deliver is a capture.ResultFunc.
func (a *Acks) Deliver(ctx context.Context, res capture.Result, err error) {
	if res.ID == "" {
		return
	}
	conn := a.take(res.ID)
	if conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), AckWriteTimeout)
	defer cancel()
	if werr := wsjson.Write(ctx, conn, newCaptureResult(res, err)); werr != nil {
		trace.Logger(ctx).Debug("ack write failed", "id", res.ID, "error", werr)
	}
}
