// Package server exposes the bridge over WebSocket and HTTP.
package server

import "time"

// Server configuration constants
const (
	// Per-connection sliding window
	RateLimitMessages = 30
	RateLimitWindow   = time.Second

	// Largest inbound WebSocket message
	MaxMessageBytes = 64 << 10

	// Largest POST /api/capture body
	MaxRequestBytes = 1 << 20

	// Deadline for writing one acknowledgement
	AckWriteTimeout = 5 * time.Second
)

// Message types
const (
	TypeResize        = "resize"
	TypeCaptureResult = "capture_result"
	TypeError         = "error"
)
