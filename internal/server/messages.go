package server

import (
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/capture"
	apperrors "github.com/GriffinCanCode/screencapture/backend/platform/internal/errors"
)

// Message is the envelope every inbound frame is peeked through.
type Message struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// ResizeMessage changes the host viewport.
type ResizeMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ErrorBody is the wire form of an AppError.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CaptureResultMessage acknowledges a capture command to its sender.
type CaptureResultMessage struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result *capture.Result `json:"result,omitempty"`
	Error  *ErrorBody      `json:"error,omitempty"`
}

// ErrorMessage reports a connection-level problem.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Viewport is the body of PUT /api/viewport.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	LiveSurfaces int    `json:"live_surfaces"`
}

func newCaptureResult(res capture.Result, err error) CaptureResultMessage {
	msg := CaptureResultMessage{Type: TypeCaptureResult, ID: res.ID, OK: err == nil}
	if err != nil {
		appErr := apperrors.From(err)
		msg.Error = &ErrorBody{Code: string(appErr.Code), Message: appErr.Message}
		return msg
	}
	msg.Result = &res
	return msg
}
