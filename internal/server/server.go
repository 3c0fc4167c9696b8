package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/bridge"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/capture"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/config"
	apperrors "github.com/GriffinCanCode/screencapture/backend/platform/internal/errors"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

// Capturer runs one capture synchronously.
type Capturer interface {
	Capture(ctx context.Context, req *capture.Request) (capture.Result, error)
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	win      *bridge.Window
	capturer Capturer
	surfaces *surface.Registry
	acks     *Acks // nil disables acknowledgements

	mu         sync.RWMutex
	rateLimits map[*websocket.Conn]*rateLimiter
}

// New creates a server. acks may be nil.
func New(win *bridge.Window, capturer Capturer, surfaces *surface.Registry, acks *Acks, cfg *config.Config) *Server {
	if cfg != nil && !cfg.AckEnabled {
		acks = nil
	}
	return &Server{
		win:        win,
		capturer:   capturer,
		surfaces:   surfaces,
		acks:       acks,
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("POST /api/capture", s.handleCapture)
	mux.HandleFunc("PUT /api/viewport", s.handleViewport)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return corsMiddleware(trace.Middleware(mux))
}

// Connections returns the number of open WebSocket connections.
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rateLimits)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()
	conn.SetReadLimit(MaxMessageBytes)

	rl := newRateLimiter(RateLimitMessages, RateLimitWindow)
	s.mu.Lock()
	s.rateLimits[conn] = rl
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.rateLimits, conn)
		s.mu.Unlock()
		if s.acks != nil {
			s.acks.forget(conn)
		}
	}()

	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		_, msg, err := conn.Read(baseCtx)
		if err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, ErrorMessage{Type: TypeError, Message: "rate limit exceeded"})
			continue
		}

		s.dispatch(baseCtx, conn, msg)
	}
}

// dispatch routes resize frames to the window and posts everything else.
func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, msg json.RawMessage) {
	var base Message
	if err := json.Unmarshal(msg, &base); err != nil {
		// the window sees everything; the controller drops what it cannot parse
		s.win.PostMessage(msg)
		return
	}

	if base.Type == TypeResize {
		var rm ResizeMessage
		if err := json.Unmarshal(msg, &rm); err != nil {
			return
		}
		trace.Logger(ctx).Debug("viewport resize", "width", rm.Width, "height", rm.Height)
		s.win.Resize(rm.Width, rm.Height)
		return
	}

	if s.acks != nil && base.Action == capture.ActionCapture && base.ID != "" {
		if !s.acks.register(base.ID, conn) {
			trace.Logger(ctx).Warn("capture id already pending, command rejected", "id", base.ID)
			err := apperrors.New(apperrors.InvalidArgument, "capture id already pending").WithMetadata("id", base.ID)
			_ = wsjson.Write(ctx, conn, newCaptureResult(capture.Result{ID: base.ID}, err))
			return
		}
	}
	s.win.PostMessage(msg)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBytes))
	if err != nil {
		writeError(ctx, w, apperrors.Wrap(err, apperrors.InvalidArgument, "read body"))
		return
	}

	parsed := capture.Parse(data)
	if parsed.Request == nil {
		writeError(ctx, w, apperrors.New(apperrors.InvalidArgument, string(parsed.Reason)).
			WithMetadata("detail", parsed.Detail))
		return
	}

	res, err := s.capturer.Capture(ctx, parsed.Request)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var vp Viewport
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBytes)).Decode(&vp); err != nil {
		writeError(r.Context(), w, apperrors.Wrap(err, apperrors.InvalidArgument, "invalid viewport"))
		return
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		writeError(r.Context(), w, apperrors.Newf(apperrors.InvalidArgument, "viewport %dx%d must be positive", vp.Width, vp.Height))
		return
	}

	s.win.Resize(vp.Width, vp.Height)
	width, height := s.win.InnerSize()
	writeJSON(w, http.StatusOK, Viewport{Width: width, Height: height})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", LiveSurfaces: s.surfaces.Live()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as a google.rpc.ErrorInfo document.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := apperrors.From(err)
	trace.Logger(ctx).Debug("request failed", "code", string(appErr.Code), "error", err)

	body, merr := protojson.Marshal(appErr.ToProto())
	if merr != nil {
		http.Error(w, appErr.Error(), appErr.HTTPStatus())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	_, _ = w.Write(body)
}
