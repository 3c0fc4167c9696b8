package capture

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/bridge"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/encoder"
	apperrors "github.com/GriffinCanCode/screencapture/backend/platform/internal/errors"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/render"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/syncx"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

// Result summarizes one finished capture.
type Result struct {
	ID          string  `json:"id,omitempty"`
	Encoding    string  `json:"encoding,omitempty"`
	MIME        string  `json:"mime,omitempty"`
	Size        int     `json:"size"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Fingerprint string  `json:"fingerprint,omitempty"`
	Uploaded    bool    `json:"uploaded"`
	Status      int     `json:"status,omitempty"`
	Payload     Payload `json:"-"`
}

// ResultFunc receives the outcome of every capture started from a message.
type ResultFunc func(ctx context.Context, res Result, err error)

// Options configures a Controller.
type Options struct {
	BusyPolicy BusyPolicy
	OnResult   ResultFunc
}

// Controller turns capture commands into captured, encoded, uploaded images.
// At most one capture runs at a time.
type Controller struct {
	win      *bridge.Window
	renderer render.Renderer
	surfaces *surface.Registry
	enc      *encoder.Encoder
	uploader Uploader
	opts     Options

	flight *semaphore.Weighted
	live   *syncx.Guard[*session]
	wg     sync.WaitGroup
}

// NewController wires the capture pipeline.
func NewController(win *bridge.Window, renderer render.Renderer, surfaces *surface.Registry,
	enc *encoder.Encoder, uploader Uploader, opts Options) *Controller {
	if opts.BusyPolicy == "" {
		opts.BusyPolicy = RejectWhenBusy
	}
	return &Controller{
		win:      win,
		renderer: renderer,
		surfaces: surfaces,
		enc:      enc,
		uploader: uploader,
		opts:     opts,
		flight:   semaphore.NewWeighted(1),
		live:     syncx.NewGuard[*session](nil),
	}
}

// Start subscribes to the window's message and resize channels. Captures
// started from messages run detached and inherit ctx.
func (c *Controller) Start(ctx context.Context) {
	c.win.AddMessageListener(func(data json.RawMessage) { c.HandleMessage(ctx, data) })
	c.win.AddResizeListener(c.resize)
}

// HandleMessage parses one inbound message and, for a valid capture command,
// starts a capture without blocking the caller. Once ctx is done, capture
// commands are answered with UNAVAILABLE instead.
func (c *Controller) HandleMessage(ctx context.Context, data json.RawMessage) {
	parsed := Parse(data)
	if parsed.Ignored() {
		return
	}
	if err := ctx.Err(); err != nil {
		c.report(ctx, Result{ID: parsed.ID}, apperrors.Wrap(err, apperrors.Unavailable, "bridge shutting down"))
		return
	}

	if parsed.Request == nil {
		ctx, _ = trace.WithTraceID(ctx, parsed.ID)
		trace.Logger(ctx).Warn("capture command rejected", "reason", string(parsed.Reason), "detail", parsed.Detail)
		err := apperrors.New(apperrors.InvalidArgument, string(parsed.Reason)).WithMetadata("detail", parsed.Detail)
		c.report(ctx, Result{ID: parsed.ID}, err)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.Capture(ctx, parsed.Request)
		c.report(ctx, res, err)
	}()
}

// Wait blocks until captures started by HandleMessage have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Capture runs one capture synchronously.
func (c *Controller) Capture(ctx context.Context, req *Request) (res Result, err error) {
	res = Result{ID: req.ID}
	if err := c.acquire(ctx); err != nil {
		return res, err
	}
	defer c.flight.Release(1)

	ctx, _ = trace.WithTraceID(ctx, req.ID)
	ctx, span := trace.StartSpan(ctx, "capture")
	log := trace.Logger(ctx)
	defer func() {
		span.Fail(err)
		span.End()
		log.Debug("capture finished", "span", span)
	}()

	s, err := c.open()
	if err != nil {
		log.Error("renderer attach failed", "error", err)
		return res, apperrors.Wrap(err, apperrors.RenderFailed, "attach renderer")
	}
	defer c.dispose(ctx, s)

	res.Width, res.Height = s.surface.Size()
	span.SetAttr("width", res.Width)
	span.SetAttr("height", res.Height)

	format := req.EffectiveEncoding()
	var payload Payload
	if req.WantsText() {
		format = encoder.WebP
		payload.DataURL, err = c.enc.EncodeDataURL(s.surface)
	} else {
		payload.Blob, err = c.enc.Encode(s.surface, format)
	}
	if err != nil {
		log.Error("no image available", "encoding", string(format), "error", err)
		return res, apperrors.Wrap(err, apperrors.EncodeFailed, "no image available")
	}

	res.Encoding = string(format)
	res.MIME = payload.MIME()
	res.Size = payload.Size()
	res.Payload = payload
	if snap := s.surface.Snapshot(); snap != nil {
		res.Fingerprint = encoder.Fingerprint(snap)
	}
	span.SetAttr("encoding", res.Encoding)
	span.SetAttr("size", res.Size)

	d, err := c.uploader.Upload(ctx, req, payload)
	res.Uploaded = d.Attempted && err == nil
	res.Status = d.Status
	return res, err
}

func (c *Controller) acquire(ctx context.Context) error {
	if c.opts.BusyPolicy == QueueWhenBusy {
		if err := c.flight.Acquire(ctx, 1); err != nil {
			return apperrors.Wrap(err, apperrors.CaptureBusy, "gave up waiting for capture slot")
		}
		return nil
	}
	if !c.flight.TryAcquire(1) {
		trace.Logger(ctx).Warn("capture already in progress, command rejected")
		return apperrors.New(apperrors.CaptureBusy, "capture already in progress")
	}
	return nil
}

func (c *Controller) report(ctx context.Context, res Result, err error) {
	if c.opts.OnResult != nil {
		c.opts.OnResult(ctx, res, err)
	}
}
