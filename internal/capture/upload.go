package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/GriffinCanCode/screencapture/backend/platform/internal/errors"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/resilience"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/trace"
)

// Uploader delivers payloads. Implementations make at most one attempt.
type Uploader interface {
	Upload(ctx context.Context, req *Request, p Payload) (Delivery, error)
}

// Delivery describes what happened on the wire.
type Delivery struct {
	Attempted bool
	Status    int
	BodySize  int
}

// UploaderOptions configures an HTTPUploader.
type UploaderOptions struct {
	Client   *http.Client // nil uses a client with Timeout
	Timeout  time.Duration
	Origin   string // sent as the Origin header when set
	Breakers *resilience.Set
}

// HTTPUploader POSTs payloads to the endpoint named in each request.
type HTTPUploader struct {
	client   *http.Client
	origin   string
	breakers *resilience.Set
}

// NewUploader creates an uploader.
func NewUploader(opts UploaderOptions) *HTTPUploader {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPUploader{client: client, origin: opts.Origin, breakers: opts.Breakers}
}

// Upload sends the payload once. An empty endpoint means nothing is sent.
// Failures are logged and returned; they are never retried.
func (u *HTTPUploader) Upload(ctx context.Context, req *Request, p Payload) (Delivery, error) {
	log := trace.Logger(ctx)

	body, err := BuildBody(req, p)
	if err != nil {
		return Delivery{}, apperrors.Wrap(err, apperrors.Internal, "build body")
	}
	if req.ServerEndpoint == "" {
		log.Debug("no server endpoint, payload dropped", "size", p.Size())
		return Delivery{}, nil
	}

	ctx, span := trace.StartSpan(ctx, "upload")
	defer span.End()
	log = trace.Logger(ctx)
	span.SetAttr("endpoint", req.ServerEndpoint)

	var d Delivery
	send := func() error {
		var err error
		d, err = u.post(ctx, req, body)
		return err
	}
	if u.breakers != nil {
		err = u.breakers.Get(breakerKey(req.ServerEndpoint)).Execute(send)
	} else {
		err = send()
	}
	span.SetAttr("status", d.Status)
	if err != nil {
		span.Fail(err)
		log.Error("upload failed", "endpoint", req.ServerEndpoint, "status", d.Status, "error", err)
		if apperrors.IsCode(err, apperrors.UploadFailed) {
			return d, err
		}
		return d, apperrors.Wrap(err, apperrors.UploadFailed, "upload failed").
			WithMetadata("endpoint", req.ServerEndpoint)
	}

	span.SetAttr("size", d.BodySize)
	span.End()
	log.Info("upload complete", "span", span)
	return d, nil
}

func (u *HTTPUploader) post(ctx context.Context, req *Request, body Body) (Delivery, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.ServerEndpoint, bytes.NewReader(body.Data))
	if err != nil {
		return Delivery{}, err
	}
	httpReq.Header.Set("Content-Type", body.ContentType)
	httpReq.Header.Set(TokenHeader, req.UploadToken)
	if u.origin != "" {
		httpReq.Header.Set("Origin", u.origin)
	}

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return Delivery{Attempted: true}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	d := Delivery{Attempted: true, Status: resp.StatusCode, BodySize: len(body.Data)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return d, apperrors.New(apperrors.UploadFailed, fmt.Sprintf("endpoint returned %d", resp.StatusCode)).
			WithMetadata("endpoint", req.ServerEndpoint).
			WithMetadata("status", fmt.Sprint(resp.StatusCode))
	}
	return d, nil
}

// breakerKey groups endpoints by scheme and host.
func breakerKey(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	return u.Scheme + "://" + u.Host
}
