package capture

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/encoder"
	apperrors "github.com/GriffinCanCode/screencapture/backend/platform/internal/errors"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/resilience"
)

var testBlob = &encoder.Blob{Data: []byte("\x89PNG fake image bytes"), Type: "image/png"}

func TestUploadSendsOnePost(t *testing.T) {
	sink := newUploadSink(t, http.StatusOK)
	u := NewUploader(UploaderOptions{Timeout: 5 * time.Second, Origin: "https://page.test"})

	req := &Request{ServerEndpoint: sink.URL + "/upload", UploadToken: "secret"}
	d, err := u.Upload(context.Background(), req, Payload{Blob: testBlob})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if !d.Attempted || d.Status != http.StatusOK {
		t.Errorf("Delivery = %+v, want attempted with 200", d)
	}

	reqs := sink.requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	got := reqs[0]
	if got.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", got.Method)
	}
	if got.Header.Get(TokenHeader) != "secret" {
		t.Errorf("%s = %q, want secret", TokenHeader, got.Header.Get(TokenHeader))
	}
	if got.Header.Get("Origin") != "https://page.test" {
		t.Errorf("Origin = %q, want https://page.test", got.Header.Get("Origin"))
	}
	if len(got.Body) != d.BodySize {
		t.Errorf("body length = %d, want %d", len(got.Body), d.BodySize)
	}
}

func TestUploadEmptyEndpointSendsNothing(t *testing.T) {
	u := NewUploader(UploaderOptions{Client: &http.Client{Transport: failingTransport{t}}})

	d, err := u.Upload(context.Background(), &Request{UploadToken: "T"}, Payload{Blob: testBlob})
	if err != nil {
		t.Errorf("Upload() error = %v, want nil", err)
	}
	if d.Attempted {
		t.Error("Attempted = true, want false")
	}
}

func TestUploadFailuresAreNotRetried(t *testing.T) {
	tests := []struct {
		name     string
		endpoint func(sink *uploadSink) string
		status   int
	}{
		{"server error", func(s *uploadSink) string { return s.URL }, http.StatusInternalServerError},
		{"unauthorized", func(s *uploadSink) string { return s.URL }, http.StatusUnauthorized},
		{"connection refused", func(s *uploadSink) string { return "http://127.0.0.1:1/up" }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newUploadSink(t, tt.status)
			u := NewUploader(UploaderOptions{Timeout: 5 * time.Second})

			d, err := u.Upload(context.Background(), &Request{ServerEndpoint: tt.endpoint(sink)}, Payload{Blob: testBlob})
			if !apperrors.IsCode(err, apperrors.UploadFailed) {
				t.Fatalf("Upload() error = %v, want UPLOAD_FAILED", err)
			}
			if d.Status != tt.status {
				t.Errorf("Status = %d, want %d", d.Status, tt.status)
			}
			if n := len(sink.requests()); tt.status != 0 && n != 1 {
				t.Errorf("got %d requests, want exactly 1", n)
			}
		})
	}
}

func TestUploadBreakerFailsFast(t *testing.T) {
	sink := newUploadSink(t, http.StatusServiceUnavailable)
	breakers := resilience.NewSet(resilience.Config{Threshold: 2, ResetTimeout: time.Hour, HalfOpenSuccesses: 1})
	u := NewUploader(UploaderOptions{Timeout: 5 * time.Second, Breakers: breakers})
	req := &Request{ServerEndpoint: sink.URL + "/a"}

	for i := 0; i < 3; i++ {
		_, err := u.Upload(context.Background(), req, Payload{Blob: testBlob})
		if !apperrors.IsCode(err, apperrors.UploadFailed) {
			t.Fatalf("Upload() #%d error = %v, want UPLOAD_FAILED", i, err)
		}
	}

	if n := len(sink.requests()); n != 2 {
		t.Errorf("got %d requests, want 2 before the breaker opened", n)
	}
	if breakers.Get(breakerKey(sink.URL+"/other")).State() != resilience.Open {
		t.Error("breaker should be shared by every path on the host")
	}
}

func TestBreakerKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://h.test/upload?x=1", "https://h.test"},
		{"http://h.test:8080/a", "http://h.test:8080"},
	}
	for _, tt := range tests {
		if got := breakerKey(tt.in); got != tt.want {
			t.Errorf("breakerKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
