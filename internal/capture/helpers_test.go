package capture

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// received is one request seen by an uploadSink.
type received struct {
	Method string
	Header http.Header
	Body   []byte
}

// uploadSink is an upload endpoint that records every request.
type uploadSink struct {
	*httptest.Server
	status int

	mu   sync.Mutex
	reqs []received
}

func newUploadSink(t *testing.T, status int) *uploadSink {
	t.Helper()
	s := &uploadSink{status: status}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.reqs = append(s.reqs, received{Method: r.Method, Header: r.Header.Clone(), Body: body})
		s.mu.Unlock()
		w.WriteHeader(s.status)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *uploadSink) requests() []received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]received(nil), s.reqs...)
}

// failingTransport fails the test if any request is made.
type failingTransport struct{ t *testing.T }

func (f failingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.t.Errorf("unexpected request to %s", r.URL)
	return nil, http.ErrHandlerTimeout
}
