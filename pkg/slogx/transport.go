package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/julis-sh/console/pkg/idx"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Transport is an http.RoundTripper that logs every outbound request at
// debug level. Requests without a valid ULID request id get a fresh one. A logger stored in the request context wins over Logger, so
// request logs carry the caller's attributes.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	id, err := idx.Parse(req.Header.Get(HeaderRequestID))
	if err != nil {
		id = idx.New()
		req = req.Clone(req.Context())
		req.Header.Set(HeaderRequestID, id.String())
	}

	logger, ok := lookup(req.Context())
	if !ok {
		logger = t.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		"req_id", id.String(),
		"method", req.Method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Debug("http_request_failed", "error", err, "duration_ms", duration)
		return nil, err
	}

	logger.Debug("http_request", "status", resp.StatusCode, "duration_ms", duration)
	return resp, nil
}
