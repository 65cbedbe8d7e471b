// Package upstream holds the request plumbing shared by the backend clients:
// status checking, error typing, metrics and multipart body building.
package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mentorportal/internal/domain"
	"mentorportal/internal/metrics"
)

// maxErrorBody caps how much of a rejected response is kept for the error message.
const maxErrorBody = 4 << 10

// Caller executes requests against one backend.
type Caller struct {
	backend    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCaller creates a caller for the named backend.
func NewCaller(backend string, timeout time.Duration, logger *slog.Logger) *Caller {
	return &Caller{
		backend: backend,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", backend+"_client"),
	}
}

// Do executes req and decodes a JSON body into dest when dest is non-nil.
// Transport failures wrap domain.ErrUpstream; non-2xx answers return
// *domain.UpstreamError.
func (c *Caller) Do(req *http.Request, operation string, dest interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(c.backend, operation, "error", time.Since(start))
		c.logger.Warn("request failed", "operation", operation, "error", err)
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, c.backend, operation, err)
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	metrics.ObserveUpstream(c.backend, operation, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("request rejected",
			"operation", operation,
			"status", resp.StatusCode,
		)
		return &domain.UpstreamError{
			Backend:   c.backend,
			Operation: operation,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(body)),
		}
	}

	c.logger.Debug("request completed",
		"operation", operation,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %s %s: failed to parse response: %v", domain.ErrUpstream, c.backend, operation, err)
	}
	return nil
}

// MultipartBody builds a multipart/form-data body in memory and returns it
// with its Content-Type.
func MultipartBody(fill func(*multipart.Writer) error) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if err := fill(mw); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}
