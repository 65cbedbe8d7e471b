// Package analysis is the HTTP client for the interview analysis backend.
package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"mentorportal/internal/client/upstream"
	"mentorportal/internal/domain/models/drive"
)

const (
	// DefaultBaseURL is where the analysis backend listens in local setups
	DefaultBaseURL = "http://localhost:9004"
	// DefaultTimeout is generous: an analysis runs several model passes
	DefaultTimeout = 5 * time.Minute
)

// Client implements services/drive.AnalysisBackend over HTTP.
type Client struct {
	baseURL string
	caller  *upstream.Caller
}

// NewClient creates an analysis client with default timeout.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return NewClientWithConfig(baseURL, DefaultTimeout, logger)
}

// NewClientWithConfig creates an analysis client with a custom timeout.
func NewClientWithConfig(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		caller:  upstream.NewCaller("analysis", timeout, logger),
	}
}

// AnalyzeUpload runs analysis on an ad-hoc document.
// POST /api/v1/interviews/analyze-document
func (c *Client) AnalyzeUpload(ctx context.Context, filename string, content io.Reader, teamID string) (*drive.AnalysisResult, error) {
	body, contentType, err := upstream.MultipartBody(func(mw *multipart.Writer) error {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, content); err != nil {
			return err
		}
		return mw.WriteField("team_id", teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis body: %w", err)
	}

	return c.post(ctx, "/api/v1/interviews/analyze-document", "analyze_document", body, contentType)
}

// AnalyzeStored runs and persists analysis on a document the storage backend knows.
// POST /api/v1/interviews/save/analyze-document
func (c *Client) AnalyzeStored(ctx context.Context, fileID, teamID string) (*drive.AnalysisResult, error) {
	body, contentType, err := upstream.MultipartBody(func(mw *multipart.Writer) error {
		if err := mw.WriteField("file_id", fileID); err != nil {
			return err
		}
		return mw.WriteField("team_id", teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis body: %w", err)
	}

	return c.post(ctx, "/api/v1/interviews/save/analyze-document", "save_analyze_document", body, contentType)
}

func (c *Client) post(ctx context.Context, path, operation string, body io.Reader, contentType string) (*drive.AnalysisResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var result drive.AnalysisResult
	if err := c.caller.Do(req, operation, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
