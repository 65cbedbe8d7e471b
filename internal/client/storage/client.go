// Package storage is the HTTP client for the file-storage backend that owns
// folders, documents, drive synchronization and persisted analyses.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mentorportal/internal/client/upstream"
	"mentorportal/internal/domain/models/drive"
)

const (
	// DefaultBaseURL is where the storage backend listens in local setups
	DefaultBaseURL = "http://localhost:9014"
	// DefaultTimeout is the HTTP timeout for storage requests
	DefaultTimeout = 30 * time.Second
)

// Client implements services/drive.StorageBackend over HTTP.
type Client struct {
	baseURL string
	caller  *upstream.Caller
}

// NewClient creates a storage client with default timeout.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return NewClientWithConfig(baseURL, DefaultTimeout, logger)
}

// NewClientWithConfig creates a storage client with a custom timeout.
func NewClientWithConfig(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		caller:  upstream.NewCaller("storage", timeout, logger),
	}
}

// RootStructure fetches the full folder tree.
// GET /drive/root_structure
func (c *Client) RootStructure(ctx context.Context) ([]*drive.FolderNode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/drive/root_structure", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var folders []*drive.FolderNode
	if err := c.caller.Do(req, "root_structure", &folders); err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []*drive.FolderNode{}
	}
	return folders, nil
}

// CreateFolder creates a folder.
// POST /drive/folders
func (c *Client) CreateFolder(ctx context.Context, in *drive.CreateFolderRequest) error {
	payload := map[string]interface{}{
		"name": in.Name,
	}
	if in.FolderType != "" {
		payload["folder_type"] = in.FolderType
	}
	if in.ParentFolderID != nil {
		payload["parent_folder_id"] = *in.ParentFolderID
	}
	if in.TeamID != "" {
		payload["team_id"] = in.TeamID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/drive/folders", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.caller.Do(req, "create_folder", nil)
}

// UploadFile uploads a document into a folder.
// POST /drive/folders/{folderId}/files
func (c *Client) UploadFile(ctx context.Context, folderID int, filename string, content io.Reader) error {
	body, contentType, err := upstream.MultipartBody(func(mw *multipart.Writer) error {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, content)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to build upload body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/drive/folders/%d/files", c.baseURL, folderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.caller.Do(req, "upload_file", nil)
}

// Sync triggers synchronization with the drive source.
// POST /drive/sync (folder_id omitted = sync everything)
func (c *Client) Sync(ctx context.Context, folderID string) error {
	body, contentType, err := upstream.MultipartBody(func(mw *multipart.Writer) error {
		if folderID == "" {
			return nil
		}
		return mw.WriteField("folder_id", folderID)
	})
	if err != nil {
		return fmt.Errorf("failed to build sync body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/drive/sync", body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.caller.Do(req, "sync", nil)
}

// GetAnalysis fetches a persisted analysis. A document without analysis
// yields an error matching domain.ErrNotFound.
// GET /drive/analyze-document/{fileId}
func (c *Client) GetAnalysis(ctx context.Context, fileID string) (*drive.AnalysisResult, error) {
	endpoint := c.baseURL + "/drive/analyze-document/" + url.PathEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var result drive.AnalysisResult
	if err := c.caller.Do(req, "get_analysis", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkProcessed flags a document as analyzed.
// PATCH /drive/documents/{documentId}
func (c *Client) MarkProcessed(ctx context.Context, documentID int) error {
	endpoint := c.baseURL + "/drive/documents/" + strconv.Itoa(documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, strings.NewReader(`{"processed":true}`))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.caller.Do(req, "mark_processed", nil)
}
