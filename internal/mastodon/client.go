// Package mastodon is a minimal client for the Mastodon-compatible REST API
// exposed by Pleroma and Mastodon instances.
package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const userAgent = "pleroma-rss/1.0"

// ErrPartialContent is returned by GetMedia while the server is still
// processing an upload.
var ErrPartialContent = errors.New("media is still being processed")

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-success response from the instance.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Attachment is an uploaded media object.
type Attachment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Upload is the result of a media upload. Pending uploads must be polled
// with GetMedia until they are ready.
type Upload struct {
	Attachment
	Pending bool
}

// Status is a published post.
type Status struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client talks to a single instance on behalf of one account.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
}

// NewClient creates a client for the instance at baseURL. A trailing slash
// on baseURL is ignored.
func NewClient(baseURL, token string, httpClient HTTPClient) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// UploadMedia uploads the file at path. The server either returns the ready
// attachment or accepts it for asynchronous processing.
func (c *Client) UploadMedia(ctx context.Context, path string) (*Upload, error) {
	f, err := os.Open(path) //nolint:gosec // path is produced by the preview renderer
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy media: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v2/media", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		return nil, &APIError{StatusCode: status, Body: string(respBody)}
	}

	var up Upload
	if err := json.Unmarshal(respBody, &up.Attachment); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	up.Pending = status == http.StatusAccepted
	return &up, nil
}

// GetMedia fetches an attachment by id. It returns ErrPartialContent while
// the attachment is still being processed.
func (c *Client) GetMedia(ctx context.Context, id string) (*Attachment, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/media/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	status, respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusPartialContent:
		return nil, ErrPartialContent
	default:
		return nil, &APIError{StatusCode: status, Body: string(respBody)}
	}

	var a Attachment
	if err := json.Unmarshal(respBody, &a); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &a, nil
}

type statusRequest struct {
	Status   string   `json:"status"`
	MediaIDs []string `json:"media_ids,omitempty"`
}

// PostStatus publishes a status with the given text and attachments.
func (c *Client) PostStatus(ctx context.Context, text string, mediaIDs []string) (*Status, error) {
	payload, err := json.Marshal(statusRequest{Status: text, MediaIDs: mediaIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/statuses", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Body: string(respBody)}
	}

	var st Status
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &st); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return &st, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
