package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", srv.Client())
}

func writeMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o600); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

func TestUploadMedia(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantPending bool
		wantErr     bool
	}{
		{name: "synchronous upload", status: http.StatusOK},
		{name: "asynchronous upload", status: http.StatusAccepted, wantPending: true},
		{name: "rejected upload", status: http.StatusUnprocessableEntity, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/v2/media" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("authorization = %q", got)
				}
				f, hdr, err := r.FormFile("file")
				if err != nil {
					t.Errorf("form file: %v", err)
					return
				}
				data, _ := io.ReadAll(f)
				if diff := cmp.Diff("png-bytes", string(data)); diff != "" {
					t.Errorf("uploaded bytes mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff("preview.png", hdr.Filename); diff != "" {
					t.Errorf("filename mismatch (-want +got):\n%s", diff)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"id":"m1","type":"image"}`))
			})

			up, err := c.UploadMedia(context.Background(), writeMedia(t))
			if tt.wantErr {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := &Upload{Attachment: Attachment{ID: "m1", Type: "image"}, Pending: tt.wantPending}
			if diff := cmp.Diff(want, up); diff != "" {
				t.Errorf("upload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUploadMediaMissingFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "secret", http.DefaultClient)
	if _, err := c.UploadMedia(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGetMedia(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
		wantAPI bool
	}{
		{name: "ready", status: http.StatusOK},
		{name: "still processing", status: http.StatusPartialContent, wantErr: ErrPartialContent},
		{name: "not found", status: http.StatusNotFound, wantAPI: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if diff := cmp.Diff("/api/v1/media/m1", r.URL.Path); diff != "" {
					t.Errorf("path mismatch (-want +got):\n%s", diff)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"id":"m1","type":"image","url":"https://x/m1.png"}`))
			})

			a, err := c.GetMedia(context.Background(), "m1")
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.wantAPI:
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %v", err)
				}
				if diff := cmp.Diff(http.StatusNotFound, apiErr.StatusCode); diff != "" {
					t.Errorf("status mismatch (-want +got):\n%s", diff)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := &Attachment{ID: "m1", Type: "image", URL: "https://x/m1.png"}
				if diff := cmp.Diff(want, a); diff != "" {
					t.Errorf("attachment mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestPostStatus(t *testing.T) {
	var got statusRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/statuses" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		_, _ = w.Write([]byte(`{"id":"s1","url":"https://x/s1"}`))
	})

	st, err := c.PostStatus(context.Background(), "hello", []string{"m1"})
	if err != nil {
		t.Fatalf("post status: %v", err)
	}
	if diff := cmp.Diff(statusRequest{Status: "hello", MediaIDs: []string{"m1"}}, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&Status{ID: "s1", URL: "https://x/s1"}, st); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestPostStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.PostStatus(context.Background(), "hello", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if diff := cmp.Diff(http.StatusTooManyRequests, apiErr.StatusCode); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}
