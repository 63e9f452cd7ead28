package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/logging"
	"github.com/manav03panchal/studylog/internal/model"
)

// RemoteRepo talks to another studylog instance running "studylog serve".
type RemoteRepo struct {
	baseURL string
	client  *http.Client
}

var _ Repository = (*RemoteRepo)(nil)

// remoteError mirrors the API's error body.
type remoteError struct {
	Error string `json:"error"`
}

// NewRemoteRepo creates a repository for the API rooted at baseURL.
// A zero timeout leaves requests bounded only by their context.
func NewRemoteRepo(baseURL string, timeout time.Duration) (*RemoteRepo, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url must be http or https, got %q", baseURL)
	}
	return &RemoteRepo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// List fetches all records.
func (r *RemoteRepo) List(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	if err := r.do(ctx, errors.OpList, http.MethodGet, "/records", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// Create posts a new record.
func (r *RemoteRepo) Create(ctx context.Context, fields model.RecordFields) error {
	return r.do(ctx, errors.OpCreate, http.MethodPost, "/records", fields, nil)
}

// Update replaces a record's fields.
func (r *RemoteRepo) Update(ctx context.Context, id string, fields model.RecordFields) error {
	return r.do(ctx, errors.OpUpdate, http.MethodPut, "/records/"+url.PathEscape(id), fields, nil)
}

// Delete removes a record.
func (r *RemoteRepo) Delete(ctx context.Context, id string) error {
	return r.do(ctx, errors.OpDelete, http.MethodDelete, "/records/"+url.PathEscape(id), nil, nil)
}

// Ping checks the remote health endpoint.
func (r *RemoteRepo) Ping(ctx context.Context) error {
	return r.do(ctx, errors.OpList, http.MethodGet, "/health", nil, nil)
}

func (r *RemoteRepo) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.NewRepositoryError(op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return errors.NewRepositoryError(op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.IntentIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.NewRepositoryError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && path != "/health" {
		return errors.NewRepositoryError(op, errors.ErrRecordNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.RepositoryError{
			Op:      op,
			Message: readRemoteError(resp),
			Cause:   fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewRepositoryError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func readRemoteError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e remoteError
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return resp.Status
}
