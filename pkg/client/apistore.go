package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/models"
	"streamverse-backend/pkg/utils"
)

// StatusError 非2xx响应
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

// APIStore talks to the sites HTTP API. It is the remote half of the client's
// fallback chain.
type APIStore struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// DefaultRequestTimeout bounds each API call when no timeout is configured.
const DefaultRequestTimeout = 5 * time.Second

// NewAPIStore 创建API存储
func NewAPIStore(baseURL string, timeout time.Duration) *APIStore {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &APIStore{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

func (s *APIStore) Name() string { return "api" }

// Initialize is a no-op: the server seeds its own store.
func (s *APIStore) Initialize(ctx context.Context) error { return nil }

func (s *APIStore) ListSites(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	if err := s.do(ctx, http.MethodGet, "/api/sites", nil, &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return sites, nil
}

func (s *APIStore) AddSite(ctx context.Context, in models.SiteInput) (*models.Site, error) {
	var site models.Site
	if err := s.do(ctx, http.MethodPost, "/api/sites", in, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *APIStore) UpdateSite(ctx context.Context, id string, in models.SiteInput) (*models.Site, error) {
	var site models.Site
	err := s.do(ctx, http.MethodPut, "/api/sites/"+url.PathEscape(id), in, &site)
	if isNotFound(err) {
		return nil, fmt.Errorf("update site %s: %w", id, database.ErrSiteNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *APIStore) DeleteSite(ctx context.Context, id string) (bool, error) {
	var resp utils.SuccessResponse
	err := s.do(ctx, http.MethodDelete, "/api/sites/"+url.PathEscape(id), nil, &resp)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (s *APIStore) HealthCheck(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/", nil, nil)
}

func (s *APIStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// do 发送请求并解码响应
func (s *APIStore) do(ctx context.Context, method, path string, body, out interface{}) error {
	if s.baseURL == "" {
		return fmt.Errorf("api base url is not configured: %w", database.ErrStoreUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, err, database.ErrStoreUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w: %w", method, path, err, database.ErrStoreUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var errBody utils.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil {
			statusErr.Message = errBody.Error
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
