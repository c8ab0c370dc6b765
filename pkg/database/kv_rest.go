package database

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
)

// RESTKVClient talks to a Vercel KV / Upstash Redis REST endpoint.
type RESTKVClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ KVClient = (*RESTKVClient)(nil)

// restResult Upstash REST 响应结构
type restResult struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// NewRESTKVClient 创建KV REST客户端
func NewRESTKVClient(baseURL, token string) *RESTKVClient {
	// 确保URL格式正确
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}

	return &RESTKVClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// makeRequest 发送HTTP请求到KV REST API
func (c *RESTKVClient) makeRequest(ctx context.Context, method, endpoint string, body []byte) (*restResult, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w: %w", err, ErrStoreUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result restResult
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil && resp.StatusCode < 400 {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		msg := result.Error
		if msg == "" {
			msg = string(respBody)
		}
		return nil, fmt.Errorf("KV request failed with status %d: %s: %w", resp.StatusCode, msg, ErrStoreUnavailable)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("KV request failed: %s: %w", result.Error, ErrStoreUnavailable)
	}

	return &result, nil
}

// Get 读取键值；键不存在时 ok=false
func (c *RESTKVClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := c.makeRequest(ctx, http.MethodGet, "/get/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, false, err
	}

	if len(result.Result) == 0 || string(result.Result) == "null" {
		return nil, false, nil
	}

	// 值以JSON字符串形式存放
	var value string
	if err := json.Unmarshal(result.Result, &value); err != nil {
		return nil, false, fmt.Errorf("unexpected value for %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set 写入键值
func (c *RESTKVClient) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.makeRequest(ctx, http.MethodPost, "/set/"+url.PathEscape(key), value)
	return err
}

// Ping 检查连通性
func (c *RESTKVClient) Ping(ctx context.Context) error {
	result, err := c.makeRequest(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return err
	}
	var pong string
	if err := json.Unmarshal(result.Result, &pong); err != nil || !strings.EqualFold(pong, "PONG") {
		return fmt.Errorf("unexpected ping reply %s: %w", string(result.Result), ErrStoreUnavailable)
	}
	return nil
}

// Close 关闭连接（HTTP客户端无需关闭）
func (c *RESTKVClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
