package rpc

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"tunnel-dashboard/internal/logger"
)

// httpClient HTTP客户端实现
type httpClient struct {
	config    *HTTPConfig
	client    *http.Client
	transport *http.Transport
	mu        sync.Mutex
}

/**
 * Create new HTTP client for the tunnel orchestrator
 * @param {HTTPConfig} config - HTTP client configuration
 * @returns {HTTPClient} HTTP client interface
 * @description
 * - Sets default configuration if none provided
 * - Dials a unix socket when Network is "unix", TCP otherwise
 * - Every request is bounded by config.Timeout on top of the caller's context
 * @example
 * client := NewHTTPClient(ConfigFromBackend(&cfg.Backend))
 * defer client.Close()
 */
func NewHTTPClient(config *HTTPConfig) HTTPClient {
	if config == nil {
		config = DefaultHTTPConfig()
	}

	c := &httpClient{
		config:    config,
		transport: http.DefaultTransport.(*http.Transport).Clone(),
	}

	if config.Network == "unix" {
		socketPath := config.Address
		dialer := &net.Dialer{}
		c.transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", socketPath)
		}
	}

	c.client = &http.Client{
		Transport: c.transport,
		Timeout:   config.Timeout,
	}
	return c
}

// Get 发送GET请求
/**
 * Send GET request to the backend
 * @param {context.Context} ctx - Cancels the request
 * @param {string} path - API endpoint path
 * @param {map[string]interface{}} params - Query parameters
 * @returns {*HTTPResponse} Response with status, headers and raw body
 * @returns {error} Transport error; a non-2xx status is not an error here
 */
func (c *httpClient) Get(ctx context.Context, path string, params map[string]interface{}) (*HTTPResponse, error) {
	url, err := buildURL(c.config.BaseURL, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	logger.Debugf("Sending GET request to %s", url)
	return c.do(ctx, http.MethodGet, url, nil)
}

// Post 发送POST请求
/**
 * Send POST request with a JSON body to the backend
 * @param {context.Context} ctx - Cancels the request
 * @param {string} path - API endpoint path
 * @param {interface{}} data - Request body data, serialized as JSON
 * @returns {*HTTPResponse} Response with status, headers and raw body
 * @returns {error} Serialization or transport error
 */
func (c *httpClient) Post(ctx context.Context, path string, data interface{}) (*HTTPResponse, error) {
	url, err := buildURL(c.config.BaseURL, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	body, err := serializeData(data)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Sending POST request to %s", url)
	return c.do(ctx, http.MethodPost, url, body)
}

func (c *httpClient) do(ctx context.Context, method, url string, body io.Reader) (*HTTPResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	httpResp, err := deserializeResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize response: %w", err)
	}
	return httpResp, nil
}

// Close 关闭空闲连接
func (c *httpClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	logger.Debugf("HTTP client connection closed")
	return nil
}
