package rpc

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

	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/models"
)

// HTTPClient 定义HTTP客户端接口
type HTTPClient interface {
	Get(ctx context.Context, path string, params map[string]interface{}) (*HTTPResponse, error)
	Post(ctx context.Context, path string, data interface{}) (*HTTPResponse, error)
	Close() error
}

// HTTPConfig 定义HTTP客户端配置
type HTTPConfig struct {
	Address string        // unix socket 路径 (Network 为 unix 时)
	Network string        // unix,tcp
	Timeout time.Duration // 默认超时时间
	BaseURL string        // 基础URL
}

// DefaultHTTPConfig 返回默认HTTP客户端配置
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Network: "tcp",
		Timeout: 10 * time.Second,
		BaseURL: "http://127.0.0.1:8000",
	}
}

// ConfigFromBackend builds a client config from the [backend] section.
func ConfigFromBackend(cfg *config.BackendConfig) *HTTPConfig {
	c := DefaultHTTPConfig()
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Network != "" {
		c.Network = cfg.Network
	}
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	c.Address = cfg.Address
	return c
}

// HTTPResponse 定义HTTP响应结构
type HTTPResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Error      string              `json:"error"`
}

// OK reports a 2xx status.
func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *HTTPResponse) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Err converts a non-2xx response into an *APIError, nil otherwise.
func (r *HTTPResponse) Err() error {
	if r.OK() {
		return nil
	}
	return &APIError{StatusCode: r.StatusCode, Detail: r.Error}
}

// APIError is an application level failure reported by the backend.
// Detail holds the server provided message and may be empty.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// buildURL 构建完整的URL
func buildURL(baseURL, path string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	// 添加路径
	if u.Path == "" {
		u.Path = path
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	// 添加查询参数
	if params != nil {
		q := u.Query()
		for key, value := range params {
			switch v := value.(type) {
			case string:
				q.Set(key, v)
			case []int:
				for _, n := range v {
					q.Add(key, fmt.Sprintf("%d", n))
				}
			case []string:
				for _, s := range v {
					q.Add(key, s)
				}
			case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
				q.Set(key, fmt.Sprintf("%d", v))
			case bool:
				q.Set(key, fmt.Sprintf("%t", v))
			default:
				q.Set(key, fmt.Sprintf("%v", v))
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// serializeData 序列化请求数据
func serializeData(data interface{}) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}

	return bytes.NewReader(jsonData), nil
}

// deserializeResponse 反序列化响应数据
func deserializeResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()
	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	httpResp.Body = body
	if httpResp.OK() {
		return httpResp, nil
	}
	// 非2xx响应: 优先使用编排服务的 detail, 其次是仪表盘自身的 error
	if len(body) > 0 {
		var errBody struct {
			models.DetailResponse
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errBody); err == nil {
			httpResp.Error = errBody.Detail
			if httpResp.Error == "" {
				httpResp.Error = errBody.Error
			}
		}
	}
	return httpResp, nil
}

// Call sends a request and turns a non-2xx status into an *APIError.
func Call(ctx context.Context, c HTTPClient, method, path string, data interface{}) (*HTTPResponse, error) {
	var (
		resp *HTTPResponse
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = c.Get(ctx, path, nil)
	case http.MethodPost:
		resp, err = c.Post(ctx, path, data)
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}
	return resp, nil
}
