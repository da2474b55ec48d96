package alipay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrGatewayUnreachable = errors.New("alipay gateway unreachable")

const (
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 30 * time.Second
)

// ClientOptions 网关客户端超时配置。
type ClientOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client 网关客户端，单次同步提交，不重试。
// 连接池可在并发请求间共享，但每次支付尝试只允许一次网络调用。
type Client struct {
	httpClient *http.Client
}

// Response 网关的原始响应。
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewClient 创建网关客户端。
// 不跟随重定向：wap 类方法的结果就在 Location 头里。
func NewClient(opts ClientOptions) *Client {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}
	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   readTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Submit 以 URL 编码表单提交签名后的支付请求。
func (c *Client) Submit(ctx context.Context, endpoint string, form Form) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: empty endpoint", ErrGatewayUnreachable)
	}
	values := url.Values{}
	for _, field := range form.Fields() {
		if field.Value == "" {
			continue
		}
		values.Set(field.Key, field.Value)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrGatewayUnreachable)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset="+charsetOrDefault(form.Charset))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrGatewayUnreachable)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func charsetOrDefault(charset string) string {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		return "utf-8"
	}
	return charset
}
