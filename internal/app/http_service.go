package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPService 对外 API 的 HTTP 服务，生命周期交给 Runner 托管。
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务。
// 请求头读取设上限，防止慢客户端占住连接；
// 业务超时由网关客户端和各 handler 自行控制。
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "http"
}

// Start 阻塞监听直到服务被关闭。正常关闭不算错误。
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭，等待在途支付请求完成或超时
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
