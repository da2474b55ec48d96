package public

import "github.com/paygate-next/internal/provider"

// Handler 商户侧 API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建商户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
