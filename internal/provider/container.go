package provider

import (
	"time"

	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment/alipay"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	AdminRepo     repository.AdminRepository
	PayConfigRepo repository.PayConfigRepository

	// Services
	AuthService   *service.AuthService
	ConfigService *service.ConfigService
	PayService    *service.PayService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}

	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)

	// 支付配置读路径挂缓存，写路径显式失效
	payConfigRepo := repository.NewPayConfigRepository(db)
	c.PayConfigRepo = cache.NewCachedPayConfigRepository(
		payConfigRepo,
		time.Duration(cfg.Gateway.ConfigCacheTTL)*time.Second,
	)

	gatewayClient := alipay.NewClient(alipay.ClientOptions{
		ConnectTimeout: cfg.Gateway.ConnectTimeout(),
		ReadTimeout:    cfg.Gateway.ReadTimeout(),
	})

	c.AuthService = service.NewAuthService(cfg, c.AdminRepo)
	c.ConfigService = service.NewConfigService(c.PayConfigRepo)
	c.PayService = service.NewPayService(c.PayConfigRepo, gatewayClient)

	return c
}
