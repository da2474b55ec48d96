package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
)

// CachedPayConfigRepository 在仓库前面加一层 Redis 缓存。
// 写路径（Create/Update/Delete）显式失效对应缓存键；
// Redis 不可用时退化为直查数据库。
type CachedPayConfigRepository struct {
	inner repository.PayConfigRepository
	ttl   time.Duration
}

// NewCachedPayConfigRepository 创建带缓存的支付配置仓库
func NewCachedPayConfigRepository(inner repository.PayConfigRepository, ttl time.Duration) *CachedPayConfigRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedPayConfigRepository{inner: inner, ttl: ttl}
}

// Create 创建支付配置并失效缓存
func (r *CachedPayConfigRepository) Create(cfg *models.PayConfig) error {
	if err := r.inner.Create(cfg); err != nil {
		return err
	}
	r.invalidate(cfg)
	return nil
}

// Update 更新支付配置并失效缓存。
// 键字段（商户号/支付类型/渠道）可能被改动，旧键下缓存的还是
// 更新前的配置（含旧私钥），必须和新键一起失效。
func (r *CachedPayConfigRepository) Update(cfg *models.PayConfig) error {
	old, err := r.inner.GetByID(cfg.ID)
	if err != nil {
		return err
	}
	if err := r.inner.Update(cfg); err != nil {
		return err
	}
	r.invalidate(old, cfg)
	return nil
}

// Delete 删除支付配置并失效缓存
func (r *CachedPayConfigRepository) Delete(id uint) error {
	cfg, err := r.inner.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.inner.Delete(id); err != nil {
		return err
	}
	r.invalidate(cfg)
	return nil
}

// GetByID 根据 ID 获取支付配置（不走缓存）
func (r *CachedPayConfigRepository) GetByID(id uint) (*models.PayConfig, error) {
	return r.inner.GetByID(id)
}

// FindByKey 优先读缓存，未命中回源并回填
func (r *CachedPayConfigRepository) FindByKey(merchantID, payType, channel string) (*models.PayConfig, error) {
	ctx := context.Background()
	key := payConfigKey(merchantID, payType, channel)

	var cached cachedPayConfig
	hit, err := GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("pay_config_cache_read_failed", "key", key, "error", err)
	} else if hit {
		return cached.toModel(), nil
	}

	cfg, err := r.inner.FindByKey(merchantID, payType, channel)
	if err != nil || cfg == nil {
		return cfg, err
	}
	if err := SetJSON(ctx, key, newCachedPayConfig(cfg), r.ttl); err != nil {
		logger.Warnw("pay_config_cache_write_failed", "key", key, "error", err)
	}
	return cfg, nil
}

// List 支付配置列表（不走缓存）
func (r *CachedPayConfigRepository) List(filter repository.PayConfigListFilter) ([]models.PayConfig, int64, error) {
	return r.inner.List(filter)
}

func (r *CachedPayConfigRepository) invalidate(cfgs ...*models.PayConfig) {
	keys := invalidationKeys(cfgs...)
	if len(keys) == 0 {
		return
	}
	if err := Delete(context.Background(), keys...); err != nil {
		logger.Warnw("pay_config_cache_invalidate_failed", "keys", keys, "error", err)
	}
}

// invalidationKeys 收集去重后的缓存键集合
func invalidationKeys(cfgs ...*models.PayConfig) []string {
	keys := make([]string, 0, len(cfgs))
	seen := make(map[string]struct{}, len(cfgs))
	for _, cfg := range cfgs {
		if cfg == nil {
			continue
		}
		key := payConfigKey(cfg.MerchantID, cfg.PayType, cfg.Channel)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func payConfigKey(merchantID, payType, channel string) string {
	return fmt.Sprintf("pay_config:%s:%s:%s", merchantID, payType, channel)
}

// cachedPayConfig 缓存记录。模型上的 PrivateKey 带 json:"-"，
// 直接序列化模型会在回程时丢掉私钥，这里用显式字段承载。
type cachedPayConfig struct {
	ID             uint   `json:"id"`
	MerchantID     string `json:"merchant_id"`
	PayType        string `json:"pay_type"`
	Channel        string `json:"channel"`
	AppID          string `json:"app_id"`
	GatewayURL     string `json:"gateway_url"`
	PrivateKey     string `json:"private_key"`
	Charset        string `json:"charset"`
	SignType       string `json:"sign_type"`
	Version        string `json:"version"`
	Method         string `json:"method"`
	NotifyURL      string `json:"notify_url"`
	SellerID       string `json:"seller_id"`
	SellerEmail    string `json:"seller_email"`
	TimeoutExpress string `json:"timeout_express"`
	ProductCode    string `json:"product_code"`
	IsActive       bool   `json:"is_active"`
}

func newCachedPayConfig(cfg *models.PayConfig) cachedPayConfig {
	return cachedPayConfig{
		ID:             cfg.ID,
		MerchantID:     cfg.MerchantID,
		PayType:        cfg.PayType,
		Channel:        cfg.Channel,
		AppID:          cfg.AppID,
		GatewayURL:     cfg.GatewayURL,
		PrivateKey:     cfg.PrivateKey,
		Charset:        cfg.Charset,
		SignType:       cfg.SignType,
		Version:        cfg.Version,
		Method:         cfg.Method,
		NotifyURL:      cfg.NotifyURL,
		SellerID:       cfg.SellerID,
		SellerEmail:    cfg.SellerEmail,
		TimeoutExpress: cfg.TimeoutExpress,
		ProductCode:    cfg.ProductCode,
		IsActive:       cfg.IsActive,
	}
}

func (c cachedPayConfig) toModel() *models.PayConfig {
	return &models.PayConfig{
		ID:             c.ID,
		MerchantID:     c.MerchantID,
		PayType:        c.PayType,
		Channel:        c.Channel,
		AppID:          c.AppID,
		GatewayURL:     c.GatewayURL,
		PrivateKey:     c.PrivateKey,
		Charset:        c.Charset,
		SignType:       c.SignType,
		Version:        c.Version,
		Method:         c.Method,
		NotifyURL:      c.NotifyURL,
		SellerID:       c.SellerID,
		SellerEmail:    c.SellerEmail,
		TimeoutExpress: c.TimeoutExpress,
		ProductCode:    c.ProductCode,
		IsActive:       c.IsActive,
	}
}
