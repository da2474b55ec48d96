package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment/alipay"
	"github.com/paygate-next/internal/repository"
)

var (
	ErrConfigInvalid   = errors.New("pay config invalid")
	ErrConfigConflict  = errors.New("pay config already exists")
	ErrConfigNotExists = errors.New("pay config not exists")
)

// ConfigService 支付配置管理服务
type ConfigService struct {
	payConfigRepo repository.PayConfigRepository
}

// NewConfigService 创建支付配置管理服务实例
func NewConfigService(payConfigRepo repository.PayConfigRepository) *ConfigService {
	return &ConfigService{payConfigRepo: payConfigRepo}
}

// PayConfigInput 创建/更新支付配置的输入
type PayConfigInput struct {
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
	IsActive       *bool  `json:"is_active"`
}

// Create 创建支付配置
func (s *ConfigService) Create(input PayConfigInput) (*models.PayConfig, error) {
	cfg, err := buildPayConfig(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.payConfigRepo.FindByKey(cfg.MerchantID, cfg.PayType, cfg.Channel)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrConfigConflict, cfg.MerchantID, cfg.PayType, cfg.Channel)
	}
	if err := s.payConfigRepo.Create(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Update 更新支付配置
func (s *ConfigService) Update(id uint, input PayConfigInput) (*models.PayConfig, error) {
	existing, err := s.payConfigRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrConfigNotExists
	}
	cfg, err := buildPayConfig(input)
	if err != nil {
		return nil, err
	}
	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	if err := s.payConfigRepo.Update(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Delete 删除支付配置
func (s *ConfigService) Delete(id uint) error {
	existing, err := s.payConfigRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrConfigNotExists
	}
	return s.payConfigRepo.Delete(id)
}

// Get 获取支付配置
func (s *ConfigService) Get(id uint) (*models.PayConfig, error) {
	cfg, err := s.payConfigRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrConfigNotExists
	}
	return cfg, nil
}

// List 支付配置列表
func (s *ConfigService) List(filter repository.PayConfigListFilter) ([]models.PayConfig, int64, error) {
	return s.payConfigRepo.List(filter)
}

// buildPayConfig 校验输入并归一化为模型。
// 私钥只做可解析性校验，不回显。
func buildPayConfig(input PayConfigInput) (*models.PayConfig, error) {
	cfg := &models.PayConfig{
		MerchantID:     strings.TrimSpace(input.MerchantID),
		PayType:        strings.ToLower(strings.TrimSpace(input.PayType)),
		Channel:        strings.ToLower(strings.TrimSpace(input.Channel)),
		AppID:          strings.TrimSpace(input.AppID),
		GatewayURL:     strings.TrimSpace(input.GatewayURL),
		PrivateKey:     strings.TrimSpace(input.PrivateKey),
		Charset:        strings.ToLower(strings.TrimSpace(input.Charset)),
		SignType:       strings.ToUpper(strings.TrimSpace(input.SignType)),
		Version:        strings.TrimSpace(input.Version),
		Method:         strings.TrimSpace(input.Method),
		NotifyURL:      strings.TrimSpace(input.NotifyURL),
		SellerID:       strings.TrimSpace(input.SellerID),
		SellerEmail:    strings.TrimSpace(input.SellerEmail),
		TimeoutExpress: strings.TrimSpace(input.TimeoutExpress),
		ProductCode:    strings.TrimSpace(input.ProductCode),
		IsActive:       true,
	}
	if input.IsActive != nil {
		cfg.IsActive = *input.IsActive
	}
	if cfg.Charset == "" {
		cfg.Charset = constants.CharsetUTF8
	}
	if cfg.SignType == "" {
		cfg.SignType = constants.SignTypeRSA2
	}
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}

	required := map[string]string{
		"merchant_id":     cfg.MerchantID,
		"pay_type":        cfg.PayType,
		"channel":         cfg.Channel,
		"app_id":          cfg.AppID,
		"gateway_url":     cfg.GatewayURL,
		"private_key":     cfg.PrivateKey,
		"method":          cfg.Method,
		"notify_url":      cfg.NotifyURL,
		"seller_id":       cfg.SellerID,
		"seller_email":    cfg.SellerEmail,
		"timeout_express": cfg.TimeoutExpress,
		"product_code":    cfg.ProductCode,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrConfigInvalid, name)
		}
	}
	if cfg.SignType != constants.SignTypeRSA && cfg.SignType != constants.SignTypeRSA2 {
		return nil, fmt.Errorf("%w: sign_type %s is not supported", ErrConfigInvalid, cfg.SignType)
	}
	if _, err := url.ParseRequestURI(cfg.GatewayURL); err != nil {
		return nil, fmt.Errorf("%w: gateway_url is invalid", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(cfg.NotifyURL); err != nil {
		return nil, fmt.Errorf("%w: notify_url is invalid", ErrConfigInvalid)
	}
	if _, err := alipay.ParsePrivateKey(cfg.PrivateKey); err != nil {
		return nil, fmt.Errorf("%w: private_key is not a parsable rsa key", ErrConfigInvalid)
	}
	return cfg, nil
}
