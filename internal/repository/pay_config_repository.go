package repository

import (
	"errors"

	"github.com/paygate-next/internal/models"

	"gorm.io/gorm"
)

// PayConfigRepository 支付配置数据访问接口
type PayConfigRepository interface {
	Create(cfg *models.PayConfig) error
	Update(cfg *models.PayConfig) error
	Delete(id uint) error
	GetByID(id uint) (*models.PayConfig, error)
	FindByKey(merchantID, payType, channel string) (*models.PayConfig, error)
	List(filter PayConfigListFilter) ([]models.PayConfig, int64, error)
}

// PayConfigListFilter 支付配置列表过滤条件
type PayConfigListFilter struct {
	MerchantID string
	PayType    string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// GormPayConfigRepository GORM 实现
type GormPayConfigRepository struct {
	db *gorm.DB
}

// NewPayConfigRepository 创建支付配置仓库
func NewPayConfigRepository(db *gorm.DB) *GormPayConfigRepository {
	return &GormPayConfigRepository{db: db}
}

// Create 创建支付配置
func (r *GormPayConfigRepository) Create(cfg *models.PayConfig) error {
	return r.db.Create(cfg).Error
}

// Update 更新支付配置
func (r *GormPayConfigRepository) Update(cfg *models.PayConfig) error {
	return r.db.Save(cfg).Error
}

// Delete 删除支付配置
func (r *GormPayConfigRepository) Delete(id uint) error {
	return r.db.Delete(&models.PayConfig{}, id).Error
}

// GetByID 根据 ID 获取支付配置
func (r *GormPayConfigRepository) GetByID(id uint) (*models.PayConfig, error) {
	var cfg models.PayConfig
	if err := r.db.First(&cfg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// FindByKey 根据商户号、支付类型和渠道查询启用的支付配置
func (r *GormPayConfigRepository) FindByKey(merchantID, payType, channel string) (*models.PayConfig, error) {
	var cfg models.PayConfig
	err := r.db.
		Where("merchant_id = ? AND pay_type = ? AND channel = ? AND is_active = ?",
			merchantID, payType, channel, true).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// List 支付配置列表
func (r *GormPayConfigRepository) List(filter PayConfigListFilter) ([]models.PayConfig, int64, error) {
	query := r.db.Model(&models.PayConfig{})

	if filter.MerchantID != "" {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.PayType != "" {
		query = query.Where("pay_type = ?", filter.PayType)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var configs []models.PayConfig
	if err := query.Order("id ASC").Find(&configs).Error; err != nil {
		return nil, 0, err
	}
	return configs, total, nil
}
