package models

import (
	"time"

	"gorm.io/gorm"
)

// PayConfig 商户支付配置，按 (merchant_id, pay_type, channel) 唯一。
// PrivateKey 永远不出现在 JSON 序列化结果里。
type PayConfig struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                              // 主键
	MerchantID     string         `gorm:"not null;uniqueIndex:idx_pay_config_key" json:"merchant_id"`        // 商户号
	PayType        string         `gorm:"not null;uniqueIndex:idx_pay_config_key" json:"pay_type"`           // 支付机构类型（alipay）
	Channel        string         `gorm:"not null;uniqueIndex:idx_pay_config_key" json:"channel"`            // 支付渠道（app/wap/web）
	AppID          string         `gorm:"not null" json:"app_id"`                                            // 网关分配的应用 ID
	GatewayURL     string         `gorm:"not null" json:"gateway_url"`                                       // 网关地址
	PrivateKey     string         `gorm:"not null;type:text" json:"-"`                                       // 商户私钥（不返回给前端）
	Charset        string         `gorm:"not null;default:utf-8" json:"charset"`                             // 字符集
	SignType       string         `gorm:"not null;default:RSA2" json:"sign_type"`                            // 签名类型
	Version        string         `gorm:"not null;default:1.0" json:"version"`                               // 接口版本
	Method         string         `gorm:"not null" json:"method"`                                            // 网关接口方法
	NotifyURL      string         `gorm:"not null" json:"notify_url"`                                        // 异步通知地址
	SellerID       string         `gorm:"not null" json:"seller_id"`                                         // 收款方 ID
	SellerEmail    string         `gorm:"not null" json:"seller_email"`                                      // 收款方邮箱
	TimeoutExpress string         `gorm:"not null" json:"timeout_express"`                                   // 订单超时时长
	ProductCode    string         `gorm:"not null" json:"product_code"`                                      // 产品码
	// 不带 default 标签：gorm 对带默认值的零值字段会跳过写入，
	// false 会被悄悄落成 true。启用状态始终由调用方显式赋值。
	IsActive       bool           `gorm:"not null" json:"is_active"`                                         // 是否启用
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间
}

// TableName 指定表名
func (PayConfig) TableName() string {
	return "pay_configs"
}
