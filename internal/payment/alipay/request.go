package alipay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrRequestInvalid 网关配置缺失或残缺，无法组装出完整请求。
	ErrRequestInvalid = errors.New("alipay request invalid")
	// ErrIntentInvalid 商户传入的支付意图本身不合法。
	ErrIntentInvalid = errors.New("alipay intent invalid")
)

// Intent 商户发起支付的原始意图，只读输入。
type Intent struct {
	MerchantID  string
	PayType     string
	Channel     string
	OutTradeNo  string
	TotalAmount string
	Subject     string
	Timestamp   string
}

// Config 网关侧的商户配置，按 (merchant_id, pay_type, channel) 查得。
type Config struct {
	AppID          string
	GatewayURL     string
	PrivateKey     string
	Charset        string
	SignType       string
	Version        string
	Method         string
	NotifyURL      string
	SellerID       string
	SellerEmail    string
	TimeoutExpress string
	ProductCode    string
}

// BizContent 业务报文体，以 JSON 字符串形式嵌入签名信封。
type BizContent struct {
	OutTradeNo     string `json:"out_trade_no"`
	SellerID       string `json:"seller_id"`
	TotalAmount    string `json:"total_amount"`
	Subject        string `json:"subject"`
	SellerEmail    string `json:"seller_email"`
	TimeoutExpress string `json:"timeout_express"`
	Body           string `json:"body"`
	ProductCode    string `json:"product_code"`
}

// Envelope 参与签名的字段集合。签名时按键名排序，与字段声明顺序无关。
type Envelope struct {
	AppID      string
	Method     string
	Charset    string
	Timestamp  string
	Version    string
	BizContent string
	SignType   string
	NotifyURL  string
}

// Form 最终提交网关的表单，字段顺序固定以兼容网关线上格式。
type Form struct {
	Envelope
	Sign string
}

// FormField 表单中的一个键值对。
type FormField struct {
	Key   string
	Value string
}

// AssembleBizContent 按固定映射组装业务报文体。
// 每个字段都必须能落到 Intent 或 Config 的某个来源字段上，不做默认值兜底。
// 校验失败按来源归因：意图字段报 ErrIntentInvalid，配置字段报 ErrRequestInvalid。
func AssembleBizContent(intent Intent, cfg Config) (BizContent, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(intent.TotalAmount))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return BizContent{}, fmt.Errorf("%w: total_amount %q is invalid", ErrIntentInvalid, intent.TotalAmount)
	}
	biz := BizContent{
		OutTradeNo:     strings.TrimSpace(intent.OutTradeNo),
		SellerID:       cfg.SellerID,
		TotalAmount:    amount.Round(2).StringFixed(2),
		Subject:        strings.TrimSpace(intent.Subject),
		SellerEmail:    cfg.SellerEmail,
		TimeoutExpress: cfg.TimeoutExpress,
		Body:           strings.TrimSpace(intent.Subject),
		ProductCode:    cfg.ProductCode,
	}
	if err := requireAll(ErrIntentInvalid, map[string]string{
		"out_trade_no": biz.OutTradeNo,
		"total_amount": biz.TotalAmount,
		"subject":      biz.Subject,
		"body":         biz.Body,
	}); err != nil {
		return BizContent{}, err
	}
	if err := requireAll(ErrRequestInvalid, map[string]string{
		"seller_id":       biz.SellerID,
		"seller_email":    biz.SellerEmail,
		"timeout_express": biz.TimeoutExpress,
		"product_code":    biz.ProductCode,
	}); err != nil {
		return BizContent{}, err
	}
	return biz, nil
}

// AssembleEnvelope 组装签名信封，biz_content 以序列化后的 JSON 字符串嵌入。
// 签名只覆盖这个字符串本身，之后不再反解或重排。
func AssembleEnvelope(intent Intent, cfg Config, bizContentJSON string) (Envelope, error) {
	envelope := Envelope{
		AppID:      cfg.AppID,
		Method:     cfg.Method,
		Charset:    cfg.Charset,
		Timestamp:  strings.TrimSpace(intent.Timestamp),
		Version:    cfg.Version,
		BizContent: bizContentJSON,
		SignType:   cfg.SignType,
		NotifyURL:  cfg.NotifyURL,
	}
	if err := requireAll(ErrIntentInvalid, map[string]string{
		"timestamp": envelope.Timestamp,
	}); err != nil {
		return Envelope{}, err
	}
	if err := requireAll(ErrRequestInvalid, map[string]string{
		"app_id":      envelope.AppID,
		"method":      envelope.Method,
		"charset":     envelope.Charset,
		"version":     envelope.Version,
		"biz_content": envelope.BizContent,
		"sign_type":   envelope.SignType,
		"notify_url":  envelope.NotifyURL,
	}); err != nil {
		return Envelope{}, err
	}
	return envelope, nil
}

// AssembleForm 把签名附加到信封上，得到最终传输表单。
func AssembleForm(envelope Envelope, sign string) (Form, error) {
	if strings.TrimSpace(sign) == "" {
		return Form{}, fmt.Errorf("%w: sign is empty", ErrRequestInvalid)
	}
	return Form{Envelope: envelope, Sign: sign}, nil
}

// MarshalBizContent 序列化业务报文体。
func MarshalBizContent(biz BizContent) (string, error) {
	data, err := json.Marshal(biz)
	if err != nil {
		return "", fmt.Errorf("%w: marshal biz_content failed", ErrRequestInvalid)
	}
	return string(data), nil
}

// SignParams 返回参与签名的参数映射，供规范化使用。
func (e Envelope) SignParams() map[string]string {
	return map[string]string{
		"app_id":      e.AppID,
		"method":      e.Method,
		"charset":     e.Charset,
		"timestamp":   e.Timestamp,
		"version":     e.Version,
		"biz_content": e.BizContent,
		"sign_type":   e.SignType,
		"notify_url":  e.NotifyURL,
	}
}

// Fields 返回线上格式约定顺序的表单字段。
func (f Form) Fields() []FormField {
	return []FormField{
		{Key: "app_id", Value: f.AppID},
		{Key: "method", Value: f.Method},
		{Key: "charset", Value: f.Charset},
		{Key: "timestamp", Value: f.Timestamp},
		{Key: "version", Value: f.Version},
		{Key: "biz_content", Value: f.BizContent},
		{Key: "sign_type", Value: f.SignType},
		{Key: "notify_url", Value: f.NotifyURL},
		{Key: "sign", Value: f.Sign},
	}
}

func requireAll(sentinel error, fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", sentinel, name)
		}
	}
	return nil
}
