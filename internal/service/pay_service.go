package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment/alipay"
	"github.com/paygate-next/internal/repository"
)

var ErrPayConfigNotFound = errors.New("pay config not found")

// PayService 支付发起服务，整条签名提交流水线的边界。
// 每次支付尝试无共享可变状态，任何组件故障都在这里收敛为
// 带类型的失败结果，调用方不会收到未处理的异常。
type PayService struct {
	payConfigRepo repository.PayConfigRepository
	client        *alipay.Client
}

// NewPayService 创建支付服务实例
func NewPayService(payConfigRepo repository.PayConfigRepository, client *alipay.Client) *PayService {
	return &PayService{
		payConfigRepo: payConfigRepo,
		client:        client,
	}
}

// InitiatePayment 发起一次支付：查配置 → 组装 → 规范化 → 签名 → 提交 → 解读。
// 签名只计算一次，网络调用至多一次，失败不自动重试。
func (s *PayService) InitiatePayment(ctx context.Context, intent alipay.Intent) (outcome alipay.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("pay_pipeline_panic",
				"merchant_id", intent.MerchantID,
				"out_trade_no", intent.OutTradeNo,
				"panic", fmt.Sprint(r),
			)
			outcome = alipay.Fail(alipay.FailureSigning, "internal pipeline fault")
		}
	}()

	payConfig, err := s.payConfigRepo.FindByKey(intent.MerchantID, intent.PayType, intent.Channel)
	if err != nil {
		logger.Errorw("pay_config_lookup_failed",
			"merchant_id", intent.MerchantID,
			"pay_type", intent.PayType,
			"channel", intent.Channel,
			"error", err,
		)
		return alipay.Fail(alipay.FailureConfigurationMissing, "config lookup failed")
	}
	if payConfig == nil {
		return alipay.Fail(alipay.FailureConfigurationMissing,
			fmt.Sprintf("no pay config for merchant %s type %s channel %s",
				intent.MerchantID, intent.PayType, intent.Channel))
	}
	cfg := toGatewayConfig(payConfig)

	form, err := buildSignedForm(intent, cfg)
	if err != nil {
		logger.Errorw("pay_request_build_failed",
			"merchant_id", intent.MerchantID,
			"out_trade_no", intent.OutTradeNo,
			"method", cfg.Method,
			"error", err,
		)
		return failureFromError(err)
	}

	resp, err := s.client.Submit(ctx, cfg.GatewayURL, form)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return alipay.Fail(alipay.FailureCancelled, "request cancelled by caller")
		}
		logger.Errorw("pay_gateway_submit_failed",
			"merchant_id", intent.MerchantID,
			"out_trade_no", intent.OutTradeNo,
			"gateway", cfg.GatewayURL,
			"method", cfg.Method,
			"error", err,
		)
		return alipay.Fail(alipay.FailureGatewayUnreachable, "gateway request failed")
	}

	outcome = alipay.Interpret(cfg, resp)
	logger.Infow("pay_attempt_finished",
		"merchant_id", intent.MerchantID,
		"out_trade_no", intent.OutTradeNo,
		"method", cfg.Method,
		"success", outcome.Success,
		"redirect", outcome.Redirect,
		"failure", string(outcome.Failure),
	)
	return outcome
}

// buildSignedForm 组装并签名，不触网。
func buildSignedForm(intent alipay.Intent, cfg alipay.Config) (alipay.Form, error) {
	biz, err := alipay.AssembleBizContent(intent, cfg)
	if err != nil {
		return alipay.Form{}, err
	}
	bizJSON, err := alipay.MarshalBizContent(biz)
	if err != nil {
		return alipay.Form{}, err
	}
	envelope, err := alipay.AssembleEnvelope(intent, cfg, bizJSON)
	if err != nil {
		return alipay.Form{}, err
	}
	signContent := alipay.BuildSignContent(envelope.SignParams())
	sign, err := alipay.SignContent(signContent, cfg.PrivateKey, cfg.SignType, cfg.Charset)
	if err != nil {
		return alipay.Form{}, err
	}
	return alipay.AssembleForm(envelope, sign)
}

func failureFromError(err error) alipay.Outcome {
	switch {
	case errors.Is(err, alipay.ErrKeyInvalid):
		return alipay.Fail(alipay.FailureInvalidKeyMaterial, "private key unusable")
	case errors.Is(err, alipay.ErrSignFailed):
		return alipay.Fail(alipay.FailureSigning, "sign computation failed")
	case errors.Is(err, alipay.ErrIntentInvalid):
		// 商户传参问题，和配置缺失分开归因
		return alipay.Fail(alipay.FailureInvalidRequest, err.Error())
	case errors.Is(err, alipay.ErrRequestInvalid):
		return alipay.Fail(alipay.FailureConfigurationMissing, err.Error())
	default:
		return alipay.Fail(alipay.FailureSigning, "request build failed")
	}
}

func toGatewayConfig(m *models.PayConfig) alipay.Config {
	return alipay.Config{
		AppID:          m.AppID,
		GatewayURL:     m.GatewayURL,
		PrivateKey:     m.PrivateKey,
		Charset:        m.Charset,
		SignType:       m.SignType,
		Version:        m.Version,
		Method:         m.Method,
		NotifyURL:      m.NotifyURL,
		SellerID:       m.SellerID,
		SellerEmail:    m.SellerEmail,
		TimeoutExpress: m.TimeoutExpress,
		ProductCode:    m.ProductCode,
	}
}
