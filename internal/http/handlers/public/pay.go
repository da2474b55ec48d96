package public

import (
	"net/http"
	"time"

	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/payment/alipay"

	"github.com/gin-gonic/gin"
)

const gatewayTimestampLayout = "2006-01-02 15:04:05"

// PayRequest 商户支付请求
type PayRequest struct {
	MerchantID  string `json:"merchant_id" binding:"required"`
	PayType     string `json:"pay_type" binding:"required"`
	Channel     string `json:"channel" binding:"required"`
	OutTradeNo  string `json:"out_trade_no" binding:"required"`
	TotalAmount string `json:"total_amount" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Timestamp   string `json:"timestamp"`
}

// InitiatePay 发起支付。
// 跳转类结果在这里翻译成 HTTP 302，核心流水线本身不做任何传输副作用。
func (h *Handler) InitiatePay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid pay request")
		return
	}
	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format(gatewayTimestampLayout)
	}

	outcome := h.PayService.InitiatePayment(c.Request.Context(), alipay.Intent{
		MerchantID:  req.MerchantID,
		PayType:     req.PayType,
		Channel:     req.Channel,
		OutTradeNo:  req.OutTradeNo,
		TotalAmount: req.TotalAmount,
		Subject:     req.Subject,
		Timestamp:   timestamp,
	})

	switch {
	case outcome.Redirect:
		c.Redirect(http.StatusFound, outcome.RedirectURL)
	case outcome.Success:
		response.Success(c, gin.H{
			"out_trade_no": req.OutTradeNo,
			"status":       "accepted",
		})
	default:
		response.ErrorWithData(c, failureStatusCode(outcome.Failure), outcome.Detail, gin.H{
			"failure_kind": string(outcome.Failure),
			"out_trade_no": req.OutTradeNo,
		})
	}
}

func failureStatusCode(kind alipay.FailureKind) int {
	switch kind {
	case alipay.FailureConfigurationMissing:
		return response.CodeNotFound
	case alipay.FailureGatewayUnreachable, alipay.FailureGatewayRejected,
		alipay.FailureMissingRedirectLocation:
		return response.CodeBadGateway
	case alipay.FailureInvalidRequest, alipay.FailureCancelled:
		return response.CodeBadRequest
	default:
		return response.CodeInternal
	}
}
