package alipay

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/paygate-next/internal/constants"
)

// FailureKind 支付失败的归类，调用方据此区分故障来源。
type FailureKind string

const (
	FailureConfigurationMissing    FailureKind = "configuration_missing"
	FailureInvalidRequest          FailureKind = "invalid_request"
	FailureInvalidKeyMaterial      FailureKind = "invalid_key_material"
	FailureSigning                 FailureKind = "signing_failure"
	FailureGatewayUnreachable      FailureKind = "gateway_unreachable"
	FailureGatewayRejected         FailureKind = "gateway_rejected"
	FailureMissingRedirectLocation FailureKind = "missing_redirect_location"
	FailureCancelled               FailureKind = "cancelled"
)

// Outcome 单次支付尝试的最终结果。
// Redirect 是唯一要求调用方执行副作用（向浏览器发 302）的成功路径。
type Outcome struct {
	Redirect    bool
	RedirectURL string
	Success     bool
	Failure     FailureKind
	Detail      string
}

// Fail 构造失败结果。
func Fail(kind FailureKind, detail string) Outcome {
	return Outcome{Failure: kind, Detail: detail}
}

// Interpret 解读网关响应。
// 跳转类方法要求响应携带 Location 头；其余方法解析响应报文里
// <method>_response 节点的返回码判断受理结果。
func Interpret(cfg Config, resp *Response) Outcome {
	if resp == nil {
		return Fail(FailureGatewayUnreachable, "empty gateway response")
	}
	if IsRedirectMethod(cfg.Method) {
		location := strings.TrimSpace(resp.Header.Get("Location"))
		if location == "" {
			return Fail(FailureMissingRedirectLocation, "gateway response has no Location header")
		}
		return Outcome{Redirect: true, RedirectURL: location}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Fail(FailureGatewayRejected, "gateway status "+strconv.Itoa(resp.StatusCode))
	}
	if accepted, detail := parseAcceptance(cfg.Method, resp.Body); !accepted {
		return Fail(FailureGatewayRejected, detail)
	}
	return Outcome{Success: true}
}

// IsRedirectMethod 判断是否为跳转类支付方法。
func IsRedirectMethod(method string) bool {
	switch strings.TrimSpace(method) {
	case constants.MethodTradeWapPay, constants.MethodTradePagePay:
		return true
	default:
		return false
	}
}

// parseAcceptance 解析网关 JSON 报文的受理结果。
// 返回码 10000 表示受理成功，其余返回 sub_msg/msg 作为失败详情。
func parseAcceptance(method string, body []byte) (bool, string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return false, "gateway body is not valid json"
	}
	nodeKey := strings.ReplaceAll(strings.TrimSpace(method), ".", "_") + "_response"
	nodeRaw, ok := raw[nodeKey]
	if !ok {
		return false, nodeKey + " not found in gateway body"
	}
	var node struct {
		Code   string `json:"code"`
		Msg    string `json:"msg"`
		SubMsg string `json:"sub_msg"`
	}
	if err := json.Unmarshal(nodeRaw, &node); err != nil {
		return false, nodeKey + " is malformed"
	}
	if strings.TrimSpace(node.Code) == "10000" {
		return true, ""
	}
	detail := strings.TrimSpace(node.SubMsg)
	if detail == "" {
		detail = strings.TrimSpace(node.Msg)
	}
	if detail == "" {
		detail = "code=" + strings.TrimSpace(node.Code)
	}
	return false, detail
}
