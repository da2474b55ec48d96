package constants

// 支付类型常量
const (
	PayTypeAlipay = "alipay"
)

// 支付渠道常量
const (
	PayChannelApp = "app"
	PayChannelWap = "wap"
	PayChannelWeb = "web"
)

// 网关接口方法常量
const (
	MethodTradeAppPay  = "alipay.trade.app.pay"
	MethodTradeWapPay  = "alipay.trade.wap.pay"
	MethodTradePagePay = "alipay.trade.page.pay"
)

// 签名类型常量
const (
	SignTypeRSA  = "RSA"
	SignTypeRSA2 = "RSA2"
)

// 字符集常量
const (
	CharsetUTF8 = "utf-8"
	CharsetGBK  = "gbk"
)
