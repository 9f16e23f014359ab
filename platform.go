// Package payment 统一支付层
// 在多个第三方支付平台之上提供一套与平台无关的支付、退款、转账操作，
// 包括付款码支付、APP支付、二维码支付、PC/WAP页面跳转支付、JS支付、
// 同步支付、订单查询、退款、退款查询、转账、转账查询。
package payment

import "strconv"

// Platform 支付平台标识
// 订单创建后平台标识不再变更，但可以在单次调用时通过
// OrderWithPlatform 等装饰器逻辑覆盖，而不修改原始订单。
type Platform int

// 支付平台常量定义
const (
	PlatformAlipay Platform = 1 // 支付宝
	PlatformWxPay  Platform = 2 // 微信支付
)

// String 返回平台名称
func (p Platform) String() string {
	switch p {
	case PlatformAlipay:
		return "alipay"
	case PlatformWxPay:
		return "wxpay"
	default:
		return "platform(" + strconv.Itoa(int(p)) + ")"
	}
}
