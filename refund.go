// Package payment 统一支付层
package payment

// Refund 退款数据的只读视图
// 退款金额不得超过关联订单的总金额，由调用方和支付平台保证，
// 本层不做二次校验。
type Refund interface {
	// GetOutRefundNo 商户退款单号，必填且在商户侧唯一
	GetOutRefundNo() string
	// GetRefundFee 退款金额，单位为分
	GetRefundFee() int64
	// GetRefundNo 支付平台退款单号，可空
	GetRefundNo() string
	// GetPlatform 支付平台
	GetPlatform() Platform
}

// RefundReq 退款视图的内置实现
type RefundReq struct {
	OutRefundNo string
	RefundFee   int64
	RefundNo    string
	Platform    Platform
}

func (r *RefundReq) GetOutRefundNo() string { return r.OutRefundNo }
func (r *RefundReq) GetRefundFee() int64    { return r.RefundFee }
func (r *RefundReq) GetRefundNo() string    { return r.RefundNo }
func (r *RefundReq) GetPlatform() Platform  { return r.Platform }

// platformRefund 平台覆盖装饰器，只替换平台标识
type platformRefund struct {
	Refund
	platform Platform
}

// RefundWithPlatform 使用指定的支付平台包装退款单
func RefundWithPlatform(p Platform, refund Refund) Refund {
	return &platformRefund{Refund: refund, platform: p}
}

func (r *platformRefund) GetPlatform() Platform { return r.platform }
