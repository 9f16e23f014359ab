// Package payment 统一支付层
package payment

import "time"

// 扩展参数的约定键名
// 平台实现按键名从订单的扩展表中读取平台特有的入参。
const (
	// ExtScanAuthCode 付款码支付的授权码
	ExtScanAuthCode = "payScanAuthCode"
	// ExtJsOpenID JS支付的用户openid
	ExtJsOpenID = "payJsOpenId"
	// ExtAppletsOpenID 小程序支付的用户openid
	ExtAppletsOpenID = "payAppletsOpenId"
)

// Order 订单数据的只读视图
// 描述一次支付操作需要的全部订单数据，与存储形态无关。
// 商户订单号由调用方提供，且同一笔订单重试时必须保持不变，
// 本层不生成也不修改。
type Order interface {
	// GetOutTradeNo 商户订单号，必填且在商户侧唯一
	GetOutTradeNo() string
	// GetTotalFee 订单总金额，单位为分
	GetTotalFee() int64
	// GetTimeStart 订单生成时间，可空
	GetTimeStart() *time.Time
	// GetTimeExpire 订单失效时间，可空
	GetTimeExpire() *time.Time
	// GetTradeNo 支付平台订单号，首次下单成功后才有值
	GetTradeNo() string
	// GetPlatform 支付平台
	GetPlatform() Platform
	// GetExt 按约定键名读取扩展参数
	GetExt(key string) (string, bool)
}

// PayOrder 订单视图的内置实现
type PayOrder struct {
	OutTradeNo string
	TotalFee   int64
	TimeStart  *time.Time
	TimeExpire *time.Time
	TradeNo    string
	Platform   Platform
	Ext        map[string]string
}

func (o *PayOrder) GetOutTradeNo() string     { return o.OutTradeNo }
func (o *PayOrder) GetTotalFee() int64        { return o.TotalFee }
func (o *PayOrder) GetTimeStart() *time.Time  { return o.TimeStart }
func (o *PayOrder) GetTimeExpire() *time.Time { return o.TimeExpire }
func (o *PayOrder) GetTradeNo() string        { return o.TradeNo }
func (o *PayOrder) GetPlatform() Platform     { return o.Platform }

func (o *PayOrder) GetExt(key string) (string, bool) {
	v, ok := o.Ext[key]
	return v, ok
}

// platformOrder 平台覆盖装饰器
// 只替换平台标识，其余访问全部委托给原订单，原订单不会被修改。
type platformOrder struct {
	Order
	platform Platform
}

// OrderWithPlatform 使用指定的支付平台包装订单
func OrderWithPlatform(p Platform, order Order) Order {
	return &platformOrder{Order: order, platform: p}
}

func (o *platformOrder) GetPlatform() Platform { return o.platform }
