// Package payment 统一支付层
package payment

import "time"

// TradeStatus 退款/转账的归一化状态
type TradeStatus int

// 状态常量定义
const (
	StatusUnknown    TradeStatus = iota // 未知，例如查询不到对应记录
	StatusProcessing                    // 处理中
	StatusSuccess                       // 成功
	StatusFail                          // 失败
)

// String 返回状态名称
func (s TradeStatus) String() string {
	switch s {
	case StatusProcessing:
		return "PROCESSING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// PayResponse 归一化的支付结果
type PayResponse struct {
	Platform   Platform   // 支付平台
	Success    bool       // 是否支付成功
	ErrCode    string     // 平台错误码
	ErrCodeDes string     // 平台错误描述
	TradeNo    string     // 支付平台订单号
	OutTradeNo string     // 商户订单号
	PayTime    *time.Time // 支付完成时间
	Raw        any        // 平台原始应答，保留用于排查
}

// PayAppResult APP支付的签名参数包
// 原样返回给客户端调起支付SDK使用，本层构造后不再读取。
type PayAppResult struct {
	AppID     string // 应用ID
	PartnerID string // 商户号
	PrepayID  string // 预支付交易会话标识
	Package   string // 扩展字段
	NonceStr  string // 随机字符串
	TimeStamp string // 时间戳，单位秒
	SignType  string // 签名算法
	Sign      string // 签名
	OrderInfo string // 整串签名参数，部分平台的APP SDK只接收单个字符串
}

// PayJsResult JS支付的签名参数包
// 原样返回给页面调起支付使用，本层构造后不再读取。
type PayJsResult struct {
	AppID     string // 应用ID
	TimeStamp string // 时间戳，单位秒
	NonceStr  string // 随机字符串
	Package   string // prepay_id=xx 形式的扩展字段
	SignType  string // 签名算法
	PaySign   string // 签名
	PrepayID  string // 预支付交易会话标识
}

// RefundResponse 归一化的退款结果
type RefundResponse struct {
	Platform    Platform    // 支付平台
	Status      TradeStatus // 退款状态
	RefundNo    string      // 支付平台退款单号
	OutRefundNo string      // 商户退款单号
	RefundTime  *time.Time  // 退款完成时间
	Raw         any         // 平台原始应答，保留用于排查
}

// TransferResponse 归一化的转账结果
type TransferResponse struct {
	Platform      Platform    // 支付平台
	Status        TradeStatus // 转账状态
	TransferNo    string      // 支付平台转账单号
	OutTransferNo string      // 商户转账单号
	PaymentTime   *time.Time  // 转账完成时间
	ErrCode       string      // 平台错误码
	ErrCodeDes    string      // 平台错误描述
	Raw           any         // 平台原始应答，保留用于排查
}
