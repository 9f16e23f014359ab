// Package payment 统一支付层
package payment

// Pay 支付平台能力契约
// 每个平台实现一个独立类型，通过 PayFactory 按平台标识解析。
// 所有方法都是同步无状态的，可以被多个调用方并发调用；
// 本层不做自动重试，超时由底层传输通道负责。
//
// 除 PayQuery 外，每个方法都在边界处捕获全部失败，记录一条日志后
// 包装为 ProviderError 返回，调用方不会收到底层传输错误类型。
// 平台不支持的操作返回 InputError。
type Pay interface {
	// PayScan 扫用户付款码支付
	// authCode 为空时从订单扩展参数 ExtScanAuthCode 中读取。
	PayScan(order Order, authCode string) (*PayResponse, error)

	// PayApp APP支付，返回客户端调起支付所需的签名参数包
	PayApp(order Order) (*PayAppResult, error)

	// PayQrCode 二维码支付，返回二维码的文本值
	PayQrCode(order Order) (string, error)

	// PayJs 平台内置浏览器中的JS支付
	// openID 为空时从订单扩展参数 ExtJsOpenID 中读取。
	PayJs(order Order, openID string) (*PayJsResult, error)

	// PayAppletsJs 小程序JS支付
	// openID 为空时从订单扩展参数 ExtAppletsOpenID 中读取。
	PayAppletsJs(order Order, openID string) (*PayJsResult, error)

	// PayWapForm WAP页面跳转支付
	// 返回html代码段；微信平台例外，直接返回跳转链接。
	PayWapForm(order Order) (string, error)

	// PayPcForm PC页面跳转支付，返回html代码段
	PayPcForm(order Order) (string, error)

	// PaySync 同步支付，直接返回支付结果而不走异步通知
	PaySync(order Order) (*PayResponse, error)

	// PayQuery 查询订单支付结果
	// 查询失败时返回nil，失败原因只记录在日志里，调用方应把nil
	// 理解为"结果未知"而不是"支付失败"。
	PayQuery(order Order) *PayResponse

	// RefundSync 退款
	RefundSync(order Order, refund Refund) (*RefundResponse, error)

	// RefundQuery 查询退款结果
	RefundQuery(refund Refund) (*RefundResponse, error)

	// TransferSync 转账
	TransferSync(transfer Transfer) (*TransferResponse, error)

	// TransferQuery 查询转账结果
	TransferQuery(transfer Transfer) (*TransferResponse, error)
}
