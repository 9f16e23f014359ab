// Package payment 统一支付层
package payment

import qrcode "github.com/skip2/go-qrcode"

// 本文件是调用方的统一入口。
// 每个操作都有两种形式：默认使用订单/退款单/转账单里携带的支付平台，
// On后缀的变体用指定平台覆盖后再走同一条路径。入口只负责平台解析、
// 衍生产物构造（二维码图片、访问链接）和结果广播，不做其他业务逻辑，
// 平台实现返回的归一化结果原样透传。

const defaultQrCodeWidth = 256

// createPay 通过工厂解析平台对应的支付实现
func createPay(p Platform) (Pay, error) {
	return payFactory().CreatePay(p)
}

// PayScan 扫用户付款码支付
func PayScan(order Order, authCode string) (*PayResponse, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.PayScan(order, authCode)
}

// PayScanOn 使用指定的支付平台扫用户付款码支付
func PayScanOn(p Platform, order Order, authCode string) (*PayResponse, error) {
	return PayScan(OrderWithPlatform(p, order), authCode)
}

// PayApp APP支付，返回客户端调起支付SDK所需的签名参数包
func PayApp(order Order) (*PayAppResult, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.PayApp(order)
}

// PayAppOn 使用指定的支付平台进行APP支付
func PayAppOn(p Platform, order Order) (*PayAppResult, error) {
	return PayApp(OrderWithPlatform(p, order))
}

// PayQrCode 二维码支付
// 返回二维码的文本值，可根据该文本值生成二维码图片。
func PayQrCode(order Order) (string, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return "", err
	}
	return pay.PayQrCode(order)
}

// PayQrCodeOn 使用指定的支付平台进行二维码支付
func PayQrCodeOn(p Platform, order Order) (string, error) {
	return PayQrCode(OrderWithPlatform(p, order))
}

// PayQrCodeImage 二维码支付，返回png格式的二维码图片
// 图片尺寸取平台配置的二维码宽度，未配置时取默认值。
func PayQrCodeImage(order Order) ([]byte, error) {
	code, err := PayQrCode(order)
	if err != nil {
		return nil, err
	}
	cfg, err := GetConfig(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	width := cfg.Base().QrCodeWidth
	if width <= 0 {
		width = defaultQrCodeWidth
	}
	return qrcode.Encode(code, qrcode.Medium, width)
}

// PayQrCodeImageOn 使用指定的支付平台进行二维码支付，返回二维码图片
func PayQrCodeImageOn(p Platform, order Order) ([]byte, error) {
	return PayQrCodeImage(OrderWithPlatform(p, order))
}

// PayQrCodeAccessURL 二维码支付，返回二维码图片的访问链接
// 链接通过平台配置的链接生成器生成。
func PayQrCodeAccessURL(order Order) (string, error) {
	code, err := PayQrCode(order)
	if err != nil {
		return "", err
	}
	cfg, err := GetConfig(order.GetPlatform())
	if err != nil {
		return "", err
	}
	gen := cfg.Base().QrCodeAccessURL
	if gen == nil {
		return "", &ConfigError{Platform: order.GetPlatform(), Msg: "未配置二维码访问链接生成器"}
	}
	return gen(order, code), nil
}

// PayQrCodeAccessURLOn 使用指定的支付平台进行二维码支付，返回访问链接
func PayQrCodeAccessURLOn(p Platform, order Order) (string, error) {
	return PayQrCodeAccessURL(OrderWithPlatform(p, order))
}

// PayPcForm PC页面跳转支付，返回一段html代码
func PayPcForm(order Order) (string, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return "", err
	}
	return pay.PayPcForm(order)
}

// PayPcFormOn 使用指定的支付平台进行PC页面跳转支付
func PayPcFormOn(p Platform, order Order) (string, error) {
	return PayPcForm(OrderWithPlatform(p, order))
}

// PayPcFormAccessURL PC页面跳转支付，返回支付页面的访问链接
func PayPcFormAccessURL(order Order) (string, error) {
	form, err := PayPcForm(order)
	if err != nil {
		return "", err
	}
	cfg, err := GetConfig(order.GetPlatform())
	if err != nil {
		return "", err
	}
	gen := cfg.Base().PcFormAccessURL
	if gen == nil {
		return "", &ConfigError{Platform: order.GetPlatform(), Msg: "未配置PC支付页面访问链接生成器"}
	}
	return gen(order, form), nil
}

// PayPcFormAccessURLOn 使用指定的支付平台进行PC页面跳转支付，返回访问链接
func PayPcFormAccessURLOn(p Platform, order Order) (string, error) {
	return PayPcFormAccessURL(OrderWithPlatform(p, order))
}

// PayWapForm WAP页面跳转支付，返回一段html代码
// 微信的WAP支付只返回跳转链接，没有html代码形式。
func PayWapForm(order Order) (string, error) {
	if order.GetPlatform() == PlatformWxPay {
		return "", unsupportedError(PlatformWxPay, "WAP页面代码支付")
	}
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return "", err
	}
	return pay.PayWapForm(order)
}

// PayWapFormOn 使用指定的支付平台进行WAP页面跳转支付
func PayWapFormOn(p Platform, order Order) (string, error) {
	return PayWapForm(OrderWithPlatform(p, order))
}

// PayWapFormAccessURL WAP页面跳转支付，返回支付页面的访问链接
// 微信直接返回跳转链接，不经过访问链接生成器。
func PayWapFormAccessURL(order Order) (string, error) {
	if order.GetPlatform() == PlatformWxPay {
		pay, err := createPay(order.GetPlatform())
		if err != nil {
			return "", err
		}
		return pay.PayWapForm(order)
	}

	form, err := PayWapForm(order)
	if err != nil {
		return "", err
	}
	cfg, err := GetConfig(order.GetPlatform())
	if err != nil {
		return "", err
	}
	gen := cfg.Base().WapFormAccessURL
	if gen == nil {
		return "", &ConfigError{Platform: order.GetPlatform(), Msg: "未配置WAP支付页面访问链接生成器"}
	}
	return gen(order, form), nil
}

// PayWapFormAccessURLOn 使用指定的支付平台进行WAP页面跳转支付，返回访问链接
func PayWapFormAccessURLOn(p Platform, order Order) (string, error) {
	return PayWapFormAccessURL(OrderWithPlatform(p, order))
}

// PayJs 平台内置浏览器中的JS支付
func PayJs(order Order, openID string) (*PayJsResult, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.PayJs(order, openID)
}

// PayJsOn 使用指定的支付平台进行JS支付
func PayJsOn(p Platform, order Order, openID string) (*PayJsResult, error) {
	return PayJs(OrderWithPlatform(p, order), openID)
}

// PayAppletsJs 小程序JS支付
func PayAppletsJs(order Order, openID string) (*PayJsResult, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.PayAppletsJs(order, openID)
}

// PayAppletsJsOn 使用指定的支付平台进行小程序JS支付
func PayAppletsJsOn(p Platform, order Order, openID string) (*PayJsResult, error) {
	return PayAppletsJs(OrderWithPlatform(p, order), openID)
}

// PaySync 同步支付
// 直接返回支付结果而不走异步通知，拿到结果后广播一次，
// 广播失败不重试，只记日志，不影响返回结果。
// 同步支付必须配置支付结果广播器。
func PaySync(order Order) (*PayResponse, error) {
	broadcaster := getPayBroadcaster()
	if broadcaster == nil {
		return nil, &ConfigError{Platform: order.GetPlatform(), Msg: "同步支付必须配置支付结果广播器"}
	}

	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	resp, err := pay.PaySync(order)
	if err != nil {
		return nil, err
	}

	if !broadcaster.Broadcast(resp) {
		log.Errorf("订单[%s]支付结果广播失败", order.GetOutTradeNo())
	}
	return resp, nil
}

// PaySyncOn 使用指定的支付平台进行同步支付
func PaySyncOn(p Platform, order Order) (*PayResponse, error) {
	return PaySync(OrderWithPlatform(p, order))
}

// PayQuery 查询订单支付结果
// 查询出错时返回nil的结果，调用方应把nil理解为"结果未知"；
// 平台未注册时返回 ConfigError，不会发起网络调用。
func PayQuery(order Order) (*PayResponse, error) {
	pay, err := createPay(order.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.PayQuery(order), nil
}

// PayQueryOn 使用指定的支付平台查询订单支付结果
func PayQueryOn(p Platform, order Order) (*PayResponse, error) {
	return PayQuery(OrderWithPlatform(p, order))
}

// RefundSync 退款
// 拿到结果后广播一次，未配置退款广播器时跳过广播。
func RefundSync(order Order, refund Refund) (*RefundResponse, error) {
	pay, err := createPay(refund.GetPlatform())
	if err != nil {
		return nil, err
	}
	resp, err := pay.RefundSync(order, refund)
	if err != nil {
		return nil, err
	}

	if broadcaster := getRefundBroadcaster(); broadcaster != nil {
		// 广播失败不重试
		if !broadcaster.Broadcast(resp) {
			log.Errorf("退款[%s]结果广播失败", refund.GetOutRefundNo())
		}
	}
	return resp, nil
}

// RefundSyncOn 使用指定的支付平台退款
func RefundSyncOn(p Platform, order Order, refund Refund) (*RefundResponse, error) {
	return RefundSync(OrderWithPlatform(p, order), RefundWithPlatform(p, refund))
}

// RefundQuery 查询退款结果
func RefundQuery(refund Refund) (*RefundResponse, error) {
	pay, err := createPay(refund.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.RefundQuery(refund)
}

// RefundQueryOn 使用指定的支付平台查询退款结果
func RefundQueryOn(p Platform, refund Refund) (*RefundResponse, error) {
	return RefundQuery(RefundWithPlatform(p, refund))
}

// TransferSync 转账
// 拿到结果后广播一次，未配置转账广播器时跳过广播。
func TransferSync(transfer Transfer) (*TransferResponse, error) {
	pay, err := createPay(transfer.GetPlatform())
	if err != nil {
		return nil, err
	}
	resp, err := pay.TransferSync(transfer)
	if err != nil {
		return nil, err
	}

	if broadcaster := getTransferBroadcaster(); broadcaster != nil {
		// 广播失败不重试
		if !broadcaster.Broadcast(resp) {
			log.Errorf("转账[%s]结果广播失败", transfer.GetOutTransferNo())
		}
	}
	return resp, nil
}

// TransferSyncOn 使用指定的支付平台转账
func TransferSyncOn(p Platform, transfer Transfer) (*TransferResponse, error) {
	return TransferSync(TransferWithPlatform(p, transfer))
}

// TransferQuery 查询转账结果
func TransferQuery(transfer Transfer) (*TransferResponse, error) {
	pay, err := createPay(transfer.GetPlatform())
	if err != nil {
		return nil, err
	}
	return pay.TransferQuery(transfer)
}

// TransferQueryOn 使用指定的支付平台查询转账结果
func TransferQueryOn(p Platform, transfer Transfer) (*TransferResponse, error) {
	return TransferQuery(TransferWithPlatform(p, transfer))
}
