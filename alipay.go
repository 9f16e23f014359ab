// Package payment 统一支付层
package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/alipay"
)

// 支付宝接口的时间文本格式
const aliTimeLayout = "2006-01-02 15:04:05"

// 支付宝交易不存在的业务子错误码
const aliTradeNotExistCode = "ACQ.TRADE_NOT_EXIST"

// AliPay 支付宝支付实现
type AliPay struct {
	config *AlipayConfig
	client *alipay.Client
}

// NewAliPay 创建支付宝支付实现
func NewAliPay(cfg *AlipayConfig) (*AliPay, error) {
	client, err := alipay.NewClient(cfg.AppID, cfg.PrivateKey, cfg.IsProd)
	if err != nil {
		return nil, &ConfigError{Platform: PlatformAlipay, Msg: "支付宝客户端创建失败: " + err.Error()}
	}

	// 证书模式
	if cfg.AppCertContent != "" {
		err = client.SetCertSnByContent(
			[]byte(cfg.AppCertContent),
			[]byte(cfg.RootCertContent),
			[]byte(cfg.PublicCertContent),
		)
		if err != nil {
			return nil, &ConfigError{Platform: PlatformAlipay, Msg: "支付宝证书配置失败: " + err.Error()}
		}
	}

	return &AliPay{config: cfg, client: client}, nil
}

// subject 订单标题
func (a *AliPay) subject(order Order) string {
	return "订单" + order.GetOutTradeNo()
}

// convertPayBody 构造下单参数
func (a *AliPay) convertPayBody(order Order) gopay.BodyMap {
	bm := gopay.BodyMap{}
	bm.Set("subject", a.subject(order))
	bm.Set("out_trade_no", order.GetOutTradeNo())
	bm.Set("total_amount", fenToYuan(order.GetTotalFee()))
	if te := order.GetTimeExpire(); te != nil && order.GetTradeNo() == "" {
		bm.Set("time_expire", te.Format(aliTimeLayout))
	}
	return bm
}

// applyURLs 设置异步通知与同步回跳地址
func (a *AliPay) applyURLs(order Order) {
	if a.config.PayNotifyURL != nil {
		a.client.SetNotifyUrl(a.config.PayNotifyURL(order))
	}
	if a.config.ReturnURL != "" {
		a.client.SetReturnUrl(a.config.ReturnURL)
	}
}

// redirectForm 将支付链接包装为自动提交的html代码段
func redirectForm(payURL string) string {
	return fmt.Sprintf(
		`<form id="alipaySubmit" action="%s" method="GET"></form><script>document.getElementById("alipaySubmit").submit();</script>`,
		payURL,
	)
}

// PayScan 扫用户付款码支付（条码支付）
func (a *AliPay) PayScan(order Order, authCode string) (*PayResponse, error) {
	resp, err := a.payScan(order, authCode)
	if err != nil {
		log.Errorf("支付宝付款码支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return nil, wrapProviderError("支付宝付款码支付失败", err)
	}
	return resp, nil
}

func (a *AliPay) payScan(order Order, authCode string) (*PayResponse, error) {
	if authCode == "" {
		code, ok := order.GetExt(ExtScanAuthCode)
		if !ok || code == "" {
			return nil, &InputError{Msg: "支付宝付款码支付缺少授权码"}
		}
		authCode = code
	}

	bm := a.convertPayBody(order)
	bm.Set("scene", "bar_code")
	bm.Set("auth_code", authCode)

	aliRsp, err := a.client.TradePay(context.Background(), bm)
	if err != nil {
		return nil, err
	}

	return &PayResponse{
		Platform:   PlatformAlipay,
		Success:    true,
		TradeNo:    aliRsp.Response.TradeNo,
		OutTradeNo: aliRsp.Response.OutTradeNo,
		PayTime:    parseTimePtr(aliTimeLayout, aliRsp.Response.GmtPayment),
		Raw:        aliRsp,
	}, nil
}

// PayApp APP支付
// 支付宝的APP SDK只接收整串已签名的下单参数，放在OrderInfo里返回。
func (a *AliPay) PayApp(order Order) (*PayAppResult, error) {
	a.applyURLs(order)
	bm := a.convertPayBody(order)
	bm.Set("product_code", "QUICK_MSECURITY_PAY")

	payParam, err := a.client.TradeAppPay(context.Background(), bm)
	if err != nil {
		log.Errorf("支付宝APP支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return nil, wrapProviderError("支付宝APP支付失败", err)
	}

	return &PayAppResult{
		AppID:     a.config.AppID,
		SignType:  "RSA2",
		OrderInfo: payParam,
	}, nil
}

// PayQrCode 二维码支付（当面付预下单），返回二维码文本值
func (a *AliPay) PayQrCode(order Order) (string, error) {
	a.applyURLs(order)
	bm := a.convertPayBody(order)

	aliRsp, err := a.client.TradePrecreate(context.Background(), bm)
	if err != nil {
		log.Errorf("支付宝二维码支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return "", wrapProviderError("支付宝二维码支付失败", err)
	}
	return aliRsp.Response.QrCode, nil
}

// PayJs 支付宝不支持平台内JS支付
func (a *AliPay) PayJs(order Order, openID string) (*PayJsResult, error) {
	return nil, unsupportedError(PlatformAlipay, "JS支付")
}

// PayAppletsJs 支付宝不支持小程序JS支付
func (a *AliPay) PayAppletsJs(order Order, openID string) (*PayJsResult, error) {
	return nil, unsupportedError(PlatformAlipay, "小程序JS支付")
}

// PayWapForm WAP支付，返回自动跳转的html代码段
func (a *AliPay) PayWapForm(order Order) (string, error) {
	a.applyURLs(order)
	bm := a.convertPayBody(order)
	bm.Set("product_code", "QUICK_WAP_WAY")

	payURL, err := a.client.TradeWapPay(context.Background(), bm)
	if err != nil {
		log.Errorf("支付宝WAP支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return "", wrapProviderError("支付宝WAP支付失败", err)
	}
	return redirectForm(payURL), nil
}

// PayPcForm PC页面跳转支付，返回自动跳转的html代码段
func (a *AliPay) PayPcForm(order Order) (string, error) {
	a.applyURLs(order)
	bm := a.convertPayBody(order)
	bm.Set("product_code", "FAST_INSTANT_TRADE_PAY")

	payURL, err := a.client.TradePagePay(context.Background(), bm)
	if err != nil {
		log.Errorf("支付宝PC支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return "", wrapProviderError("支付宝PC支付失败", err)
	}
	return redirectForm(payURL), nil
}

// PaySync 支付宝不支持同步支付
func (a *AliPay) PaySync(order Order) (*PayResponse, error) {
	return nil, unsupportedError(PlatformAlipay, "同步支付")
}

// PayQuery 订单查询
// 查询失败时返回nil，不向上抛错，失败原因只记日志。
func (a *AliPay) PayQuery(order Order) *PayResponse {
	bm := gopay.BodyMap{}
	bm.Set("out_trade_no", order.GetOutTradeNo())

	aliRsp, err := a.client.TradeQuery(context.Background(), bm)
	if err != nil {
		// 业务错误以json形式回传，交易不存在时归一化为未支付结果
		errRsp := &alipay.ErrorResponse{}
		if json.Unmarshal([]byte(err.Error()), errRsp) == nil && errRsp.SubCode == aliTradeNotExistCode {
			return &PayResponse{
				Platform:   PlatformAlipay,
				OutTradeNo: order.GetOutTradeNo(),
			}
		}
		log.Errorf("支付宝订单[%s]查询失败: %v", order.GetOutTradeNo(), err)
		return nil
	}

	status := aliRsp.Response.TradeStatus
	return &PayResponse{
		Platform:   PlatformAlipay,
		Success:    status == "TRADE_SUCCESS" || status == "TRADE_FINISHED",
		TradeNo:    aliRsp.Response.TradeNo,
		OutTradeNo: aliRsp.Response.OutTradeNo,
		PayTime:    parseTimePtr(aliTimeLayout, aliRsp.Response.SendPayDate),
		Raw:        aliRsp,
	}
}

// RefundSync 退款
// 支付宝退款同步落定，成功应答即退款完成。
func (a *AliPay) RefundSync(order Order, refund Refund) (*RefundResponse, error) {
	resp, err := a.refundSync(order, refund)
	if err != nil {
		log.Errorf("支付宝退款失败, 退款单[%s]: %v", refund.GetOutRefundNo(), err)
		return nil, wrapProviderError("支付宝退款失败", err)
	}
	return resp, nil
}

func (a *AliPay) refundSync(order Order, refund Refund) (*RefundResponse, error) {
	bm := gopay.BodyMap{}
	bm.Set("out_trade_no", order.GetOutTradeNo())
	bm.Set("refund_amount", fenToYuan(refund.GetRefundFee()))
	bm.Set("out_request_no", refund.GetOutRefundNo())

	aliRsp, err := a.client.TradeRefund(context.Background(), bm)
	if err != nil {
		return nil, err
	}

	return &RefundResponse{
		Platform:    PlatformAlipay,
		Status:      StatusSuccess,
		RefundNo:    aliRsp.Response.TradeNo,
		OutRefundNo: refund.GetOutRefundNo(),
		RefundTime:  parseTimePtr(aliTimeLayout, aliRsp.Response.GmtRefundPay),
		Raw:         aliRsp,
	}, nil
}

// RefundQuery 退款查询
func (a *AliPay) RefundQuery(refund Refund) (*RefundResponse, error) {
	resp, err := a.refundQuery(refund)
	if err != nil {
		log.Errorf("支付宝退款状态查询失败, 退款单[%s]: %v", refund.GetOutRefundNo(), err)
		return nil, wrapProviderError("支付宝退款状态查询失败", err)
	}
	return resp, nil
}

func (a *AliPay) refundQuery(refund Refund) (*RefundResponse, error) {
	bm := gopay.BodyMap{}
	bm.Set("out_request_no", refund.GetOutRefundNo())

	aliRsp, err := a.client.TradeFastPayRefundQuery(context.Background(), bm)
	if err != nil {
		return nil, err
	}

	result := &RefundResponse{
		Platform:    PlatformAlipay,
		RefundNo:    aliRsp.Response.TradeNo,
		OutRefundNo: aliRsp.Response.OutRequestNo,
		Raw:         aliRsp,
	}
	if aliRsp.Response.RefundStatus == "REFUND_SUCCESS" {
		result.Status = StatusSuccess
		result.RefundTime = parseTimePtr(aliTimeLayout, aliRsp.Response.GmtRefundPay)
	} else {
		result.Status = StatusProcessing
	}
	return result, nil
}

// TransferSync 转账到支付宝账户
func (a *AliPay) TransferSync(transfer Transfer) (*TransferResponse, error) {
	resp, err := a.transferSync(transfer)
	if err != nil {
		log.Errorf("支付宝转账失败, 转账单[%s]: %v", transfer.GetOutTransferNo(), err)
		return nil, wrapProviderError("支付宝转账失败", err)
	}
	return resp, nil
}

func (a *AliPay) transferSync(transfer Transfer) (*TransferResponse, error) {
	bm := gopay.BodyMap{}
	bm.Set("out_biz_no", transfer.GetOutTransferNo())
	bm.Set("trans_amount", fenToYuan(transfer.GetAmount()))
	bm.Set("product_code", "TRANS_ACCOUNT_NO_PWD")
	bm.Set("biz_scene", "DIRECT_TRANSFER")
	bm.Set("order_title", transfer.GetDescription())
	bm.SetBodyMap("payee_info", func(bm gopay.BodyMap) {
		bm.Set("identity", transfer.GetAccount())
		bm.Set("identity_type", "ALIPAY_LOGON_ID")
		if transfer.NeedCheckName() {
			bm.Set("name", transfer.GetReUserName())
		}
	})

	aliRsp, err := a.client.FundTransUniTransfer(context.Background(), bm)
	if err != nil {
		return nil, err
	}

	result := &TransferResponse{
		Platform:      PlatformAlipay,
		TransferNo:    aliRsp.Response.OrderId,
		OutTransferNo: aliRsp.Response.OutBizNo,
		PaymentTime:   parseTimePtr(aliTimeLayout, aliRsp.Response.TransDate),
		Raw:           aliRsp,
	}
	if aliRsp.Response.Status == "SUCCESS" {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusProcessing
	}
	return result, nil
}

// TransferQuery 转账查询
func (a *AliPay) TransferQuery(transfer Transfer) (*TransferResponse, error) {
	resp, err := a.transferQuery(transfer)
	if err != nil {
		log.Errorf("支付宝转账查询失败, 转账单[%s]: %v", transfer.GetOutTransferNo(), err)
		return nil, wrapProviderError("支付宝转账查询失败", err)
	}
	return resp, nil
}

func (a *AliPay) transferQuery(transfer Transfer) (*TransferResponse, error) {
	bm := gopay.BodyMap{}
	bm.Set("out_biz_no", transfer.GetOutTransferNo())
	bm.Set("product_code", "TRANS_ACCOUNT_NO_PWD")
	bm.Set("biz_scene", "DIRECT_TRANSFER")

	aliRsp, err := a.client.FundTransCommonQuery(context.Background(), bm)
	if err != nil {
		return nil, err
	}

	result := &TransferResponse{
		Platform:      PlatformAlipay,
		TransferNo:    aliRsp.Response.OrderId,
		OutTransferNo: aliRsp.Response.OutBizNo,
		PaymentTime:   parseTimePtr(aliTimeLayout, aliRsp.Response.PayDate),
		Raw:           aliRsp,
	}
	switch aliRsp.Response.Status {
	case "SUCCESS":
		result.Status = StatusSuccess
	case "FAIL", "REFUND":
		result.Status = StatusFail
		result.ErrCodeDes = aliRsp.Response.FailReason
	default:
		result.Status = StatusProcessing
	}
	return result, nil
}

var _ Pay = (*AliPay)(nil)
