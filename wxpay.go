// Package payment 统一支付层
package payment

import (
	"net/url"
	"strconv"
	"time"

	"github.com/go-pay/gopay/wechat"
)

// 微信接口的时间文本格式
const (
	wxCompactTimeLayout = "20060102150405"
	wxPlainTimeLayout   = "2006-01-02 15:04:05"
)

// 微信默认配置值
const (
	wxDefaultClientIP           = "127.0.0.1"
	wxDefaultSubjectPrefix      = "商品_"
	wxDefaultRefundNotFoundCode = "REFUNDNOTEXIST"
)

// WxPay 微信支付实现
// 基于v2报文协议：请求和应答都是扁平的字符串键值表，应答先看
// return_code（通信层）再看 result_code（业务层），任一为FAIL即失败。
type WxPay struct {
	config *WxPayConfig
	sdk    WxSdk
}

// NewWxPay 创建微信支付实现
func NewWxPay(cfg *WxPayConfig) (*WxPay, error) {
	sdk, err := NewWxSdk(cfg.AppID, cfg.MchID, cfg.Key, wxSignTypeOf(cfg),
		[]byte(cfg.CertContent), []byte(cfg.KeyContent))
	if err != nil {
		return nil, err
	}
	return &WxPay{config: cfg, sdk: sdk}, nil
}

// NewWxPayWithSdk 使用指定的接口通道创建微信支付实现
func NewWxPayWithSdk(cfg *WxPayConfig, sdk WxSdk) *WxPay {
	return &WxPay{config: cfg, sdk: sdk}
}

// wxSignTypeOf 签名算法由调试开关决定：调试用MD5，生产用HMAC-SHA256
func wxSignTypeOf(cfg *WxPayConfig) string {
	if cfg.Debug {
		return wechat.SignType_MD5
	}
	return wechat.SignType_HMAC_SHA256
}

func (w *WxPay) clientIP() string {
	if w.config.ClientIP != "" {
		return w.config.ClientIP
	}
	return wxDefaultClientIP
}

func (w *WxPay) subject(order Order) string {
	prefix := w.config.SubjectPrefix
	if prefix == "" {
		prefix = wxDefaultSubjectPrefix
	}
	return prefix + order.GetOutTradeNo()
}

func (w *WxPay) refundNotFoundCode() string {
	if w.config.RefundNotFoundCode != "" {
		return w.config.RefundNotFoundCode
	}
	return wxDefaultRefundNotFoundCode
}

// convertPayReq 构造下单参数表
func (w *WxPay) convertPayReq(order Order) map[string]string {
	req := map[string]string{
		"body":             w.subject(order),
		"out_trade_no":     order.GetOutTradeNo(),
		"total_fee":        strconv.FormatInt(order.GetTotalFee(), 10),
		"spbill_create_ip": w.clientIP(),
	}
	if ts := order.GetTimeStart(); ts != nil {
		req["time_start"] = ts.Format(wxCompactTimeLayout)
	}
	// time_expire只允许首次下单时传，重复下单再传微信接口会报错。
	// 订单上已有微信订单号即视为已下过单。
	if te := order.GetTimeExpire(); te != nil && order.GetTradeNo() == "" {
		req["time_expire"] = te.Format(wxCompactTimeLayout)
	}
	return req
}

// checkWxResp 检查应答的通信层和业务层状态
// 任一为FAIL时返回携带原始应答的 ProviderError。
func checkWxResp(resp map[string]string) error {
	if resp["return_code"] == "FAIL" {
		return &ProviderError{Msg: resp["return_msg"], Raw: resp}
	}
	if resp["result_code"] == "FAIL" {
		return &ProviderError{Msg: resp["err_code_des"], Raw: resp}
	}
	return nil
}

// unifiedOrder 统一下单
// tradeType: JSAPI/NATIVE/APP/MWEB
func (w *WxPay) unifiedOrder(order Order, appID, tradeType, openID string) (map[string]string, error) {
	req := w.convertPayReq(order)
	req["appid"] = appID
	req["trade_type"] = tradeType
	if openID != "" {
		req["openid"] = openID
	}
	if w.config.PayNotifyURL != nil {
		req["notify_url"] = w.config.PayNotifyURL(order)
	}

	log.Debugf("微信下单参数: %v", req)

	resp, err := w.sdk.UnifiedOrder(req)
	if err != nil {
		return nil, err
	}
	if err := checkWxResp(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// PayScan 扫用户付款码支付
func (w *WxPay) PayScan(order Order, authCode string) (*PayResponse, error) {
	resp, err := w.payScan(order, authCode)
	if err != nil {
		log.Errorf("微信付款码支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return nil, wrapProviderError("微信付款码支付失败", err)
	}
	return resp, nil
}

func (w *WxPay) payScan(order Order, authCode string) (*PayResponse, error) {
	if authCode == "" {
		code, ok := order.GetExt(ExtScanAuthCode)
		if !ok || code == "" {
			return nil, &InputError{Msg: "微信付款码支付缺少授权码"}
		}
		authCode = code
	}

	req := w.convertPayReq(order)
	req["auth_code"] = authCode
	resp, err := w.sdk.MicroPay(req)
	if err != nil {
		return nil, err
	}
	if resp["return_code"] == "FAIL" {
		return nil, &ProviderError{Msg: resp["return_msg"], Raw: resp}
	}

	return &PayResponse{
		Platform:   PlatformWxPay,
		Success:    resp["result_code"] == "SUCCESS",
		ErrCode:    resp["err_code"],
		ErrCodeDes: resp["err_code_des"],
		TradeNo:    resp["transaction_id"],
		OutTradeNo: resp["out_trade_no"],
		PayTime:    parseTimePtr(wxCompactTimeLayout, resp["time_end"]),
		Raw:        resp,
	}, nil
}

// PayApp APP支付
// 先统一下单换取prepay_id，再对客户端调起参数独立做第二次签名。
// 两次签名的字段命名风格不同：下单是下划线风格，这里是APP调起风格。
func (w *WxPay) PayApp(order Order) (*PayAppResult, error) {
	result, err := w.payApp(order)
	if err != nil {
		log.Errorf("微信APP支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return nil, wrapProviderError("微信APP支付失败", err)
	}
	return result, nil
}

func (w *WxPay) payApp(order Order) (*PayAppResult, error) {
	resp, err := w.unifiedOrder(order, w.config.AppID, "APP", "")
	if err != nil {
		return nil, err
	}
	prepayID := resp["prepay_id"]
	signType := wxSignTypeOf(w.config)
	nonceStr := GetRandomString(32)
	timeStamp := strconv.FormatInt(time.Now().Unix(), 10)
	sign := wechat.GetAppPaySign(w.config.AppID, w.config.MchID, nonceStr, prepayID,
		signType, timeStamp, w.config.Key)

	return &PayAppResult{
		AppID:     w.config.AppID,
		PartnerID: w.config.MchID,
		PrepayID:  prepayID,
		Package:   "Sign=WXPay",
		NonceStr:  nonceStr,
		TimeStamp: timeStamp,
		SignType:  signType,
		Sign:      sign,
	}, nil
}

// PayQrCode 二维码支付，返回二维码文本值
func (w *WxPay) PayQrCode(order Order) (string, error) {
	resp, err := w.unifiedOrder(order, w.config.AppID, "NATIVE", "")
	if err != nil {
		log.Errorf("微信二维码支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return "", wrapProviderError("微信二维码支付失败", err)
	}
	codeURL := resp["code_url"]
	log.Debugf("微信二维码支付, code_url: %s", codeURL)
	return codeURL, nil
}

// PayJs 公众号JS支付
func (w *WxPay) PayJs(order Order, openID string) (*PayJsResult, error) {
	result, err := w.payJs(order, w.config.AppID, ExtJsOpenID, openID, wechat.GetJsapiPaySign)
	if err != nil {
		log.Errorf("微信JS支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return nil, wrapProviderError("微信JS支付失败", err)
	}
	return result, nil
}

// PayAppletsJs 小程序JS支付，使用小程序appid下单和签名
func (w *WxPay) PayAppletsJs(order Order, openID string) (*PayJsResult, error) {
	appID := w.config.AppletAppID
	if appID == "" {
		appID = w.config.AppID
	}
	result, err := w.payJs(order, appID, ExtAppletsOpenID, openID, wechat.GetMiniPaySign)
	if err != nil {
		log.Errorf("微信小程序支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return nil, wrapProviderError("微信小程序支付失败", err)
	}
	return result, nil
}

// wxJsPaySignFunc 调起参数的签名函数，公众号和小程序各用一个
type wxJsPaySignFunc func(appID, nonceStr, packages, signType, timeStamp, apiKey string) string

func (w *WxPay) payJs(order Order, appID, extKey, openID string, paySign wxJsPaySignFunc) (*PayJsResult, error) {
	if openID == "" {
		id, ok := order.GetExt(extKey)
		if !ok || id == "" {
			return nil, &InputError{Msg: "微信JS支付缺少openid"}
		}
		openID = id
	}

	resp, err := w.unifiedOrder(order, appID, "JSAPI", openID)
	if err != nil {
		return nil, err
	}
	prepayID := resp["prepay_id"]
	signType := wxSignTypeOf(w.config)

	// JS支付有两次签名，统一下单一次，拿到prepay_id后对调起参数再签一次。
	// 调起参数的字段名是驼峰风格，appId的I大写。
	packages := "prepay_id=" + prepayID
	nonceStr := GetRandomString(32)
	timeStamp := strconv.FormatInt(time.Now().Unix(), 10)

	return &PayJsResult{
		AppID:     appID,
		TimeStamp: timeStamp,
		NonceStr:  nonceStr,
		Package:   packages,
		SignType:  signType,
		PaySign:   paySign(appID, nonceStr, packages, signType, timeStamp, w.config.Key),
		PrepayID:  prepayID,
	}, nil
}

// PayWapForm WAP支付
// 微信没有返回html代码的接口，直接返回跳转链接mweb_url。
func (w *WxPay) PayWapForm(order Order) (string, error) {
	resp, err := w.unifiedOrder(order, w.config.AppID, "MWEB", "")
	if err != nil {
		log.Errorf("微信WAP支付失败, 订单[%s]: %v", order.GetOutTradeNo(), err)
		return "", wrapProviderError("微信WAP支付失败", err)
	}

	mwebURL := resp["mweb_url"]
	if w.config.WapReturnURL != nil {
		mwebURL += "&redirect_url=" + url.QueryEscape(w.config.WapReturnURL(order))
	}
	log.Debugf("微信WAP支付, mweb_url: %s", mwebURL)
	return mwebURL, nil
}

// PayPcForm 微信不支持PC页面跳转支付
func (w *WxPay) PayPcForm(order Order) (string, error) {
	return "", unsupportedError(PlatformWxPay, "PC页面跳转支付")
}

// PaySync 微信不支持同步支付
func (w *WxPay) PaySync(order Order) (*PayResponse, error) {
	return nil, unsupportedError(PlatformWxPay, "同步支付")
}

// PayQuery 订单查询
// 查询失败时返回nil，不向上抛错，失败原因只记日志。
func (w *WxPay) PayQuery(order Order) *PayResponse {
	resp, err := w.payQuery(order)
	if err != nil {
		log.Errorf("微信订单[%s]查询失败: %v", order.GetOutTradeNo(), err)
		return nil
	}
	return resp
}

func (w *WxPay) payQuery(order Order) (*PayResponse, error) {
	req := map[string]string{
		"out_trade_no": order.GetOutTradeNo(),
	}
	resp, err := w.sdk.OrderQuery(req)
	if err != nil {
		return nil, err
	}
	if err := checkWxResp(resp); err != nil {
		return nil, err
	}

	return &PayResponse{
		Platform:   PlatformWxPay,
		Success:    resp["trade_state"] == "SUCCESS",
		TradeNo:    resp["transaction_id"],
		OutTradeNo: resp["out_trade_no"],
		PayTime:    parseTimePtr(wxCompactTimeLayout, resp["time_end"]),
		Raw:        resp,
	}, nil
}

// RefundSync 退款
// 微信的退款是异步落定的，提交成功只代表受理，最终状态要靠查询，
// 所以这里的结果状态固定为处理中。
func (w *WxPay) RefundSync(order Order, refund Refund) (*RefundResponse, error) {
	resp, err := w.refundSync(order, refund)
	if err != nil {
		log.Errorf("微信退款失败, 退款单[%s]: %v", refund.GetOutRefundNo(), err)
		return nil, wrapProviderError("微信退款失败", err)
	}
	return resp, nil
}

func (w *WxPay) refundSync(order Order, refund Refund) (*RefundResponse, error) {
	req := map[string]string{
		"out_trade_no":  order.GetOutTradeNo(),
		"out_refund_no": refund.GetOutRefundNo(),
		"total_fee":     strconv.FormatInt(order.GetTotalFee(), 10),
		"refund_fee":    strconv.FormatInt(refund.GetRefundFee(), 10),
	}
	// 请求里传了notify_url时，商户平台上配置的回调地址不再生效
	if w.config.RefundNotifyURL != nil {
		req["notify_url"] = w.config.RefundNotifyURL(order, refund)
	}

	log.Debugf("微信退款参数: %v", req)

	resp, err := w.sdk.Refund(req)
	if err != nil {
		return nil, err
	}
	if err := checkWxResp(resp); err != nil {
		return nil, err
	}

	return &RefundResponse{
		Platform:    PlatformWxPay,
		Status:      StatusProcessing,
		RefundNo:    resp["refund_id"],
		OutRefundNo: resp["out_refund_no"],
		Raw:         resp,
	}, nil
}

// RefundQuery 退款查询
// 一笔订单的多次退款在应答里以带下标的并列字段族出现
// （out_refund_no_0、out_refund_no_1…），按下标扫描找到当前退款单。
func (w *WxPay) RefundQuery(refund Refund) (*RefundResponse, error) {
	resp, err := w.refundQuery(refund)
	if err != nil {
		log.Errorf("微信退款状态查询失败, 退款单[%s]: %v", refund.GetOutRefundNo(), err)
		return nil, wrapProviderError("微信退款状态查询失败", err)
	}
	return resp, nil
}

func (w *WxPay) refundQuery(refund Refund) (*RefundResponse, error) {
	req := map[string]string{}
	if refund.GetOutRefundNo() != "" {
		req["out_refund_no"] = refund.GetOutRefundNo()
	}
	if refund.GetRefundNo() != "" {
		req["refund_id"] = refund.GetRefundNo()
	}

	resp, err := w.sdk.RefundQuery(req)
	if err != nil {
		return nil, err
	}
	if resp["return_code"] != "SUCCESS" {
		return nil, &ProviderError{Msg: "微信退款查询接口调用失败: " + resp["return_msg"], Raw: resp}
	}

	result := &RefundResponse{
		Platform: PlatformWxPay,
		Raw:      resp,
	}

	// 退款单不存在不算失败，返回只带平台标识的空结果
	if resp["err_code"] == w.refundNotFoundCode() {
		result.OutRefundNo = refund.GetOutRefundNo()
		return result, nil
	}

	refundCount, _ := strconv.Atoi(resp["refund_count"])
	idx := -1
	for i := 0; i < refundCount; i++ {
		if resp["out_refund_no_"+strconv.Itoa(i)] == refund.GetOutRefundNo() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return result, nil
	}

	suffix := "_" + strconv.Itoa(idx)
	result.RefundNo = resp["refund_id"+suffix]
	result.OutRefundNo = resp["out_refund_no"+suffix]

	switch resp["refund_status"+suffix] {
	case "SUCCESS":
		result.Status = StatusSuccess
		result.RefundTime = parseTimePtr(wxPlainTimeLayout, resp["refund_success_time"+suffix])
	case "PROCESSING":
		result.Status = StatusProcessing
	default:
		result.Status = StatusFail
	}
	return result, nil
}

// convertTransferReq 构造企业付款参数表
func (w *WxPay) convertTransferReq(transfer Transfer) map[string]string {
	req := map[string]string{
		"partner_trade_no": transfer.GetOutTransferNo(),
		"openid":           transfer.GetAccount(),
		"desc":             transfer.GetDescription(),
		"amount":           strconv.FormatInt(transfer.GetAmount(), 10),
		"spbill_create_ip": w.clientIP(),
	}
	if transfer.NeedCheckName() {
		req["check_name"] = "FORCE_CHECK"
	} else {
		req["check_name"] = "NO_CHECK"
	}
	if transfer.GetReUserName() != "" {
		req["re_user_name"] = transfer.GetReUserName()
	}
	return req
}

// TransferSync 企业付款到零钱
// 业务受理失败时不抛错，返回带错误码的处理中状态，最终以查询为准。
func (w *WxPay) TransferSync(transfer Transfer) (*TransferResponse, error) {
	resp, err := w.transferSync(transfer)
	if err != nil {
		log.Errorf("微信转账失败, 转账单[%s]: %v", transfer.GetOutTransferNo(), err)
		return nil, wrapProviderError("微信转账失败", err)
	}
	return resp, nil
}

func (w *WxPay) transferSync(transfer Transfer) (*TransferResponse, error) {
	req := w.convertTransferReq(transfer)

	log.Debugf("微信转账参数: %v", req)

	resp, err := w.sdk.Transfer(req)
	if err != nil {
		return nil, err
	}
	if resp["return_code"] == "FAIL" {
		return nil, &ProviderError{Msg: resp["return_msg"], Raw: resp}
	}

	result := &TransferResponse{
		Platform: PlatformWxPay,
		Raw:      resp,
	}
	if resp["result_code"] == "FAIL" {
		result.OutTransferNo = transfer.GetOutTransferNo()
		result.ErrCode = resp["err_code"]
		result.ErrCodeDes = resp["err_code_des"]
		result.Status = StatusProcessing
	} else {
		result.TransferNo = resp["payment_no"]
		result.PaymentTime = parseTimePtr(wxPlainTimeLayout, resp["payment_time"])
		result.OutTransferNo = resp["partner_trade_no"]
		result.Status = StatusSuccess
	}
	return result, nil
}

// TransferQuery 企业付款查询
// 与受理接口不同，查询能区分出终态失败并带回原因。
func (w *WxPay) TransferQuery(transfer Transfer) (*TransferResponse, error) {
	resp, err := w.transferQuery(transfer)
	if err != nil {
		log.Errorf("微信转账查询失败, 转账单[%s]: %v", transfer.GetOutTransferNo(), err)
		return nil, wrapProviderError("微信转账查询失败", err)
	}
	return resp, nil
}

func (w *WxPay) transferQuery(transfer Transfer) (*TransferResponse, error) {
	req := map[string]string{
		"partner_trade_no": transfer.GetOutTransferNo(),
	}
	resp, err := w.sdk.TransferQuery(req)
	if err != nil {
		return nil, err
	}
	if resp["return_code"] == "FAIL" {
		return nil, &ProviderError{Msg: "微信转账查询接口调用失败: " + resp["return_msg"], Raw: resp}
	}

	result := &TransferResponse{
		Platform: PlatformWxPay,
		Raw:      resp,
	}
	if resp["result_code"] == "FAIL" {
		result.OutTransferNo = transfer.GetOutTransferNo()
		result.ErrCode = resp["err_code"]
		result.ErrCodeDes = resp["err_code_des"]
		result.Status = StatusProcessing
		return result, nil
	}

	result.TransferNo = resp["detail_id"]
	result.PaymentTime = parseTimePtr(wxPlainTimeLayout, resp["payment_time"])
	result.OutTransferNo = resp["partner_trade_no"]
	switch resp["status"] {
	case "SUCCESS":
		result.Status = StatusSuccess
	case "PROCESSING":
		result.Status = StatusProcessing
	default:
		result.Status = StatusFail
		result.ErrCodeDes = resp["reason"]
	}
	return result, nil
}

var _ Pay = (*WxPay)(nil)
