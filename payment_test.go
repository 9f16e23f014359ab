package payment

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// resetTestGlobals 清空并在用例结束后恢复进程级注册表
func resetTestGlobals(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	oldConfigs := configs
	oldFactory := factory
	oldPay, oldRefund, oldTransfer := payBroadcaster, refundBroadcaster, transferBroadcaster
	configs = map[Platform]PayConfig{}
	factory = &defaultPayFactory{}
	payBroadcaster, refundBroadcaster, transferBroadcaster = nil, nil, nil
	globalMu.Unlock()

	t.Cleanup(func() {
		globalMu.Lock()
		configs = oldConfigs
		factory = oldFactory
		payBroadcaster, refundBroadcaster, transferBroadcaster = oldPay, oldRefund, oldTransfer
		globalMu.Unlock()
	})
}

// mustParseTime 按给定格式解析时间文本
func mustParseTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	if err != nil {
		t.Fatalf("时间解析失败: %v", err)
	}
	return parsed
}

// captureLogs 把包级日志重定向到内存，返回日志观察器
func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	old := log
	log = zap.New(core).Sugar()
	t.Cleanup(func() { log = old })
	return logs
}

// fakeWxSdk 微信接口通道的测试替身
// 未设置的操作一律返回错误。
type fakeWxSdk struct {
	unifiedOrderFn  func(req map[string]string) (map[string]string, error)
	microPayFn      func(req map[string]string) (map[string]string, error)
	orderQueryFn    func(req map[string]string) (map[string]string, error)
	refundFn        func(req map[string]string) (map[string]string, error)
	refundQueryFn   func(req map[string]string) (map[string]string, error)
	transferFn      func(req map[string]string) (map[string]string, error)
	transferQueryFn func(req map[string]string) (map[string]string, error)
}

var errFakeNotSet = errors.New("fake sdk: operation not set")

func callFake(fn func(map[string]string) (map[string]string, error), req map[string]string) (map[string]string, error) {
	if fn == nil {
		return nil, errFakeNotSet
	}
	return fn(req)
}

func (f *fakeWxSdk) UnifiedOrder(req map[string]string) (map[string]string, error) {
	return callFake(f.unifiedOrderFn, req)
}

func (f *fakeWxSdk) MicroPay(req map[string]string) (map[string]string, error) {
	return callFake(f.microPayFn, req)
}

func (f *fakeWxSdk) OrderQuery(req map[string]string) (map[string]string, error) {
	return callFake(f.orderQueryFn, req)
}

func (f *fakeWxSdk) Refund(req map[string]string) (map[string]string, error) {
	return callFake(f.refundFn, req)
}

func (f *fakeWxSdk) RefundQuery(req map[string]string) (map[string]string, error) {
	return callFake(f.refundQueryFn, req)
}

func (f *fakeWxSdk) Transfer(req map[string]string) (map[string]string, error) {
	return callFake(f.transferFn, req)
}

func (f *fakeWxSdk) TransferQuery(req map[string]string) (map[string]string, error) {
	return callFake(f.transferQueryFn, req)
}

// stubPay 支付实现的测试替身，记录被调用的方法名
type stubPay struct {
	calls []string

	payScanFn    func(order Order, authCode string) (*PayResponse, error)
	payQrCodeFn  func(order Order) (string, error)
	payWapFormFn func(order Order) (string, error)
	paySyncFn    func(order Order) (*PayResponse, error)
	payQueryFn   func(order Order) *PayResponse
	refundFn     func(order Order, refund Refund) (*RefundResponse, error)
	transferFn   func(transfer Transfer) (*TransferResponse, error)
}

func (s *stubPay) PayScan(order Order, authCode string) (*PayResponse, error) {
	s.calls = append(s.calls, "PayScan")
	if s.payScanFn != nil {
		return s.payScanFn(order, authCode)
	}
	return &PayResponse{Platform: order.GetPlatform(), Success: true}, nil
}

func (s *stubPay) PayApp(order Order) (*PayAppResult, error) {
	s.calls = append(s.calls, "PayApp")
	return &PayAppResult{}, nil
}

func (s *stubPay) PayQrCode(order Order) (string, error) {
	s.calls = append(s.calls, "PayQrCode")
	if s.payQrCodeFn != nil {
		return s.payQrCodeFn(order)
	}
	return "weixin://wxpay/bizpayurl?pr=stub", nil
}

func (s *stubPay) PayJs(order Order, openID string) (*PayJsResult, error) {
	s.calls = append(s.calls, "PayJs")
	return &PayJsResult{}, nil
}

func (s *stubPay) PayAppletsJs(order Order, openID string) (*PayJsResult, error) {
	s.calls = append(s.calls, "PayAppletsJs")
	return &PayJsResult{}, nil
}

func (s *stubPay) PayWapForm(order Order) (string, error) {
	s.calls = append(s.calls, "PayWapForm")
	if s.payWapFormFn != nil {
		return s.payWapFormFn(order)
	}
	return "<form></form>", nil
}

func (s *stubPay) PayPcForm(order Order) (string, error) {
	s.calls = append(s.calls, "PayPcForm")
	return "<form></form>", nil
}

func (s *stubPay) PaySync(order Order) (*PayResponse, error) {
	s.calls = append(s.calls, "PaySync")
	if s.paySyncFn != nil {
		return s.paySyncFn(order)
	}
	return &PayResponse{Platform: order.GetPlatform(), Success: true, OutTradeNo: order.GetOutTradeNo()}, nil
}

func (s *stubPay) PayQuery(order Order) *PayResponse {
	s.calls = append(s.calls, "PayQuery")
	if s.payQueryFn != nil {
		return s.payQueryFn(order)
	}
	return &PayResponse{Platform: order.GetPlatform()}
}

func (s *stubPay) RefundSync(order Order, refund Refund) (*RefundResponse, error) {
	s.calls = append(s.calls, "RefundSync")
	if s.refundFn != nil {
		return s.refundFn(order, refund)
	}
	return &RefundResponse{Platform: refund.GetPlatform(), Status: StatusProcessing, OutRefundNo: refund.GetOutRefundNo()}, nil
}

func (s *stubPay) RefundQuery(refund Refund) (*RefundResponse, error) {
	s.calls = append(s.calls, "RefundQuery")
	return &RefundResponse{Platform: refund.GetPlatform()}, nil
}

func (s *stubPay) TransferSync(transfer Transfer) (*TransferResponse, error) {
	s.calls = append(s.calls, "TransferSync")
	if s.transferFn != nil {
		return s.transferFn(transfer)
	}
	return &TransferResponse{Platform: transfer.GetPlatform(), Status: StatusSuccess, OutTransferNo: transfer.GetOutTransferNo()}, nil
}

func (s *stubPay) TransferQuery(transfer Transfer) (*TransferResponse, error) {
	s.calls = append(s.calls, "TransferQuery")
	return &TransferResponse{Platform: transfer.GetPlatform(), Status: StatusSuccess}, nil
}

// stubFactory 固定返回同一个支付实现，并记录请求的平台
type stubFactory struct {
	pay       Pay
	platforms []Platform
}

func (f *stubFactory) CreatePay(p Platform) (Pay, error) {
	f.platforms = append(f.platforms, p)
	if f.pay == nil {
		return nil, &ConfigError{Platform: p}
	}
	return f.pay, nil
}

// stubPayBroadcaster 支付广播器替身
type stubPayBroadcaster struct {
	ok   bool
	seen []*PayResponse
}

func (b *stubPayBroadcaster) Broadcast(resp *PayResponse) bool {
	b.seen = append(b.seen, resp)
	return b.ok
}

// stubRefundBroadcaster 退款广播器替身
type stubRefundBroadcaster struct {
	ok   bool
	seen []*RefundResponse
}

func (b *stubRefundBroadcaster) Broadcast(resp *RefundResponse) bool {
	b.seen = append(b.seen, resp)
	return b.ok
}

// stubTransferBroadcaster 转账广播器替身
type stubTransferBroadcaster struct {
	ok   bool
	seen []*TransferResponse
}

func (b *stubTransferBroadcaster) Broadcast(resp *TransferResponse) bool {
	b.seen = append(b.seen, resp)
	return b.ok
}
