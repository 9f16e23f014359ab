// Package payment 统一支付层
package payment

import (
	"fmt"
	"sync"
)

// 链接生成器函数类型
// 由宿主程序配置，用于生成异步通知地址和各类访问链接。
type (
	// PayNotifyURLFunc 支付结果异步通知地址
	PayNotifyURLFunc func(order Order) string
	// RefundNotifyURLFunc 退款结果异步通知地址
	RefundNotifyURLFunc func(order Order, refund Refund) string
	// WapReturnURLFunc WAP支付完成后的回跳地址
	WapReturnURLFunc func(order Order) string
	// QrCodeAccessURLFunc 二维码图片的访问链接
	QrCodeAccessURLFunc func(order Order, code string) string
	// FormAccessURLFunc 支付页面html的访问链接
	FormAccessURLFunc func(order Order, form string) string
)

// BaseConfig 各平台共用的配置项
type BaseConfig struct {
	// Debug 调试模式，影响部分平台的签名算法选择
	Debug bool
	// QrCodeWidth 二维码图片边长，单位像素，0取默认值
	// 生成的二维码为正方形。
	QrCodeWidth int

	PayNotifyURL     PayNotifyURLFunc
	RefundNotifyURL  RefundNotifyURLFunc
	QrCodeAccessURL  QrCodeAccessURLFunc
	PcFormAccessURL  FormAccessURLFunc
	WapFormAccessURL FormAccessURLFunc
}

// PayConfig 平台配置的公共视图
type PayConfig interface {
	Base() *BaseConfig
}

// WxPayConfig 微信支付配置
type WxPayConfig struct {
	BaseConfig

	AppID       string // 公众号/应用 appid
	AppletAppID string // 小程序 appid
	MchID       string // 商户号
	Key         string // API密钥

	// 商户API证书和私钥的pem内容，退款和企业付款接口必须配置
	CertContent string
	KeyContent  string

	// ClientIP 终端IP，微信下单接口必填，空则取默认值
	ClientIP string
	// SubjectPrefix 商品描述前缀，拼接商户订单号作为body，空则取默认值
	SubjectPrefix string
	// RefundNotFoundCode 退款查询"单号不存在"的业务错误码
	// 平台接口版本演进时可能变化，作为配置而不是硬编码，空则取默认值
	RefundNotFoundCode string
	// WapReturnURL WAP支付的回跳地址生成器，可空
	WapReturnURL WapReturnURLFunc
}

// Base 返回公共配置
func (c *WxPayConfig) Base() *BaseConfig { return &c.BaseConfig }

// AlipayConfig 支付宝配置
type AlipayConfig struct {
	BaseConfig

	AppID      string // 应用ID
	PrivateKey string // 应用私钥
	IsProd     bool   // 是否生产环境

	// 证书模式三件套，内容而非路径；全部为空时走公钥模式
	AppCertContent    string // 应用公钥证书
	RootCertContent   string // 支付宝根证书
	PublicCertContent string // 支付宝公钥证书

	// ReturnURL 页面支付完成后的同步回跳地址，可空
	ReturnURL string
}

// Base 返回公共配置
func (c *AlipayConfig) Base() *BaseConfig { return &c.BaseConfig }

// PayBroadcaster 支付结果广播器
// 同步支付拿到结果后调用一次，广播失败不重试，只记日志。
type PayBroadcaster interface {
	Broadcast(resp *PayResponse) bool
}

// RefundBroadcaster 退款结果广播器
type RefundBroadcaster interface {
	Broadcast(resp *RefundResponse) bool
}

// TransferBroadcaster 转账结果广播器
type TransferBroadcaster interface {
	Broadcast(resp *TransferResponse) bool
}

// PayFactory 按平台标识解析支付实现
type PayFactory interface {
	CreatePay(p Platform) (Pay, error)
}

// 进程级配置注册表
// 启动时写入，运行期间只读，不支持与读取并发的修改。
var (
	globalMu sync.RWMutex

	configs             = map[Platform]PayConfig{}
	factory             PayFactory = &defaultPayFactory{}
	payBroadcaster      PayBroadcaster
	refundBroadcaster   RefundBroadcaster
	transferBroadcaster TransferBroadcaster
)

// RegisterConfig 注册平台配置，应在启动阶段调用
func RegisterConfig(p Platform, cfg PayConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configs[p] = cfg
}

// GetConfig 获取平台配置
// 平台未注册时返回 ConfigError。
func GetConfig(p Platform) (PayConfig, error) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	cfg, ok := configs[p]
	if !ok {
		return nil, &ConfigError{Platform: p}
	}
	return cfg, nil
}

// SetPayFactory 替换支付实现工厂，应在启动阶段调用
func SetPayFactory(f PayFactory) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if f != nil {
		factory = f
	}
}

// SetPayBroadcaster 设置支付结果广播器
// 使用同步支付时必须设置。
func SetPayBroadcaster(b PayBroadcaster) {
	globalMu.Lock()
	defer globalMu.Unlock()
	payBroadcaster = b
}

// SetRefundBroadcaster 设置退款结果广播器，可不设置
func SetRefundBroadcaster(b RefundBroadcaster) {
	globalMu.Lock()
	defer globalMu.Unlock()
	refundBroadcaster = b
}

// SetTransferBroadcaster 设置转账结果广播器，可不设置
func SetTransferBroadcaster(b TransferBroadcaster) {
	globalMu.Lock()
	defer globalMu.Unlock()
	transferBroadcaster = b
}

func payFactory() PayFactory {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return factory
}

func getPayBroadcaster() PayBroadcaster {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return payBroadcaster
}

func getRefundBroadcaster() RefundBroadcaster {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return refundBroadcaster
}

func getTransferBroadcaster() TransferBroadcaster {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return transferBroadcaster
}

// defaultPayFactory 内置工厂
// 按平台懒加载创建实现并缓存，配置在启动后只读，缓存可以长期复用。
type defaultPayFactory struct {
	mu    sync.Mutex
	cache map[Platform]Pay
}

// CreatePay 解析平台对应的支付实现
func (f *defaultPayFactory) CreatePay(p Platform) (Pay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pay, ok := f.cache[p]; ok {
		return pay, nil
	}

	cfg, err := GetConfig(p)
	if err != nil {
		return nil, err
	}

	var pay Pay
	switch p {
	case PlatformWxPay:
		wxCfg, ok := cfg.(*WxPayConfig)
		if !ok {
			return nil, &ConfigError{Platform: p, Msg: fmt.Sprintf("支付平台[%s]的配置类型错误", p)}
		}
		pay, err = NewWxPay(wxCfg)
		if err != nil {
			return nil, err
		}
	case PlatformAlipay:
		aliCfg, ok := cfg.(*AlipayConfig)
		if !ok {
			return nil, &ConfigError{Platform: p, Msg: fmt.Sprintf("支付平台[%s]的配置类型错误", p)}
		}
		pay, err = NewAliPay(aliCfg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ConfigError{Platform: p}
	}

	if f.cache == nil {
		f.cache = map[Platform]Pay{}
	}
	f.cache[p] = pay
	return pay, nil
}
