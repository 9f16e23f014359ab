// Package payment 统一支付层
package payment

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfig 从配置文件加载平台配置并写入注册表
// 只覆盖凭证、开关和尺寸等静态项，链接生成器和广播器属于代码配置，
// 由宿主程序在注册后自行设置。
//
// 配置文件示例（yaml）:
//
//	wxpay:
//	  app_id: wx8888888888888888
//	  applet_app_id: wx9999999999999999
//	  mch_id: "1900000109"
//	  key: 192006250b4c09247ec02edce69f6a2d
//	  debug: false
//	  qr_code_width: 300
//	alipay:
//	  app_id: "2014072300007148"
//	  private_key: MIIEvQ...
//	  is_prod: true
func LoadConfig(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("支付配置文件读取失败: %w", err)
	}

	loaded := false

	if v.IsSet("wxpay") {
		cfg := &WxPayConfig{
			AppID:              v.GetString("wxpay.app_id"),
			AppletAppID:        v.GetString("wxpay.applet_app_id"),
			MchID:              v.GetString("wxpay.mch_id"),
			Key:                v.GetString("wxpay.key"),
			CertContent:        v.GetString("wxpay.cert"),
			KeyContent:         v.GetString("wxpay.cert_key"),
			ClientIP:           v.GetString("wxpay.client_ip"),
			SubjectPrefix:      v.GetString("wxpay.subject_prefix"),
			RefundNotFoundCode: v.GetString("wxpay.refund_not_found_code"),
		}
		cfg.Debug = v.GetBool("wxpay.debug")
		cfg.QrCodeWidth = v.GetInt("wxpay.qr_code_width")
		RegisterConfig(PlatformWxPay, cfg)
		loaded = true
	}

	if v.IsSet("alipay") {
		cfg := &AlipayConfig{
			AppID:             v.GetString("alipay.app_id"),
			PrivateKey:        v.GetString("alipay.private_key"),
			IsProd:            v.GetBool("alipay.is_prod"),
			AppCertContent:    v.GetString("alipay.app_cert"),
			RootCertContent:   v.GetString("alipay.root_cert"),
			PublicCertContent: v.GetString("alipay.public_cert"),
			ReturnURL:         v.GetString("alipay.return_url"),
		}
		cfg.Debug = v.GetBool("alipay.debug")
		cfg.QrCodeWidth = v.GetInt("alipay.qr_code_width")
		RegisterConfig(PlatformAlipay, cfg)
		loaded = true
	}

	if !loaded {
		return fmt.Errorf("支付配置文件[%s]中没有任何平台配置", path)
	}
	return nil
}
