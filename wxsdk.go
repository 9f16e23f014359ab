// Package payment 统一支付层
package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/wechat"
)

// WxSdk 微信支付v2接口通道
// 每个操作接收并返回一个扁平的字符串键值表，本层只负责键值表的
// 构造与解读，签名、报文编解码和传输由通道实现负责。
type WxSdk interface {
	// UnifiedOrder 统一下单
	UnifiedOrder(req map[string]string) (map[string]string, error)
	// MicroPay 付款码支付
	MicroPay(req map[string]string) (map[string]string, error)
	// OrderQuery 订单查询
	OrderQuery(req map[string]string) (map[string]string, error)
	// Refund 申请退款
	Refund(req map[string]string) (map[string]string, error)
	// RefundQuery 退款查询
	RefundQuery(req map[string]string) (map[string]string, error)
	// Transfer 企业付款到零钱
	Transfer(req map[string]string) (map[string]string, error)
	// TransferQuery 企业付款查询
	TransferQuery(req map[string]string) (map[string]string, error)
}

// wxGopaySdk WxSdk 的内置实现，基于 gopay 的微信v2客户端
// 公共参数填充、签名和xml报文收发都由客户端完成，这里只做
// 键值表与 BodyMap/应答结构体之间的转换。
type wxGopaySdk struct {
	client   *wechat.Client
	signType string
}

// NewWxSdk 创建微信支付v2接口通道
// certContent/keyContent 是商户API证书和私钥的pem内容，
// 退款和企业付款接口必须配置，其余接口可传空。
func NewWxSdk(appID, mchID, key, signType string, certContent, keyContent []byte) (WxSdk, error) {
	client := wechat.NewClient(appID, mchID, key, true)
	if len(certContent) > 0 || len(keyContent) > 0 {
		if err := client.AddCertPemFileContent(certContent, keyContent); err != nil {
			return nil, &ConfigError{Platform: PlatformWxPay, Msg: "微信商户证书配置失败: " + err.Error()}
		}
	}
	return &wxGopaySdk{client: client, signType: signType}, nil
}

// wxBodyMap 将参数表转换为请求 BodyMap 并补充随机串
// signType 为空时不携带 sign_type 字段，企业付款接口没有该字段。
func wxBodyMap(req map[string]string, signType string) gopay.BodyMap {
	bm := make(gopay.BodyMap, len(req)+2)
	for k, v := range req {
		bm.Set(k, v)
	}
	bm.Set("nonce_str", GetRandomString(32))
	if signType != "" {
		bm.Set("sign_type", signType)
	}
	return bm
}

// wxRspToMap 将应答结构体摊平为参数表
// 应答结构体的字段全部是带json标签的字符串，走一次json往返即可。
func wxRspToMap(rsp any) (map[string]string, error) {
	bs, err := json.Marshal(rsp)
	if err != nil {
		return nil, fmt.Errorf("微信支付应答序列化失败: %w", err)
	}
	result := map[string]string{}
	if err := json.Unmarshal(bs, &result); err != nil {
		return nil, fmt.Errorf("微信支付应答解析失败: %w", err)
	}
	return result, nil
}

// wxBodyMapToMap 将原始应答 BodyMap 转换为参数表
// 退款查询的带下标字段族只出现在原始应答里。
func wxBodyMapToMap(bm gopay.BodyMap) map[string]string {
	result := make(map[string]string, len(bm))
	for k := range bm {
		result[k] = bm.GetString(k)
	}
	return result
}

func (s *wxGopaySdk) UnifiedOrder(req map[string]string) (map[string]string, error) {
	rsp, err := s.client.UnifiedOrder(context.Background(), wxBodyMap(req, s.signType))
	if err != nil {
		return nil, err
	}
	return wxRspToMap(rsp)
}

func (s *wxGopaySdk) MicroPay(req map[string]string) (map[string]string, error) {
	rsp, err := s.client.Micropay(context.Background(), wxBodyMap(req, s.signType))
	if err != nil {
		return nil, err
	}
	return wxRspToMap(rsp)
}

func (s *wxGopaySdk) OrderQuery(req map[string]string) (map[string]string, error) {
	_, resBm, err := s.client.QueryOrder(context.Background(), wxBodyMap(req, s.signType))
	if err != nil {
		return nil, err
	}
	return wxBodyMapToMap(resBm), nil
}

func (s *wxGopaySdk) Refund(req map[string]string) (map[string]string, error) {
	_, resBm, err := s.client.Refund(context.Background(), wxBodyMap(req, s.signType))
	if err != nil {
		return nil, err
	}
	return wxBodyMapToMap(resBm), nil
}

func (s *wxGopaySdk) RefundQuery(req map[string]string) (map[string]string, error) {
	_, resBm, err := s.client.QueryRefund(context.Background(), wxBodyMap(req, s.signType))
	if err != nil {
		return nil, err
	}
	return wxBodyMapToMap(resBm), nil
}

func (s *wxGopaySdk) Transfer(req map[string]string) (map[string]string, error) {
	rsp, err := s.client.Transfer(context.Background(), wxBodyMap(req, ""))
	if err != nil {
		return nil, err
	}
	return wxRspToMap(rsp)
}

func (s *wxGopaySdk) TransferQuery(req map[string]string) (map[string]string, error) {
	rsp, err := s.client.GetTransferInfo(context.Background(), wxBodyMap(req, ""))
	if err != nil {
		return nil, err
	}
	return wxRspToMap(rsp)
}
