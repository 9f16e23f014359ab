// Package payment 统一支付层
package payment

import (
	"errors"
	"fmt"
)

// InputError 入参错误
// 缺少必须的扩展参数，或者请求了当前平台不支持的操作。
type InputError struct {
	Msg string
}

// Error 返回错误描述
func (e *InputError) Error() string {
	return e.Msg
}

// ConfigError 配置错误
// 请求的平台没有注册配置或没有对应的支付实现。
type ConfigError struct {
	Platform Platform
	Msg      string
}

// Error 返回错误描述
func (e *ConfigError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("支付平台[%s]未配置", e.Platform)
}

// ProviderError 支付平台错误
// 平台接口调用失败或业务失败，Raw 中保留平台原始应答用于排查。
type ProviderError struct {
	Msg   string
	Raw   map[string]string
	Cause error
}

// Error 返回错误描述
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

// Unwrap 返回底层错误
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// wrapProviderError 将任意错误包装为 ProviderError
// 已经是 ProviderError 或 InputError 的错误原样返回，
// 入参错误不属于平台错误，不做二次包装。
func wrapProviderError(msg string, err error) error {
	var pe *ProviderError
	var ie *InputError
	if errors.As(err, &pe) || errors.As(err, &ie) {
		return err
	}
	return &ProviderError{Msg: msg, Cause: err}
}

// unsupportedError 平台不支持某操作时的统一错误
func unsupportedError(p Platform, op string) error {
	return &InputError{Msg: fmt.Sprintf("支付平台[%s]不支持%s", p, op)}
}
