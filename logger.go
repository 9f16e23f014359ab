// Package payment 统一支付层
package payment

import "go.uber.org/zap"

// log 包级日志对象
// 默认使用 zap 生产配置，宿主程序可通过 SetLogger 替换。
var log = newDefaultLogger()

func newDefaultLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// SetLogger 替换包级日志对象
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l.Sugar()
	}
}
