// Package payment 统一支付层
package payment

import (
	"math/rand"
	"strconv"
	"time"
)

// GetRandomString 随机生成指定长度的字符串
// 使用包级随机源，并发调用下也不会生成相同的随机串。
func GetRandomString(l int) string {
	str := "0123456789AaBbCcDdEeFfGgHhIiJjKkLlMmNnOoPpQqRrSsTtUuVvWwXxYyZz"
	chars := []byte(str)
	result := make([]byte, 0, l)
	for i := 0; i < l; i++ {
		result = append(result, chars[rand.Intn(len(chars))])
	}
	return string(result)
}

// fenToYuan 将分为单位的金额转换为元为单位的字符串，保留两位小数
func fenToYuan(fen int64) string {
	return strconv.FormatFloat(float64(fen)/100, 'f', 2, 64)
}

// parseTimePtr 按给定格式解析时间文本
// 解析失败或为空时返回nil。
func parseTimePtr(layout, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
