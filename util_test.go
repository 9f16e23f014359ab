package payment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRandomString(t *testing.T) {
	s := GetRandomString(32)
	assert.Len(t, s, 32)
	for _, c := range s {
		valid := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		assert.True(t, valid, "非法字符: %c", c)
	}
}

func TestGetRandomStringConcurrentUnique(t *testing.T) {
	// 随机串用作请求随机数，同一纳秒内的并发调用也不能重复
	const n = 64
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = GetRandomString(32)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, s := range results {
		require.False(t, seen[s], "生成了重复的随机串: %s", s)
		seen[s] = true
	}
}

func TestFenToYuan(t *testing.T) {
	assert.Equal(t, "0.01", fenToYuan(1))
	assert.Equal(t, "1.00", fenToYuan(100))
	assert.Equal(t, "88.00", fenToYuan(8800))
	assert.Equal(t, "123.45", fenToYuan(12345))
}

func TestParseTimePtr(t *testing.T) {
	parsed := parseTimePtr("20060102150405", "20240101120000")
	require.NotNil(t, parsed)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, 12, parsed.Hour())

	assert.Nil(t, parseTimePtr("20060102150405", ""))
	assert.Nil(t, parseTimePtr("20060102150405", "not-a-time"))
}
