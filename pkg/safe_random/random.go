package safe_random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Reader 是全局共享的加密安全随机数生成器, 默认为 crypto/rand.Reader。
// 测试可以替换它来获得确定性输出。
var Reader io.Reader = rand.Reader

// GenerateRandomBytes 生成 n 字节的安全随机切片。
// 如果系统的安全随机数生成器失败, 返回错误而不是退化为弱随机。
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, fmt.Errorf("生成随机字节失败: %w", err)
	}
	return b, nil
}

// GenerateRandomHexString 生成 n 字节熵的 Hex 字符串 (长度为 2n)。
func GenerateRandomHexString(n int) (string, error) {
	b, err := GenerateRandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
