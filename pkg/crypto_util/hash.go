package crypto_util

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Keccak256 计算输入的 Keccak256 哈希值 (以太坊使用的哈希算法)。
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Keccak256Hex 返回十六进制编码的 Keccak256 哈希。
func Keccak256Hex(data []byte) string {
	return hex.EncodeToString(Keccak256(data))
}

// Fingerprint 计算输入的 Blake3 短指纹 (前 8 字节)。
// 用于在日志中引用助记词/私钥等敏感数据, 而不泄露内容本身。
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
