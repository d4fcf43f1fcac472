package address

import (
	"encoding/hex"
	"strings"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/crypto_util"
)

// IsValid 严格校验以太坊地址: 0x 前缀 + 40 位十六进制。
// 混合大小写的地址还必须通过 EIP-55 校验和, 防止抄错一个字符就把钱打丢。
// 全小写/全大写地址视为未带校验和, 直接通过格式检查。
func IsValid(addr string) bool {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return false
	}
	body := addr[2:]
	if _, err := hex.DecodeString(strings.ToLower(body)); err != nil {
		return false
	}

	lower := strings.ToLower(body)
	upper := strings.ToUpper(body)
	if body == lower || body == upper {
		return true
	}
	// 混合大小写: 必须与 EIP-55 校验和完全一致
	return body == Checksum(lower)
}

// Normalize 返回带 EIP-55 校验和的标准形式。输入必须已通过 IsValid。
func Normalize(addr string) string {
	return "0x" + Checksum(strings.ToLower(addr[2:]))
}

// PubKeyToAddress 将非压缩公钥 (65 bytes, 0x04 开头) 转换为 EIP-55 地址。
func PubKeyToAddress(pubKeyBytes []byte) string {
	if len(pubKeyBytes) == 65 && pubKeyBytes[0] == 0x04 {
		pubKeyBytes = pubKeyBytes[1:]
	}

	// Keccak-256 后取末 20 字节
	hash := crypto_util.Keccak256(pubKeyBytes)
	addressHex := hex.EncodeToString(hash[12:])
	return "0x" + Checksum(addressHex)
}

// Checksum 对小写 hex 地址体实现 EIP-55 混合大小写校验和。
func Checksum(lowerHex string) string {
	hexHash := crypto_util.Keccak256Hex([]byte(lowerHex))

	var sb strings.Builder
	for i := 0; i < len(lowerHex); i++ {
		char := lowerHex[i]
		if hexCharToInt(hexHash[i]) >= 8 {
			sb.WriteString(strings.ToUpper(string(char)))
		} else {
			sb.WriteByte(char)
		}
	}
	return sb.String()
}

func hexCharToInt(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	}
	return 0
}
