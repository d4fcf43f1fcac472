package chains

import "fmt"

// networkNames 维护链 ID 到展示名称的静态映射。
var networkNames = map[uint64]string{
	1:        "Ethereum Mainnet",
	5:        "Goerli Testnet",
	11155111: "Sepolia Testnet",
	137:      "Polygon Mainnet",
	80001:    "Polygon Mumbai",
	56:       "BSC Mainnet",
	97:       "BSC Testnet",
}

// NetworkName 返回链 ID 对应的网络名称, 未知链渲染为 "Chain ID: {id}"。
func NetworkName(chainID uint64) string {
	if name, ok := networkNames[chainID]; ok {
		return name
	}
	return fmt.Sprintf("Chain ID: %d", chainID)
}

// FormatTxHash 缩短交易哈希用于展示, 例如 0xabcd...ef12。
func FormatTxHash(hash string, length int) string {
	if length <= 0 {
		length = 10
	}
	if len(hash) <= length {
		return hash
	}
	half := length / 2
	return hash[:half] + "..." + hash[len(hash)-half:]
}
