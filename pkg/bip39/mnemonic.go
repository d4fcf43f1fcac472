package bip39

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/safe_random"
)

// MnemonicService 提供 BIP-39 助记词相关的功能
type MnemonicService struct{}

// NewMnemonicService 创建一个新的助记词服务实例
func NewMnemonicService() *MnemonicService {
	return &MnemonicService{}
}

// GenerateMnemonic 生成一个新的随机助记词 (BIP-39)。
// bitSize: 熵的位数, 128 (12个单词) 或 256 (24个单词)。
// 熵统一走 safe_random, 保证来自加密安全的随机源。
func (s *MnemonicService) GenerateMnemonic(bitSize int) (string, error) {
	if bitSize%32 != 0 || bitSize < 128 || bitSize > 256 {
		return "", fmt.Errorf("不支持的熵位数: %d", bitSize)
	}

	entropy, err := safe_random.GenerateRandomBytes(bitSize / 8)
	if err != nil {
		return "", fmt.Errorf("生成熵失败: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("生成助记词失败: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic 验证助记词是否有效。
func (s *MnemonicService) ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// MnemonicToSeed 将助记词转换为种子 (BIP-39 Seed)。
// password 是可选的 Passphrase ("第25个单词"), 不需要时传 ""。
func (s *MnemonicService) MnemonicToSeed(mnemonic string, password string) []byte {
	return bip39.NewSeed(mnemonic, password)
}
