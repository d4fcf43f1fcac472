package engine

import (
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/address"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/bip32"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/crypto_util"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/logger"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// CustodyWarning 随每个新钱包一起返回, 调用方必须原样展示
const CustodyWarning = "Save your mnemonic phrase securely. It cannot be recovered if lost."

// OfflineWallet 是离线生成的自托管钱包。
// 助记词与私钥只在本次响应中出现一次, 服务端不留存。
type OfflineWallet struct {
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
	Mnemonic   string `json:"mnemonic"`
	Warning    string `json:"warning"`
}

// CreateOfflineWallet 离线生成一个新钱包:
// 128 位熵助记词, 按以太坊标准路径 m/44'/60'/0'/0/0 派生首个账户。
// 全程不触碰任何网络端点。
func (e *Engine) CreateOfflineWallet() (*OfflineWallet, error) {
	mnemonic, err := e.mnemonics.GenerateMnemonic(128)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInternal, "Failed to generate mnemonic", err)
	}

	seed := e.mnemonics.MnemonicToSeed(mnemonic, "")

	master, err := bip32.NewMasterKeyFromSeed(seed, nil)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInternal, "Failed to derive master key", err)
	}

	child, err := master.DerivePath(bip32.EthereumPath)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInternal, "Failed to derive account key", err)
	}

	privKey, err := child.ECPrivKey()
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInternal, "Failed to extract private key", err)
	}
	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInternal, "Failed to extract public key", err)
	}

	addr := address.PubKeyToAddress(pubKey.SerializeUncompressed())

	// 日志只留指纹, 机密本体绝不落盘
	logger.Info("离线钱包已生成",
		zap.String("address", addr),
		zap.String("mnemonic_fp", crypto_util.Fingerprint([]byte(mnemonic))))

	return &OfflineWallet{
		Address:    addr,
		PrivateKey: "0x" + hex.EncodeToString(privKey.Serialize()),
		Mnemonic:   mnemonic,
		Warning:    CustodyWarning,
	}, nil
}
