package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/crypto_util"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/safe_random"
)

// Vault 遵循 Ethereum Keystore V3 的结构风格,
// 密文是整段助记词而不是单个私钥
type Vault struct {
	Crypto  CryptoJSON `json:"crypto"`
	Id      string     `json:"id"`
	Version int        `json:"version"`
}

type CryptoJSON struct {
	Cipher       string       `json:"cipher"`
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

const (
	scryptN     = 262144
	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32
)

var ErrMACMismatch = errors.New("invalid password or corrupted data (MAC mismatch)")

// EncryptMnemonic 用密码加密助记词。
// Scrypt 派生 AES-256-GCM 密钥, MAC = keccak256(derivedKey || ciphertext)。
func EncryptMnemonic(mnemonic, password string) (*Vault, error) {
	salt, err := safe_random.GenerateRandomBytes(32)
	if err != nil {
		return nil, err
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce, err := safe_random.GenerateRandomBytes(gcm.NonceSize())
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(mnemonic), nil)
	mac := crypto_util.Keccak256(append(derivedKey, ciphertext...))

	id, err := newUUID()
	if err != nil {
		return nil, err
	}

	return &Vault{
		Version: 3,
		Id:      id,
		Crypto: CryptoJSON{
			Cipher:       "aes-256-gcm",
			CipherText:   hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{IV: hex.EncodeToString(nonce)},
			KDF:          "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}, nil
}

// DecryptMnemonic 解密 Vault 取回助记词。
// 先做常数时间的 MAC 校验, 密码错误和文件损坏不可区分。
func DecryptMnemonic(v *Vault, password string) (string, error) {
	salt, err := hex.DecodeString(v.Crypto.KDFParams.Salt)
	if err != nil {
		return "", fmt.Errorf("invalid salt: %w", err)
	}
	nonce, err := hex.DecodeString(v.Crypto.CipherParams.IV)
	if err != nil {
		return "", fmt.Errorf("invalid iv: %w", err)
	}
	ciphertext, err := hex.DecodeString(v.Crypto.CipherText)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext: %w", err)
	}
	mac, err := hex.DecodeString(v.Crypto.MAC)
	if err != nil {
		return "", fmt.Errorf("invalid mac: %w", err)
	}

	derivedKey, err := scrypt.Key([]byte(password), salt,
		v.Crypto.KDFParams.N,
		v.Crypto.KDFParams.R,
		v.Crypto.KDFParams.P,
		v.Crypto.KDFParams.DKLen)
	if err != nil {
		return "", err
	}

	calculated := crypto_util.Keccak256(append(derivedKey, ciphertext...))
	if subtle.ConstantTimeCompare(mac, calculated) != 1 {
		return "", ErrMACMismatch
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

// SaveToFile 保存到文件 (0600)
func (v *Vault) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// LoadFromFile 从文件加载
func LoadFromFile(filename string) (*Vault, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var v Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func newUUID() (string, error) {
	b, err := safe_random.GenerateRandomBytes(16)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:]), nil
}
