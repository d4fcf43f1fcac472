package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/address"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/bip32"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/bip39"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/keystore"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "离线生成一个新钱包",
	Long:  `生成 BIP-39 助记词并按以太坊标准路径 m/44'/60'/0'/0/0 派生首个账户。`,
	Run: func(cmd *cobra.Command, args []string) {
		words, _ := cmd.Flags().GetInt("words")
		bitSize := 128
		if words == 24 {
			bitSize = 256
		}

		service := bip39.NewMnemonicService()
		mnemonic, err := service.GenerateMnemonic(bitSize)
		if err != nil {
			fmt.Printf("生成助记词失败: %v\n", err)
			os.Exit(1)
		}

		seed := service.MnemonicToSeed(mnemonic, "")
		master, err := bip32.NewMasterKeyFromSeed(seed, nil)
		if err != nil {
			fmt.Printf("派生主密钥失败: %v\n", err)
			os.Exit(1)
		}
		child, err := master.DerivePath(bip32.EthereumPath)
		if err != nil {
			fmt.Printf("派生账户失败: %v\n", err)
			os.Exit(1)
		}

		privKey, err := child.ECPrivKey()
		if err != nil {
			fmt.Printf("提取私钥失败: %v\n", err)
			os.Exit(1)
		}
		pubKey, err := child.ECPubKey()
		if err != nil {
			fmt.Printf("提取公钥失败: %v\n", err)
			os.Exit(1)
		}

		addr := address.PubKeyToAddress(pubKey.SerializeUncompressed())

		fmt.Println("✅ 新钱包已生成!")
		fmt.Printf("地址:   %s\n", addr)
		fmt.Printf("派生路径: %s\n", bip32.EthereumPath)

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			if _, err := os.Stat(outputFile); err == nil {
				fmt.Printf("错误: 文件 %s 已存在。请先删除或指定其他文件名。\n", outputFile)
				os.Exit(1)
			}
			password, err := readPassword()
			if err != nil {
				fmt.Printf("读取密码失败: %v\n", err)
				os.Exit(1)
			}
			vault, err := keystore.EncryptMnemonic(mnemonic, password)
			if err != nil {
				fmt.Printf("加密失败: %v\n", err)
				os.Exit(1)
			}
			if err := vault.SaveToFile(outputFile); err != nil {
				fmt.Printf("保存文件失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Keystore 已保存: %s (ID: %s)\n", outputFile, vault.Id)
		}

		show, _ := cmd.Flags().GetBool("show-secrets")
		if show {
			fmt.Println("\n---------------------------------------------------")
			fmt.Printf("助记词: %s\n", mnemonic)
			fmt.Printf("私钥:   0x%s\n", hex.EncodeToString(privKey.Serialize()))
			fmt.Println("---------------------------------------------------")
		}
		fmt.Println("\n⚠️  警告: 请安全保存您的助记词。一旦丢失将无法恢复。")
	},
}

// readPassword 交互式读取并确认密码, 不回显
func readPassword() (string, error) {
	fmt.Print("输入密码: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("确认密码: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("两次输入的密码不一致")
	}
	if len(first) < 6 {
		return "", fmt.Errorf("密码长度至少需要 6 位")
	}
	return string(first), nil
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().Int("words", 12, "助记词单词数 (12 或 24)")
	newCmd.Flags().Bool("show-secrets", false, "在终端显示助记词与私钥")
	newCmd.Flags().StringP("output", "o", "", "将加密的 Keystore 保存到文件")
}
