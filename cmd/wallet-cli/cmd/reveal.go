package cmd

import (
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

var revealCmd = &cobra.Command{
	Use:   "reveal <keystore.json>",
	Short: "解密 Keystore 并显示助记词",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vault, err := keystore.LoadFromFile(args[0])
		if err != nil {
			fmt.Printf("读取 Keystore 失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Print("输入密码: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Printf("读取密码失败: %v\n", err)
			os.Exit(1)
		}

		mnemonic, err := keystore.DecryptMnemonic(vault, string(password))
		if err != nil {
			fmt.Printf("解密失败: %v\n", err)
			os.Exit(1)
		}

		service := bip39.NewMnemonicService()
		if !service.ValidateMnemonic(mnemonic) {
			fmt.Println("警告: 解密内容不是有效的 BIP-39 助记词")
		}

		fmt.Println("\n---------------------------------------------------")
		fmt.Printf("助记词: %s\n", mnemonic)
		fmt.Println("---------------------------------------------------")

		// 顺带显示派生的首个地址, 方便核对
		seed := service.MnemonicToSeed(mnemonic, "")
		if master, err := bip32.NewMasterKeyFromSeed(seed, nil); err == nil {
			if child, err := master.DerivePath(bip32.EthereumPath); err == nil {
				if pubKey, err := child.ECPubKey(); err == nil {
					fmt.Printf("地址 (%s): %s\n", bip32.EthereumPath,
						address.PubKeyToAddress(pubKey.SerializeUncompressed()))
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)
}
