package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/address"
)

var checkCmd = &cobra.Command{
	Use:   "check-address <address>",
	Short: "校验以太坊地址 (EIP-55)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr := strings.TrimSpace(args[0])
		if !address.IsValid(addr) {
			fmt.Printf("❌ 无效地址: %s\n", addr)
			os.Exit(1)
		}
		fmt.Println("✅ 地址有效")
		fmt.Printf("校验和形式: %s\n", address.Normalize(addr))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
