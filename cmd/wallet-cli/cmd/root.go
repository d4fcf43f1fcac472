package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wallet-cli",
	Short: "离线钱包工具",
	Long:  `离线生成自托管钱包、校验地址。全程不触碰任何网络端点。`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
