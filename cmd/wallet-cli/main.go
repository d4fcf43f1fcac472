package main

import "github.com/adebolajoseph/Loteraa-wallet-sdk/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
