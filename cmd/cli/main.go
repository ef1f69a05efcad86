package main

import (
	"fmt"
	"os"

	"github.com/crucial707/trade-account/cmd/cli/root"

	// Registers the account subcommands on the root command.
	_ "github.com/crucial707/trade-account/cmd/cli/account"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
