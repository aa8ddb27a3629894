package main

import (
	"fmt"
	"os"

	"github.com/schwifty-labs/morty-pipeline/pkg/cli"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(Version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
