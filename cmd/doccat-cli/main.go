package main

import (
	"os"

	"doccat/cmd/doccat-cli/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:], os.Stdout, os.Stderr))
}
