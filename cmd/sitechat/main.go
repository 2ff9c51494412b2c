package main

import (
	"os"

	"sitechat/cmd/sitechat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
