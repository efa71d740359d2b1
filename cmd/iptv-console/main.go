package main

import (
	"os"

	"github.com/alorle/iptv-console/cmd/iptv-console/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
