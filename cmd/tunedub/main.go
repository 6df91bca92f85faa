package main

import (
	"os"

	"github.com/terminalsin/tunedub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
