package main

import (
	"os"

	"github.com/melih/lighthouse-mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
