package main

import (
	"os"

	"github.com/melkeydev/logistics-admin/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
