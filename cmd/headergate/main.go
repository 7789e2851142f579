package main

import (
	"os"

	"github.com/tkingovr/headergate/cmd/headergate/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
