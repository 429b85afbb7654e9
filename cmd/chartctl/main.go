package main

import (
	"os"

	"github.com/rustyeddy/chartkit/cmd/chartctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
