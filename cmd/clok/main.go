package main

import (
	"os"

	"github.com/clokai/clok/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
