package main

import (
	"os"

	"github.com/Lab80p/Library-management-project/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
