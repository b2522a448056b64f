package main

import (
	"os"

	"github.com/martijn/jobboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
