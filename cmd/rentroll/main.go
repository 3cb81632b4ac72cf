package main

import (
	"os"

	"github.com/rentroll-dev/rentroll/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
