package main

import (
	"os"

	"github.com/examforge/examforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
