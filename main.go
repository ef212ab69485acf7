package main

import (
	"os"

	"github.com/spigell/contest-guide/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
