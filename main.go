package main

import (
	"os"

	"github.com/stratus-cloud/stratus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
