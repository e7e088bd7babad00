package main

import (
	"os"

	"github.com/kec-hub/opportunities/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
