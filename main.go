package main

import (
	"os"

	"github.com/mrapplexz/hack-digital-ambulance/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
