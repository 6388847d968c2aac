// Package main is the entry point for frommer-watch.
package main

import (
	"os"

	"github.com/donaldgifford/frommer-watch/cmd/frommer-watch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
