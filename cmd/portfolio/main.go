// Package main is the entry point for the portfolio guestbook server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/evcraddock/portfolio/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
