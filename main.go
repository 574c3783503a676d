package main

import (
	"os"

	"github.com/temirov/manahg/cmd/cli"
)

// main executes the manahg command-line application.
func main() {
	os.Exit(cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
