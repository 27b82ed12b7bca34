// Package main provides the javacomplete CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "javacomplete",
		Version: version,
		Usage:   "Type-directed Java member completion",
		Commands: []*cli.Command{
			completeCommand(),
			exploreCommand(),
			checkModelCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
