// Package main implements the tasktrack command: the HTTP API server for
// per-user task lists plus its operational subcommands.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
