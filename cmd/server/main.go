// Package main implements the entry point for the notes API server, which
// stores notes and enriches them in the background with a summary and a
// sentiment score.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
