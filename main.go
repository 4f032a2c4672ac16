// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for the toolkit.
//
// Usage:
//
//	go run . [flags]
//	./tk [flags]
//
// This launches the tk CLI. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/brenoschmidt/toolkit/ui/cli"
)

// main is the entrypoint for the tk CLI.
func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("tk error: %v", err)
		os.Exit(1)
	}
}
