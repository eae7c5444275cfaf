// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the rustatl CLI.
package main

import (
	"rustatl/cli/cmd"
)

func main() {
	cmd.Execute()
}
