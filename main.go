// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the devdevman CLI.
// It signs developers in to Entra ID and keeps the current session for other commands.
package main

import (
	"devdevman/cli/cmd"
)

func main() {
	cmd.Execute()
}
