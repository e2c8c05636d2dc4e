// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides helpers for terminal output around long-running
// browser flows.
package terminal

import (
	"os"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// IsInteractive reports whether stdout is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StopFunc ends a spinner. ok selects the success or warning style; an empty
// message keeps the spinner text.
type StopFunc func(ok bool, message string)

// StartSpinner shows text with a spinner while a browser flow is pending.
// When stdout is not a terminal the text is printed once and no animation runs.
func StartSpinner(text string) StopFunc {
	if !IsInteractive() {
		pterm.Info.Println(text)
		return func(ok bool, message string) {
			if message == "" {
				return
			}
			if ok {
				pterm.Success.Println(message)
			} else {
				pterm.Warning.Println(message)
			}
		}
	}

	cursor.Hide()
	sp, err := pterm.DefaultSpinner.Start(text)
	if err != nil {
		cursor.Show()
		pterm.Info.Println(text)
		return func(bool, string) {}
	}
	return func(ok bool, message string) {
		defer cursor.Show()
		args := []any{}
		if message != "" {
			args = append(args, message)
		}
		if ok {
			sp.Success(args...)
		} else {
			sp.Warning(args...)
		}
	}
}
