// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth wires configuration, the identity client and the session store
// together for the CLI commands, and persists a snapshot of the current user so
// that later invocations can report who is signed in.
package auth

import (
	"sync"
	"time"

	"github.com/pterm/pterm"

	"devdevman/cli/internal/session"
)

// now is replaced in tests.
var now = time.Now

// Persister returns an observer that mirrors published values into the keychain.
// The replay delivered on Subscribe is skipped: a fresh store always starts with
// no session, which says nothing about the previous invocation.
func Persister(logger *pterm.Logger) session.Observer {
	var once sync.Once
	return func(u *session.UserSession) {
		first := false
		once.Do(func() { first = true })
		if first {
			return
		}

		var err error
		if u == nil {
			err = Clear()
		} else {
			err = Save(State{
				LoggedIn:    true,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				UpdatedAt:   now().UTC(),
			})
		}
		if err != nil {
			logger.Warn("could not persist session snapshot", logger.Args("error", err.Error()))
		}
	}
}
