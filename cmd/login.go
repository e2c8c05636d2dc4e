// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	clierrors "devdevman/cli/internal/errors"
	"devdevman/cli/internal/session"
	"devdevman/cli/internal/terminal"
)

// loginCmd signs the user in through the browser.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in to Entra ID through your browser",
	Long: `The login command opens the Entra ID sign-in page in your default browser and waits
for you to complete it. The link is also printed so it can be opened by hand.

On success the signed-in account becomes the current session. Tokens are kept in
the identity library's cache, stored in the OS keychain.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		var current *session.UserSession
		unsub := svc.Store().Subscribe(func(u *session.UserSession) { current = u })
		defer unsub()

		stop := terminal.StartSpinner("Waiting for sign-in in your browser")
		outcome := svc.Login(cmd.Context())

		switch outcome {
		case session.SignedIn:
			stop(true, "Login successful")
			if current != nil {
				pterm.Printfln("👤 Logged in as %s (%s)", current.DisplayName, current.Username)
			}
			return nil
		case session.NoRemoteSession:
			stop(false, "The sign-in returned no account. Run 'devdevman login' again.")
			return nil
		case session.CachedAccountOnly:
			stop(false, "An account is cached but could not be selected. Run 'devdevman login' again.")
			return nil
		case session.AmbiguousAccount:
			stop(false, "Several accounts are cached. Run 'devdevman logout --hard' and sign in again.")
			return nil
		default:
			stop(false, "Login failed")
			return clierrors.New(clierrors.InteractiveFlowFailed, "login did not complete; rerun with --verbose for details")
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
