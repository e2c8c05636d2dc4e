// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"devdevman/cli/internal/graph"
	"devdevman/cli/internal/httperrors"
)

// profileCmd shows the directory profile of the current user from Microsoft Graph.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your Microsoft Graph profile",
	Long: `The profile command obtains a User.Read token for the current account and reads
the /me resource from Microsoft Graph.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		p, err := svc.Profile(cmd.Context())
		if errors.Is(err, graph.ErrUnauthorized) {
			pterm.Warning.Println("Microsoft Graph rejected the token. Run 'devdevman login' and try again.")
			return err
		}
		if err != nil {
			return httperrors.FormatNetworkError(err, "reading your profile", svc.GraphHost())
		}

		data := pterm.TableData{
			{"Name", p.DisplayName},
			{"User principal", p.UserPrincipalName},
		}
		for _, row := range [][2]string{
			{"Mail", p.Mail},
			{"Job title", p.JobTitle},
			{"Office", p.OfficeLocation},
			{"Phone", strings.Join(p.BusinessPhones, ", ")},
		} {
			if row[1] != "" {
				data = append(data, []string{row[0], row[1]})
			}
		}
		return pterm.DefaultTable.WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
