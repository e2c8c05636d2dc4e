// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"devdevman/cli/internal/auth"
	"devdevman/cli/internal/httperrors"
	"devdevman/cli/internal/processing"
)

var jsonOutput bool

// tenantsCmd lists the tenants of the processing environment.
var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenants of the processing environment",
	Long: `The tenants command lists the tenants of the configured processing environment,
ordered by environment and name. Requests use the token of the current account.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		tenants, err := svc.Tenants(cmd.Context())
		if err != nil {
			return processingError(svc, "listing tenants", err)
		}
		if jsonOutput {
			return printJSON(tenants)
		}
		if len(tenants) == 0 {
			pterm.Info.Println("No tenants found")
			return nil
		}

		data := pterm.TableData{{"Environment", "Tenant", "Device owner"}}
		for _, t := range tenants {
			data = append(data, []string{t.Environment, t.TenantName, t.DeviceOwnerID})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var tenantShowCmd = &cobra.Command{
	Use:   "show <tenant>",
	Short: "Show one tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		t, err := svc.Tenant(cmd.Context(), args[0])
		if err != nil {
			return processingError(svc, "reading tenant "+args[0], err)
		}
		if jsonOutput {
			return printJSON(t)
		}
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Tenant", t.TenantName},
			{"Environment", t.Environment},
			{"Device owner", t.DeviceOwnerID},
		}).Render()
	},
}

// processingError explains a failed processing API call.
func processingError(svc *auth.Service, action string, err error) error {
	switch {
	case errors.Is(err, processing.ErrUnauthorized):
		pterm.Warning.Println("The processing API rejected the token. Run 'devdevman login' and try again.")
		return fmt.Errorf("%s: %w", action, err)
	case errors.Is(err, processing.ErrNotFound):
		return fmt.Errorf("%s: %w", action, err)
	default:
		return httperrors.FormatNetworkError(err, action, svc.ProcessingHost())
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(tenantsCmd)
	tenantsCmd.AddCommand(tenantShowCmd)
	tenantsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
}
