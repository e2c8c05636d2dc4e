// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"devdevman/cli/internal/processing"
)

var (
	deviceType  string
	deviceOwner string
	deviceSet   map[string]string
	deviceUnset []string
)

// devicesCmd groups the device registration commands.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List, inspect and update device registrations",
}

var devicesListCmd = &cobra.Command{
	Use:   "list <tenant>",
	Short: "List the devices registered to a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		devices, err := svc.Devices(cmd.Context(), args[0])
		if err != nil {
			return processingError(svc, "listing devices of "+args[0], err)
		}
		if jsonOutput {
			return printJSON(devices)
		}
		if len(devices) == 0 {
			pterm.Info.Printfln("No devices registered to %s", args[0])
			return nil
		}

		data := pterm.TableData{{"Device", "Type", "Manufacturer", "Model", "Serial", "Environment"}}
		for _, d := range devices {
			data = append(data, []string{d.DeviceID, d.DeviceType, d.Meta.Manufacturer, d.Meta.Model, d.Meta.Serial, d.Meta.Environment})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var devicesShowCmd = &cobra.Command{
	Use:   "show <tenant> <device>",
	Short: "Show a device registration with all metadata",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		d, err := svc.Device(cmd.Context(), args[0], args[1])
		if err != nil {
			return processingError(svc, fmt.Sprintf("reading device %s/%s", args[0], args[1]), err)
		}
		if jsonOutput {
			return printJSON(d)
		}
		return renderDevice(d)
	},
}

var devicesUpdateCmd = &cobra.Command{
	Use:   "update <tenant> <device>",
	Short: "Change a device registration",
	Long: `The update command reads the device registration, applies the given changes and
writes it back. Metadata keys are changed with --set key=value and removed with --unset key.`,
	Example: `  devdevman devices update acme meter-17 --set room=B12 --unset floor`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("type") && !flags.Changed("owner") && len(deviceSet) == 0 && len(deviceUnset) == 0 {
			return fmt.Errorf("nothing to update; use --type, --owner, --set or --unset")
		}

		svc, err := newService(nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		d, err := svc.UpdateDevice(cmd.Context(), args[0], args[1], func(d *processing.DeviceRegistration) {
			if flags.Changed("type") {
				d.DeviceType = deviceType
			}
			if flags.Changed("owner") {
				d.DeviceOwner = deviceOwner
			}
			for k, v := range deviceSet {
				d.Meta[k] = v
			}
			for _, k := range deviceUnset {
				delete(d.Meta, k)
			}
		})
		if err != nil {
			return processingError(svc, fmt.Sprintf("updating device %s/%s", args[0], args[1]), err)
		}
		if jsonOutput {
			return printJSON(d)
		}
		pterm.Success.Printfln("Device %s updated", d.DeviceID)
		return renderDevice(d)
	},
}

func renderDevice(d processing.DeviceRegistration) error {
	data := pterm.TableData{
		{"Device", d.DeviceID},
		{"Type", d.DeviceType},
		{"Tenant", d.Tenant},
		{"Device owner", d.DeviceOwner},
	}
	keys := make([]string, 0, len(d.Meta))
	for k := range d.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data = append(data, []string{"metadata." + k, d.Meta[k]})
	}
	return pterm.DefaultTable.WithData(data).Render()
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd, devicesShowCmd, devicesUpdateCmd)
	devicesCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	devicesUpdateCmd.Flags().StringVar(&deviceType, "type", "", "New device type")
	devicesUpdateCmd.Flags().StringVar(&deviceOwner, "owner", "", "New device owner id")
	devicesUpdateCmd.Flags().StringToStringVar(&deviceSet, "set", nil, "Metadata to set as key=value (repeatable)")
	devicesUpdateCmd.Flags().StringSliceVar(&deviceUnset, "unset", nil, "Metadata keys to remove (repeatable)")
}
