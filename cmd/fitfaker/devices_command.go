package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fitfaker/internal/devices"
)

func newDevicesCommand() *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:         "devices",
		Short:       "List impersonatable devices",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, d := range devices.List(showAll) {
				rows = append(rows, []string{
					d.Key,
					d.Name,
					strconv.Itoa(int(d.ProductID)),
					formatFirmware(d.SoftwareVersion),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Device", "Product ID", "Firmware"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				out,
			))
			if !showAll {
				fmt.Fprintln(out, "Showing popular devices; pass --all for the full registry")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Show every registered device")
	return cmd
}

func formatFirmware(v uint16) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
