package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fitfaker/internal/apps"
	"fitfaker/internal/fit"
)

func newAppsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "apps",
		Short:       "List supported training platforms",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, app := range apps.List() {
				dir := app.DetectDir()
				if dir == "" {
					dir = "-"
				}
				rows = append(rows, []string{
					string(app.Type),
					app.Name,
					strconv.Itoa(int(app.Manufacturer)) + " (" + fit.ManufacturerName(app.Manufacturer) + ")",
					dir,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Platform", "Manufacturer", "Detected Directory"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				out,
			))
			return nil
		},
	}
}
