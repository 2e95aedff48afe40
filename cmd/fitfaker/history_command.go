package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			if store == nil {
				return errors.New("history is disabled in the configuration")
			}
			defer store.Close()

			conversions, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(conversions))
			for _, c := range conversions {
				activity := "-"
				if !c.ActivityTime.IsZero() {
					activity = c.ActivityTime.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					strconv.FormatInt(c.ID, 10),
					c.Profile,
					c.SourcePath,
					activity,
					c.ConvertedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Profile", "Source", "Activity", "Converted"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				out,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum entries to show (0 for all)")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			if store == nil {
				return errors.New("history is disabled in the configuration")
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}
}
