package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fitfaker/internal/editor"
	"fitfaker/internal/fit"
	"fitfaker/internal/history"
	"fitfaker/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var profileFlag string
	var outputFlag string
	var dryRun bool
	var all bool
	var force bool

	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Rewrite activity files with the profile's device identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return errors.New("no input files; pass paths or use --all to scan the profile's activity directory")
			}
			if outputFlag != "" && (all || len(args) > 1) {
				return errors.New("--output only applies to a single input file")
			}

			e, profile, err := ctx.newEditor(profileFlag)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ctx.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			inputs := append([]string{}, args...)
			if all {
				results := preflight.RunAll(profile, profile.FitFilesDir)
				for _, r := range results {
					if !r.Passed {
						return fmt.Errorf("preflight: %s: %s", r.Name, r.Detail)
					}
				}
				scanned, err := scanActivityDir(cmd, profile.FitFilesDir, store, force)
				if err != nil {
					return err
				}
				inputs = append(inputs, scanned...)
			}
			if len(inputs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to convert")
				return nil
			}

			decoder := fit.NewDecoder(logger)
			failed := 0
			for _, input := range inputs {
				output := outputFlag
				if output == "" {
					output = editor.DefaultOutputPath(input)
				}

				src, err := decoder.DecodeFile(input)
				if err != nil {
					logger.Error("decode failed", "path", input, "error", err)
					failed++
					continue
				}
				if err := e.ConvertStream(src, output, dryRun); err != nil {
					logger.Error("conversion failed", "path", input, "error", err)
					failed++
					continue
				}
				if dryRun {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (dry run)\n", input, output)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", input, output)

				if store != nil {
					if _, err := store.Record(cmd.Context(), history.Conversion{
						SourcePath:   input,
						OutputPath:   output,
						Profile:      profile.Name,
						ActivityTime: activityTime(src),
					}); err != nil {
						logger.Warn("history record failed", "path", input, "error", err)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(inputs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile to convert with")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output path (single input only)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Decode and rewrite but write nothing")
	cmd.Flags().BoolVar(&all, "all", false, "Convert every new file in the profile's activity directory")
	cmd.Flags().BoolVar(&force, "force", false, "With --all, include files already in the history")
	return cmd
}

// scanActivityDir finds unconverted .fit files in the profile's
// activity directory, oldest first.
func scanActivityDir(cmd *cobra.Command, dir string, store *history.Store, force bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read activity directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".fit") {
			continue
		}
		if strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), "_modified") {
			continue
		}
		path := filepath.Join(dir, name)
		if store != nil && !force {
			seen, err := store.Seen(cmd.Context(), path)
			if err != nil {
				return nil, fmt.Errorf("check history: %w", err)
			}
			if seen {
				continue
			}
		}
		inputs = append(inputs, path)
	}
	sort.Strings(inputs)
	return inputs, nil
}

// activityTime extracts the recording timestamp from the stream's
// file-identity record.
func activityTime(src *fit.File) time.Time {
	for _, m := range src.Messages {
		if m.GlobalID != fit.MsgFileID {
			continue
		}
		if created, ok := m.Uint(fit.FileIDTimeCreated); ok {
			return fit.TimeFromFIT(uint32(created))
		}
		break
	}
	return time.Time{}
}
