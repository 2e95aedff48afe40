package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fitfaker/internal/config"
	"fitfaker/internal/devices"
	"fitfaker/internal/editor"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List and manage conversion profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Profiles))
			for i := range cfg.Profiles {
				p := &cfg.Profiles[i]
				target, err := p.Target()
				if err != nil {
					return fmt.Errorf("profile %q: %w", p.Name, err)
				}
				deviceName := p.Device
				if d, err := devices.Lookup(p.Device); err == nil {
					deviceName = d.Name
				}
				name := p.Name
				if p.Name == cfg.DefaultProfile {
					name += " *"
				}
				dir := p.FitFilesDir
				if dir == "" {
					dir = "-"
				}
				rows = append(rows, []string{
					name,
					p.App,
					deviceName,
					strconv.FormatUint(uint64(target.SerialNumber), 10),
					formatFirmware(target.SoftwareVersion),
					dir,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Profile", "App", "Device", "Serial", "Firmware", "Activity Directory"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				out,
			))
			fmt.Fprintln(out, "* default profile")
			return nil
		},
	}

	cmd.AddCommand(newProfileAddCommand(ctx))
	cmd.AddCommand(newProfileRemoveCommand(ctx))
	cmd.AddCommand(newProfileSetDefaultCommand(ctx))
	return cmd
}

// saveConfig persists the in-memory configuration back to the resolved
// config path.
func saveConfig(ctx *commandContext, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Save(ctx.configPath)
}

func newProfileAddCommand(ctx *commandContext) *cobra.Command {
	var appFlag string
	var deviceFlag string
	var dirFlag string
	var serialFlag uint32
	var firmwareFlag uint16

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a profile and save the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name := args[0]
			if _, err := cfg.Profile(name); err == nil {
				return fmt.Errorf("profile %q already exists", name)
			}

			serial := serialFlag
			if serial == 0 {
				serial = editor.RandomSerialNumber()
			}
			cfg.Profiles = append(cfg.Profiles, config.Profile{
				Name:            name,
				App:             appFlag,
				Device:          deviceFlag,
				FitFilesDir:     dirFlag,
				SerialNumber:    serial,
				SoftwareVersion: firmwareFlag,
			})
			if err := saveConfig(ctx, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added profile %q to %s\n", name, ctx.configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&appFlag, "app", "custom", "Platform key (see 'fitfaker apps')")
	cmd.Flags().StringVar(&deviceFlag, "device", devices.DefaultKey, "Device registry key")
	cmd.Flags().StringVar(&dirFlag, "dir", "", "Activity directory (detected for known platforms when unset)")
	cmd.Flags().Uint32Var(&serialFlag, "serial", 0, "Unit serial (generated when zero)")
	cmd.Flags().Uint16Var(&firmwareFlag, "software-version", 0, "Firmware version in hundredths (registry value when zero)")
	return cmd
}

func newProfileRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a profile and save the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name := args[0]
			kept := cfg.Profiles[:0]
			removed := false
			for _, p := range cfg.Profiles {
				if p.Name == name {
					removed = true
					continue
				}
				kept = append(kept, p)
			}
			if !removed {
				return fmt.Errorf("no profile named %q", name)
			}
			if len(kept) == 0 {
				return errors.New("cannot remove the last profile")
			}
			cfg.Profiles = kept
			if cfg.DefaultProfile == name {
				cfg.DefaultProfile = kept[0].Name
			}
			if err := saveConfig(ctx, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %q\n", name)
			return nil
		},
	}
}

func newProfileSetDefaultCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <name>",
		Short: "Set the default profile and save the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if _, err := cfg.Profile(args[0]); err != nil {
				return err
			}
			cfg.DefaultProfile = args[0]
			if err := saveConfig(ctx, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default profile is now %q\n", args[0])
			return nil
		},
	}
}
