package config

import (
	"errors"
	"fmt"

	"fitfaker/internal/apps"
	"fitfaker/internal/devices"
	"fitfaker/internal/editor"
	"fitfaker/internal/fit"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateProfiles(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateProfiles() error {
	if len(c.Profiles) == 0 {
		return errors.New("at least one profile must be configured")
	}
	seen := make(map[string]bool, len(c.Profiles))
	for i := range c.Profiles {
		p := &c.Profiles[i]
		if p.Name == "" {
			return fmt.Errorf("profile %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("profile name %q used twice", p.Name)
		}
		seen[p.Name] = true
		if _, err := apps.Lookup(p.App); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, err := devices.Lookup(p.Device); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, err := p.Target(); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	if !seen[c.DefaultProfile] {
		return fmt.Errorf("default_profile %q does not match any profile", c.DefaultProfile)
	}
	return nil
}

// Target resolves the profile's device identity against the device
// registry, applying per-profile overrides.
func (p *Profile) Target() (editor.Target, error) {
	device, err := devices.Lookup(p.Device)
	if err != nil {
		return editor.Target{}, err
	}
	target := editor.Target{
		Manufacturer:    fit.ManufacturerGarmin,
		Product:         device.ProductID,
		SerialNumber:    p.SerialNumber,
		SoftwareVersion: device.SoftwareVersion,
	}
	if p.Manufacturer != 0 {
		target.Manufacturer = p.Manufacturer
	}
	if p.Product != 0 {
		target.Product = p.Product
	}
	if p.SoftwareVersion != 0 {
		target.SoftwareVersion = p.SoftwareVersion
	}
	if err := target.Validate(); err != nil {
		return editor.Target{}, err
	}
	return target, nil
}
