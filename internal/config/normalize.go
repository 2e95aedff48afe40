package config

import (
	"fmt"
	"strings"

	"fitfaker/internal/apps"
	"fitfaker/internal/devices"
	"fitfaker/internal/editor"
)

func (c *Config) normalize() error {
	c.normalizeLogging()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	for i := range c.Profiles {
		if err := c.Profiles[i].normalize(); err != nil {
			return err
		}
	}
	c.DefaultProfile = strings.TrimSpace(c.DefaultProfile)
	if c.DefaultProfile == "" && len(c.Profiles) > 0 {
		c.DefaultProfile = c.Profiles[0].Name
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	path, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = path
	return nil
}

func (p *Profile) normalize() error {
	p.Name = strings.ToLower(strings.TrimSpace(p.Name))
	p.App = strings.ToLower(strings.TrimSpace(p.App))
	p.Device = strings.ToLower(strings.TrimSpace(p.Device))
	if p.Device == "" {
		p.Device = devices.DefaultKey
	}

	if strings.TrimSpace(p.FitFilesDir) == "" {
		if app, err := apps.Lookup(p.App); err == nil {
			p.FitFilesDir = app.DetectDir()
		}
	}
	if p.FitFilesDir != "" {
		dir, err := expandPath(p.FitFilesDir)
		if err != nil {
			return fmt.Errorf("profile %q fit_files_dir: %w", p.Name, err)
		}
		p.FitFilesDir = dir
	}

	// A profile keeps one serial for its lifetime so rewritten files
	// look like they came from a single unit.
	if p.SerialNumber == 0 {
		p.SerialNumber = editor.RandomSerialNumber()
	}
	return nil
}
