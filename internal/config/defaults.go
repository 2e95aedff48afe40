package config

import "fitfaker/internal/devices"

const (
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultHistoryPath = "~/.local/share/fitfaker/history.db"
)

// Default returns a Config populated with repository defaults: one
// Zwift profile targeting the default device.
func Default() Config {
	return Config{
		DefaultProfile: "zwift",
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Profiles: []Profile{
			{
				Name:   "zwift",
				App:    "zwift",
				Device: devices.DefaultKey,
			},
		},
	}
}
