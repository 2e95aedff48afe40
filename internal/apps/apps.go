package apps

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"fitfaker/internal/editor"
	"fitfaker/internal/fit"
)

// Type identifies a supported training platform.
type Type string

const (
	TPVirtual Type = "tp_virtual"
	Zwift     Type = "zwift"
	MyWhoosh  Type = "mywhoosh"
	Onelap    Type = "onelap"
	// Custom covers files from any producer in the spoofable set that
	// has no dedicated directory layout.
	Custom Type = "custom"
)

// App describes one platform: its display identity and the manufacturer
// id it writes into its files.
type App struct {
	Type         Type
	Name         string
	Short        string
	Manufacturer uint16
}

var registry = map[Type]App{
	TPVirtual: {Type: TPVirtual, Name: "TrainingPeaks Virtual", Short: "tpv", Manufacturer: fit.ManufacturerPeaksware},
	Zwift:     {Type: Zwift, Name: "Zwift", Short: "zwift", Manufacturer: fit.ManufacturerZwift},
	MyWhoosh:  {Type: MyWhoosh, Name: "MyWhoosh", Short: "whoosh", Manufacturer: fit.ManufacturerMyWhoosh},
	Onelap:    {Type: Onelap, Name: "Onelap", Short: "onelap", Manufacturer: fit.ManufacturerOnelap},
	Custom:    {Type: Custom, Name: "Custom", Short: "custom", Manufacturer: fit.ManufacturerDevelopment},
}

// Lookup resolves an app key as written in configuration.
func Lookup(key string) (App, error) {
	app, ok := registry[Type(strings.ToLower(strings.TrimSpace(key)))]
	if !ok {
		return App{}, fmt.Errorf("unknown app %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return app, nil
}

// Keys returns the registered app keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for t := range registry {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)
	return keys
}

// List returns all registered apps sorted by key.
func List() []App {
	out := make([]App, 0, len(registry))
	for _, key := range Keys() {
		out = append(out, registry[Type(key)])
	}
	return out
}

// SpoofableManufacturers is the gate set the CLI hands to the rewriter:
// the editor's built-in producer ids plus the manufacturer of every
// registered platform, deduplicated. Registering a new platform here is
// enough to make its files qualify.
func SpoofableManufacturers() []uint16 {
	seen := make(map[uint16]bool)
	var out []uint16
	add := func(m uint16) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range editor.DefaultSpoofableManufacturers() {
		add(m)
	}
	for _, key := range Keys() {
		add(registry[Type(key)].Manufacturer)
	}
	return out
}

// DirCandidates lists where the platform is known to drop activity
// files on the current operating system, most likely first. Paths are
// relative to the user's home directory.
func (a App) DirCandidates() []string {
	switch a.Type {
	case Zwift:
		return []string{filepath.Join("Documents", "Zwift", "Activities")}
	case MyWhoosh:
		switch runtime.GOOS {
		case "windows":
			return []string{filepath.Join("AppData", "Local", "Packages",
				"MyWhooshTechnologyService.MyWhoosh_rd3cam6sqqs1g", "LocalCache", "Local", "MyWhoosh", "Content", "Data")}
		case "darwin":
			return []string{filepath.Join("Library", "Containers", "com.whoosh.whooshgame",
				"Data", "Library", "Application Support", "Epic", "MyWhoosh", "Content", "Data")}
		}
	case TPVirtual:
		switch runtime.GOOS {
		case "windows":
			return []string{filepath.Join("AppData", "Local", "TPVirtual", "Activities")}
		case "darwin":
			return []string{filepath.Join("Library", "Application Support", "TPVirtual", "Activities")}
		default:
			return []string{filepath.Join(".local", "share", "TPVirtual", "Activities")}
		}
	}
	return nil
}

// DetectDir returns the first candidate directory that exists, or empty
// when the platform's files cannot be located automatically.
func (a App) DetectDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, rel := range a.DirCandidates() {
		dir := filepath.Join(home, rel)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
