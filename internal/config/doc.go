// Package config loads, validates, and persists the TOML configuration
// file. A configuration holds one or more named profiles, each pairing a
// source platform with the device identity its files are rewritten to.
package config
