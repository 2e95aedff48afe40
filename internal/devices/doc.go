// Package devices is a registry of Garmin units that rewritten files
// can impersonate, keyed by a short configuration-friendly name.
package devices
