// Package main hosts the fitfaker CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the activity rewriter: convert
// files singly or in batches, inspect decoded record streams, browse
// the device and platform registries, and manage profiles, history,
// and configuration scaffolding. Configuration resolution and logger
// construction are centralized here so subcommands stay declarative;
// the heavy lifting lives in the internal packages.
package main
