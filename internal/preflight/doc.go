// Package preflight runs environment checks before a batch conversion:
// source and output directories exist, are writable, and the filesystem
// has room for the rewritten files.
package preflight
