// Package history records completed conversions in a local SQLite
// database so repeated runs can skip files that were already rewritten.
package history
