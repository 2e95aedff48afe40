// Package logging builds the slog loggers used by every command, with
// a human-oriented console format and a machine-oriented JSON format.
package logging
