// Package logging constructs the slog loggers used across Longbox.
//
// Two handler formats are supported: a compact console format for
// interactive use and JSON for machine consumption. NewFromConfig wires the
// configured level and format and mirrors output into the log directory so
// daemon runs leave a record on disk.
package logging
