// Package logging builds slog loggers with console and JSON output formats.
//
// The console handler flattens attribute groups into dotted keys and promotes
// the component attribute into the message prefix so supervised runs read
// cleanly in a terminal. The JSON handler emits ts/level/msg keys for log
// shippers. Attribute helpers keep field names consistent across packages.
package logging
