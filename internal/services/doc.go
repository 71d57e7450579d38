// Package services defines the shared failure vocabulary for the transcode
// and probe supervisors.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     (validation, spawn, tool, protocol, cancellation, probe).
//   - The mapping from a classified failure to the process exit code the CLI
//     reports.
//
// Use these helpers when surfacing new failure paths so classification stays
// uniform between the library API and the command-line front end.
package services
