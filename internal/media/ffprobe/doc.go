// Package ffprobe runs the ffprobe tool and decodes its JSON output into a
// typed metadata result. An error object embedded in the output becomes a
// classified probe failure; callers never see partial metadata. Inspections
// can run blocking or on a background goroutine with identical semantics.
package ffprobe
