// Package encoding compiles transcode jobs into ffmpeg invocations and
// supervises the resulting processes.
//
// Key responsibilities:
//   - Compile turns a media.Job into the ordered ffmpeg token list,
//     rejecting copy-stream conflicts before any process is spawned.
//   - Runner spawns one supervision goroutine per job, parses the
//     machine-readable progress stream into snapshots, and classifies every
//     outcome into the services failure vocabulary.
//   - Handle gives the caller progress listeners, cooperative cancellation,
//     timeouts, and a Wait call that resolves exactly once per job.
//
// The progress protocol is ffmpeg's -progress key=value stream: lines are
// grouped into snapshots by the repeating progress sentinel, whose value is
// either a continuation or an end marker.
package encoding
