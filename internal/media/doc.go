// Package media defines the vocabulary for describing transcode jobs: the
// settings tree, encoder and filter selections, and the value types that
// render as ffmpeg command-line tokens. The types here are plain data; the
// argument compiler in internal/encoding turns them into an invocation.
package media
