// Package procgroup isolates supervised processes in their own process
// group and kills the whole group on cancellation, so helper processes
// spawned by ffmpeg do not outlive their parent.
package procgroup
