//go:build !unix

package procgroup

import "os/exec"

// Isolate is a no-op where process groups are unavailable.
func Isolate(cmd *exec.Cmd) {}

// Kill terminates the process directly.
func Kill(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
