//go:build windows

package process

import "os/exec"

// Windows has no process groups in the POSIX sense; the direct child is killed.
func setProcessGroup(cmd *exec.Cmd) {}

func forceKill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
