//go:build !windows

package control

import (
	"os"
	"syscall"
)

// Signal nudges the watchdog process to reload the control file promptly.
// Best effort only: a stale pid or a dead process is fine, the watchdog's
// chunked sleep re-reads the file on its own within a second anyway.
func Signal(pid int) {
	if pid <= 0 {
		return
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	_ = proc.Signal(syscall.SIGUSR1)
}

// ReloadSignal is the signal the watchdog listens on for reload requests.
var ReloadSignal os.Signal = syscall.SIGUSR1

// Supported reports whether this platform can run the watchdog.
func Supported() bool { return true }
