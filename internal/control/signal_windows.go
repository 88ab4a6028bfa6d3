//go:build windows

package control

import "os"

// Windows has no SIGUSR1; the supervisor refuses to start there, so these
// exist only to keep the package compiling.
func Signal(pid int) {}

var ReloadSignal os.Signal = os.Interrupt

func Supported() bool { return false }
