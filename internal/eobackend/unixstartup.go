//go:build unix

package eobackend

import "golang.org/x/sys/unix"

// UnixStartupSyscalls reports the syscall numbers the degraded Unix
// entry stub needs ("the design targets Windows but
// degrades to Unix syscall startup in the minimal runtime"). The EO
// object itself stays calling-convention-agnostic; a loader targeting
// a Unix host uses these instead of the Windows x64 home-space
// prologue this package's emit() always generates, since the object
// format carries no platform tag of its own.
type UnixStartupSyscalls struct {
	Write int
	Exit  int
}

func NewUnixStartupSyscalls() UnixStartupSyscalls {
	return UnixStartupSyscalls{
		Write: unix.SYS_WRITE,
		Exit:  unix.SYS_EXIT_GROUP,
	}
}
