//go:build !windows

package process

import "syscall"

// New process group so terminal signals aimed at the caller skip the child.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
