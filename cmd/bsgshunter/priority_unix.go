//go:build linux || darwin || freebsd

package main

import "syscall"

// raisePriority lowers the nice value. Without privileges this fails; run
// under `nice -n -10` instead.
func raisePriority() error {
	return syscall.Setpriority(syscall.PRIO_PROCESS, 0, -10)
}
