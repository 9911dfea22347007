//go:build windows

package lock

import "syscall"

// processExists checks if a process with the given PID exists
func processExists(pid int) bool {
	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer syscall.CloseHandle(h)

	var exitCode uint32
	if err := syscall.GetExitCodeProcess(h, &exitCode); err != nil {
		return false
	}

	// STILL_ACTIVE = 259
	return exitCode == 259
}
