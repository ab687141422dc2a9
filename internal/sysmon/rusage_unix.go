//go:build unix

package sysmon

import (
	"time"

	"golang.org/x/sys/unix"
)

// ProcessCPU reads the process CPU time from getrusage. It returns zero on
// error.
func ProcessCPU() CPUTime {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return CPUTime{}
	}
	return CPUTime{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
	}
}
