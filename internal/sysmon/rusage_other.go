//go:build !unix

package sysmon

// ProcessCPU is not available on this platform and returns zero.
func ProcessCPU() CPUTime { return CPUTime{} }
