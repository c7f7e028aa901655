//go:build !linux && !darwin

package system

// InitResourceLimits is a no-op on platforms without a uint64 open-file rlimit.
func InitResourceLimits(want uint64) {}
