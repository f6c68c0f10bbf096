//go:build !linux

package fs

// AdviseSequential is a no-op on this platform.
func AdviseSequential(File) {}

// AdviseDontNeed is a no-op on this platform.
func AdviseDontNeed(File) {}
