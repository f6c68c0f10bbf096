//go:build linux

package fs

import "golang.org/x/sys/unix"

type fder interface {
	Fd() uintptr
}

// AdviseSequential hints the kernel that f is about to be read front to back.
// It is a no-op for files without a descriptor.
func AdviseSequential(f File) {
	if d, ok := f.(fder); ok {
		_ = unix.Fadvise(int(d.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	}
}

// AdviseDontNeed drops f's cached pages once it has been consumed.
func AdviseDontNeed(f File) {
	if d, ok := f.(fder); ok {
		_ = unix.Fadvise(int(d.Fd()), 0, 0, unix.FADV_DONTNEED)
	}
}
