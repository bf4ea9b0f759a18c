//go:build linux

package fs

import (
	"golang.org/x/sys/unix"
)

// AdviseSequential hints to the kernel that fd will be read sequentially
// start-to-end, enabling aggressive read-ahead (spec.md §4.6: "advise the
// kernel with sequential read-ahead on open").
func AdviseSequential(fd uintptr) error {
	return unix.Fadvise(int(fd), 0, 0, unix.FADV_SEQUENTIAL)
}

// AdviseDontNeed tells the kernel the file's pages are no longer needed,
// so it may drop them from the page cache (spec.md §4.6/§8: "advise the
// kernel to drop the input file's page cache").
func AdviseDontNeed(fd uintptr) error {
	return unix.Fadvise(int(fd), 0, 0, unix.FADV_DONTNEED)
}
