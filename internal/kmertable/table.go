package kmertable

import (
	"bytes"
	"fmt"

	"github.com/denopia/kaarme-go/internal/kmer"
	"github.com/denopia/kaarme-go/pkg/fs"
)

// Table is the common contract both locking variants satisfy (spec.md
// §4.7 "Common contract").
type Table interface {
	// ProcessKmer inserts the canonical form of the factory's current
	// window if absent, or increments its count if present, and returns
	// the slot it now lives at.
	ProcessKmer(f *kmer.Factory, h *kmer.Hasher, predecessorExists bool, predecessorSlot uint64) (uint64, error)

	// WriteOut emits every (k-mer, count) pair with count >= threshold to
	// path, in unspecified order. Must only be called after all workers
	// have quiesced.
	WriteOut(threshold uint64, path string, fsys fs.FS) error

	// Size returns N, the fixed slot count chosen at construction
	// (next_prime(min_slots), spec.md §4.8).
	Size() uint64
}

// Entry is one (canonical k-mer, count) record produced while scanning a
// table for write-out.
type Entry struct {
	Kmer  string
	Count uint64
}

// probe computes the i-th slot of the quadratic probe sequence for hash h
// over a table of size n: s_i = (h + i^2) mod n (spec.md §4.7 step 2; the
// "3 mod 4 quadratic"/double-hashing variants in the source are explicitly
// not the authoritative choice, per spec.md §9).
func probe(h, i, n uint64) uint64 {
	return (h + i*i) % n
}

// writeEntries renders entries as "kmer<sep>count\n" lines and writes them
// atomically to path via fs.AtomicWriter, so a crash or table-full abort
// never leaves a partially written output file (spec.md §7).
func writeEntries(entries []Entry, threshold uint64, path string, fsys fs.FS) error {
	var buf []byte
	for _, e := range entries {
		if e.Count < threshold {
			continue
		}
		buf = append(buf, e.Kmer...)
		buf = append(buf, ' ')
		buf = fmt.Appendf(buf, "%d\n", e.Count)
	}

	writer := fs.NewAtomicWriter(fsys)

	return writer.Write(path, bytes.NewReader(buf), writer.DefaultOptions())
}
