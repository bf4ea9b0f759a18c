package kmertable

import (
	"sync/atomic"

	"github.com/denopia/kaarme-go/internal/alphabet"
	"github.com/denopia/kaarme-go/internal/kmer"
	"github.com/denopia/kaarme-go/pkg/fs"
)

// flagSlot is one slot of a FlagTable: a single test-and-set spin flag
// guards every access, so the count and packed k-mer fields below are
// plain (non-atomic) — they are only ever touched while locked.
type flagSlot struct {
	locked atomic.Bool

	count  uint64
	hi, lo uint64 // direct storage: the canonical k-mer itself, not a link
}

func (s *flagSlot) lock() {
	for !s.locked.CompareAndSwap(false, true) {
		// spin: hot-path slot locks are spin-only (spec.md §5)
	}
}

func (s *flagSlot) unlock() {
	s.locked.Store(false)
}

// FlagTable is the atomic-flag locking variant (C7a): every slot access —
// insert, count bump, or probe miss — is mutually exclusive under a single
// spin bit (spec.md §4.7 "Atomic-flag variant").
type FlagTable struct {
	slots []flagSlot
	n     uint64
	k     int
}

// NewFlagTable allocates a FlagTable with exactly n slots, all FREE
// (count=0), for k-mers of length k. n is expected to already be the
// "next prime >= min_slots" computed by internal/mathutil.NextPrime
// (spec.md §4.8).
func NewFlagTable(n uint64, k int) (*FlagTable, error) {
	if n == 0 {
		return nil, ErrInvalidSize
	}
	return &FlagTable{slots: make([]flagSlot, n), n: n, k: k}, nil
}

var _ Table = (*FlagTable)(nil)

// Size returns N, the fixed slot count.
func (t *FlagTable) Size() uint64 { return t.n }

// ProcessKmer implements the common insertion algorithm (spec.md §4.7
// steps 1-4) directly over packed k-mers; predecessorExists/predecessorSlot
// are accepted to satisfy the common [Table] contract but unused — direct
// storage has no predecessor chain to extend.
func (t *FlagTable) ProcessKmer(f *kmer.Factory, h *kmer.Hasher, _ bool, _ uint64) (uint64, error) {
	hi, lo := f.CanonicalBlocks()

	var hv uint64
	if f.ForwardIsCanonical() {
		hv = h.HashForward()
	} else {
		hv = h.HashBackward()
	}
	s0 := hv % t.n

	for i := uint64(0); i < t.n; i++ {
		idx := probe(s0, i, t.n)
		slot := &t.slots[idx]

		slot.lock()
		switch {
		case slot.count == 0:
			slot.hi, slot.lo = hi, lo
			slot.count = 1
			slot.unlock()
			return idx, nil
		case kmer.Equal(slot.hi, slot.lo, hi, lo):
			slot.count++
			slot.unlock()
			return idx, nil
		default:
			slot.unlock()
		}
	}

	return 0, ErrTableFull
}

// WriteOut scans every occupied slot once, single-threaded, and emits
// entries with count >= threshold (spec.md §4.7 "write_out"). Must only be
// called after all workers have quiesced, so no locking is needed here.
func (t *FlagTable) WriteOut(threshold uint64, path string, fsys fs.FS) error {
	entries := make([]Entry, 0, t.n)
	for i := range t.slots {
		s := &t.slots[i]
		if s.count == 0 {
			continue
		}
		entries = append(entries, Entry{
			Kmer:  alphabet.String(s.hi, s.lo, t.k),
			Count: s.count,
		})
	}
	return writeEntries(entries, threshold, path, fsys)
}
