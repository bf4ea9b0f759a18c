package kmertable

import (
	"fmt"
	"sync/atomic"

	"github.com/denopia/kaarme-go/internal/alphabet"
	"github.com/denopia/kaarme-go/internal/kmer"
	"github.com/denopia/kaarme-go/pkg/fs"
)

// State values for stateSlot.state. Any value >= stateOccupied encodes
// "OCCUPIED with (value - stateOccupied) concurrent readers", so plain
// OCCUPIED is stateOccupied itself (spec.md §4.7 "Atomic-variable
// variant"; grounded on pkg/slotcache/lock.go's numbered "Locking
// architecture" comment and seqlock-retry idea, adapted from a file-backed
// generation counter to an in-memory per-slot state word).
const (
	stateFree        uint32 = 0
	stateWriteLocked uint32 = 1
	stateOccupied    uint32 = 2
)

// stateSlot is one slot of a StateTable. Fields below state are plain
// (non-atomic): they are only mutated while WRITE_LOCKED and only read
// while READ_LOCKED or WRITE_LOCKED, so the atomic transitions on state
// act as the acquire/release fences (spec.md §9 "Slot lock states").
type stateSlot struct {
	state atomic.Uint32

	count uint64

	// isRoot selects which of the two record shapes below is valid.
	isRoot bool

	// Root record: the canonical k-mer itself.
	hi, lo uint64

	// Link record: reconstructed by applying one character to the parent's
	// own reconstructed k-mer (spec.md §4.7 "Predecessor-link compression").
	parentSlot        uint64
	appendedChar      uint8
	orientationAppend bool // true: ShiftLeftAppend: false: ShiftRightPrepend
}

// writeLock spins until it can either claim a FREE slot or exclude readers
// from an already-OCCUPIED one, and reports which case occurred.
func (s *stateSlot) writeLock() (wasFree bool) {
	for {
		v := s.state.Load()
		switch v {
		case stateFree:
			if s.state.CompareAndSwap(stateFree, stateWriteLocked) {
				return true
			}
		case stateOccupied:
			if s.state.CompareAndSwap(stateOccupied, stateWriteLocked) {
				return false
			}
		default:
			// WRITE_LOCKED elsewhere, or OCCUPIED with live readers: spin.
		}
	}
}

func (s *stateSlot) writeUnlock() {
	s.state.Store(stateOccupied)
}

// readLock increments the slot's reader count, spinning while the slot is
// FREE or WRITE_LOCKED, so predecessor-chain walks can overlap with
// inserts into unrelated slots (spec.md §4.7).
func (s *stateSlot) readLock() {
	for {
		v := s.state.Load()
		if v < stateOccupied {
			continue
		}
		if s.state.CompareAndSwap(v, v+1) {
			return
		}
	}
}

func (s *stateSlot) readUnlock() {
	s.state.Add(^uint32(0)) // -1
}

// StateTable is the atomic-variable locking variant (C7b): slots carry a
// multi-state word (FREE/WRITE_LOCKED/OCCUPIED/READ_LOCKED_n) and store
// predecessor links instead of full k-mers wherever the sliding window
// guarantees the relationship (spec.md §4.7 "Atomic-variable variant",
// "Predecessor-link compression").
type StateTable struct {
	slots []stateSlot
	n     uint64
	k     int
}

// NewStateTable allocates a StateTable with exactly n slots, all FREE, for
// k-mers of length k.
func NewStateTable(n uint64, k int) (*StateTable, error) {
	if n == 0 {
		return nil, ErrInvalidSize
	}
	return &StateTable{slots: make([]stateSlot, n), n: n, k: k}, nil
}

var _ Table = (*StateTable)(nil)

// Size returns N, the fixed slot count.
func (t *StateTable) Size() uint64 { return t.n }

// decideRecord chooses whether the k-mer about to be inserted can be
// stored as a link off predecessorSlot, exploiting the fact that
// consecutive k-mers from the same sliding-window run are always related
// by a single-character shift on whichever side is currently canonical
// (spec.md §4.7, §9):
//
//   - both forward-canonical: current = ShiftLeftAppend(previous, newChar)
//   - both backward-canonical: current = ShiftRightPrepend(previous, complement(newChar))
//   - orientation differs, or there is no predecessor (run just started):
//     the relationship isn't a single-character extension; insert a root.
func (t *StateTable) decideRecord(f *kmer.Factory, predecessorExists bool) (isRoot bool, appended uint8, orientationAppend bool) {
	if !predecessorExists || !f.PreviousKmerExists() {
		return true, 0, false
	}

	prevForward := f.PreviousForwardWasCanonical()
	curForward := f.ForwardIsCanonical()
	newChar := f.NewestForwardCharacter()

	switch {
	case prevForward && curForward:
		return false, newChar, true
	case !prevForward && !curForward:
		return false, alphabet.Complement(newChar), false
	default:
		return true, 0, false
	}
}

// ProcessKmer implements the common insertion algorithm (spec.md §4.7
// steps 1-4) using predecessor-link compression where decideRecord allows
// it.
func (t *StateTable) ProcessKmer(f *kmer.Factory, h *kmer.Hasher, predecessorExists bool, predecessorSlot uint64) (uint64, error) {
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

		if slot.writeLock() {
			isRoot, appended, orientationAppend := t.decideRecord(f, predecessorExists)
			slot.isRoot = isRoot
			if isRoot {
				slot.hi, slot.lo = hi, lo
			} else {
				slot.parentSlot = predecessorSlot
				slot.appendedChar = appended
				slot.orientationAppend = orientationAppend
			}
			slot.count = 1
			slot.writeUnlock()
			return idx, nil
		}

		storedHi, storedLo, err := t.reconstructLocked(idx)
		if err != nil {
			slot.writeUnlock()
			return 0, err
		}
		if kmer.Equal(storedHi, storedLo, hi, lo) {
			slot.count++
			slot.writeUnlock()
			return idx, nil
		}
		slot.writeUnlock()
	}

	return 0, ErrTableFull
}

// reconstructLocked reconstructs the k-mer stored (directly or via a
// predecessor chain) at idx. The caller must already hold idx's
// write-lock; ancestor slots, which the caller holds no lock on, are
// read-locked individually by resolveChain as the chain is walked.
func (t *StateTable) reconstructLocked(idx uint64) (hi, lo uint64, err error) {
	slot := &t.slots[idx]
	if slot.isRoot {
		return slot.hi, slot.lo, nil
	}
	phi, plo, err := t.resolveChain(slot.parentSlot)
	if err != nil {
		return 0, 0, err
	}
	if slot.orientationAppend {
		return kmer.ShiftLeftAppend(phi, plo, t.k, slot.appendedChar), nil
	}
	return kmer.ShiftRightPrepend(phi, plo, t.k, slot.appendedChar), nil
}

// resolveChain walks from idx up to its root, read-locking each visited
// slot, and replays the recorded single-character steps back down to
// reconstruct the full packed k-mer. A chain longer than the table's own
// slot count cannot terminate at a root without a cycle, which the
// one-character-per-hop contract forbids by construction (spec.md §9); if
// that bound is exceeded, the chain is broken and ErrChainBroken is
// returned as a fatal invariant violation (spec.md §7).
func (t *StateTable) resolveChain(idx uint64) (hi, lo uint64, err error) {
	type step struct {
		appended uint8
		forward  bool
	}
	var steps []step

	cur := idx
	for depth := uint64(0); depth <= t.n; depth++ {
		slot := &t.slots[cur]
		slot.readLock()

		if slot.isRoot {
			hi, lo = slot.hi, slot.lo
			slot.readUnlock()

			for i := len(steps) - 1; i >= 0; i-- {
				s := steps[i]
				if s.forward {
					hi, lo = kmer.ShiftLeftAppend(hi, lo, t.k, s.appended)
				} else {
					hi, lo = kmer.ShiftRightPrepend(hi, lo, t.k, s.appended)
				}
			}
			return hi, lo, nil
		}

		parent, appended, orientationAppend := slot.parentSlot, slot.appendedChar, slot.orientationAppend
		slot.readUnlock()

		steps = append(steps, step{appended: appended, forward: orientationAppend})
		cur = parent
	}

	return 0, 0, ErrChainBroken
}

// WriteOut scans every occupied slot once, single-threaded, reconstructing
// linked k-mers along the way, and emits entries with count >= threshold
// (spec.md §4.7). Must only be called after all workers have quiesced.
func (t *StateTable) WriteOut(threshold uint64, path string, fsys fs.FS) error {
	entries := make([]Entry, 0, t.n)
	for i := range t.slots {
		s := &t.slots[i]
		if s.count == 0 {
			continue
		}

		hi, lo, err := t.reconstructLocked(uint64(i))
		if err != nil {
			return fmt.Errorf("kmertable: write-out slot %d: %w", i, err)
		}

		entries = append(entries, Entry{Kmer: alphabet.String(hi, lo, t.k), Count: s.count})
	}
	return writeEntries(entries, threshold, path, fsys)
}
