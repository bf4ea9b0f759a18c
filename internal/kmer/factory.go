// Package kmer implements the sliding-window k-mer factory (C2) and the
// dual rolling hasher (C3), grounded on KMerFactoryCanonical2BC and
// RollingHasherDual in original_source/include/kmer_factory.hpp and
// original_source/source/hash_functions.cpp.
package kmer

import "github.com/denopia/kaarme-go/internal/alphabet"

// MaxK is the largest k-mer length supported by Factory's two-word (128-bit)
// packed representation. This is the "K_MAX fixed at build time" spec.md §6
// refers to; the spec only requires handling "at least k up to 64 (single
// 128-bit packed representation)", which this satisfies exactly.
const MaxK = 64

// Factory maintains a sliding window of up to MaxK characters, its reverse
// complement, and the canonical orientation. The packed registers are
// updated in O(1) per push; the canonical orientation is recomputed on each
// push by a character-by-character compare of up to k characters.
//
// forwardHi/forwardLo and backwardHi/backwardLo hold the 2-bit-packed window across two
// 64-bit words (hi, lo), big-endian: lo holds the newest (rightmost) 32
// characters, hi holds any characters beyond that. This mirrors
// blocks_forward/blocks_backward in KMerFactoryCanonical2BC, specialized to
// two words instead of a dynamically sized block array.
type Factory struct {
	k uint8

	forwardHi, forwardLo   uint64
	backwardHi, backwardLo uint64

	charactersStored uint8

	pushedOffCharacterForward uint8

	forwardIsCanonical          bool
	previousForwardWasCanonical bool
	previousKmerExists          bool
}

// NewFactory constructs a Factory for k-mers of length k. k must be in
// [1, MaxK].
func NewFactory(k int) *Factory {
	if k < 1 || k > MaxK {
		panic("kmer: k out of range")
	}
	return &Factory{k: uint8(k)}
}

// K returns the configured k-mer length.
func (f *Factory) K() int { return int(f.k) }

// Reset zeros both packed buffers and the character count, and clears the
// "previous" snapshots factory.push uses for link-compressed insertion.
// Equivalent to push_character('N') in the spec: called on any non-ACGT
// byte ("break").
func (f *Factory) Reset() {
	f.forwardHi, f.forwardLo = 0, 0
	f.backwardHi, f.backwardLo = 0, 0
	f.charactersStored = 0
	f.forwardIsCanonical = false
	f.previousForwardWasCanonical = false
	f.previousKmerExists = false
}

// mask clears any bits beyond the low 2*k bits of a two-word register,
// keeping the packed representation exactly k characters wide.
func mask(k uint8, hi, lo uint64) (uint64, uint64) {
	switch {
	case k >= 32:
		bits := uint(2 * (k - 32))
		if bits == 0 {
			return 0, lo
		}
		return hi & (1<<bits - 1), lo
	default:
		bits := uint(2 * k)
		return 0, lo & (1<<bits - 1)
	}
}

// shiftIn shifts a two-word register left by 2 bits, inserting c into the
// newly opened low bits, and returns the new register.
func shiftIn(hi, lo uint64, c uint8) (uint64, uint64) {
	carry := (lo >> 62) & 3
	lo = (lo << 2) | uint64(c&3)
	hi = (hi << 2) | carry
	return hi, lo
}

// charAt returns the character at logical position i (0 = oldest/leftmost,
// charactersStored-1 = newest/rightmost) of a packed two-word register
// currently holding n characters.
func charAt(hi, lo uint64, n int, i int) uint8 {
	posFromRight := n - 1 - i
	if posFromRight < 32 {
		return uint8(lo>>uint(2*posFromRight)) & 3
	}
	return uint8(hi>>uint(2*(posFromRight-32))) & 3
}

// prependGrow sets c as the new oldest (most significant active) character
// of a still-growing register, where pos is the number of characters
// already stored before this call. Unlike shiftIn, nothing is shifted: the
// unused bits above the active window are already zero, so the new
// character only needs to be OR'd in at its position.
func prependGrow(hi, lo uint64, pos int, c uint8) (uint64, uint64) {
	if pos < 32 {
		lo |= uint64(c&3) << uint(2*pos)
		return hi, lo
	}
	hi |= uint64(c&3) << uint(2*(pos-32))
	return hi, lo
}

// PushCharacter advances the window by one character. c must be a 2-bit
// code in [0,3]; callers must translate alphabet.Break into Reset instead
// of calling PushCharacter (spec.md §4.2).
func (f *Factory) PushCharacter(c uint8) {
	f.previousForwardWasCanonical = f.forwardIsCanonical
	f.previousKmerExists = f.charactersStored == f.k

	wasFull := f.charactersStored == f.k
	prevN := int(f.charactersStored)

	if wasFull {
		f.pushedOffCharacterForward = charAt(f.forwardHi, f.forwardLo, int(f.k), 0)
	}

	f.forwardHi, f.forwardLo = shiftIn(f.forwardHi, f.forwardLo, c)
	f.forwardHi, f.forwardLo = mask(f.k, f.forwardHi, f.forwardLo)

	// backward must hold the reverse complement of forward, not the
	// complement in forward order: the newest forward character becomes
	// the new OLDEST backward character (spec.md §3/§4.2, P7). While the
	// window is still growing, that slot is simply the next free one at
	// the top of the active register (prependGrow); once full, the
	// oldest backward character (complement of the character forward is
	// about to evict) must be dropped from the bottom first, which is
	// exactly ShiftRightPrepend's contract.
	comp := alphabet.Complement(c)
	if wasFull {
		f.backwardHi, f.backwardLo = ShiftRightPrepend(f.backwardHi, f.backwardLo, int(f.k), comp)
	} else {
		f.backwardHi, f.backwardLo = prependGrow(f.backwardHi, f.backwardLo, prevN, comp)
	}

	if f.charactersStored < f.k {
		f.charactersStored++
	}

	f.recomputeCanonical()
}

// recomputeCanonical compares the forward and backward packed
// representations from the most significant active character down; the
// first differing character decides, and a palindrome (equal throughout)
// is canonically forward (spec.md §4.2).
func (f *Factory) recomputeCanonical() {
	n := int(f.charactersStored)
	for i := 0; i < n; i++ {
		fc := charAt(f.forwardHi, f.forwardLo, n, i)
		bc := charAt(f.backwardHi, f.backwardLo, n, i)
		if fc != bc {
			f.forwardIsCanonical = fc < bc
			return
		}
	}
	f.forwardIsCanonical = true
}

// CharactersStored returns the number of live characters in the window
// (0 <= n <= k).
func (f *Factory) CharactersStored() int { return int(f.charactersStored) }

// Full reports whether the window holds exactly k characters.
func (f *Factory) Full() bool { return f.charactersStored == f.k }

// ForwardIsCanonical reports whether the forward orientation is the
// canonical one for the current window, recomputed on every push.
func (f *Factory) ForwardIsCanonical() bool { return f.forwardIsCanonical }

// PreviousForwardWasCanonical and PreviousKmerExists expose the snapshots
// taken just before the most recent push, for use by link-compressed
// insertion (spec.md §4.7): they describe the k-mer run's prior element,
// not the current one.
func (f *Factory) PreviousForwardWasCanonical() bool { return f.previousForwardWasCanonical }
func (f *Factory) PreviousKmerExists() bool          { return f.previousKmerExists }

// PushedOffCharacterForward returns the character that fell out of the
// leftmost slot on the most recent push. Only meaningful once the window
// has been full for at least one push.
func (f *Factory) PushedOffCharacterForward() uint8 { return f.pushedOffCharacterForward }

// ForwardBlocks and BackwardBlocks return the raw packed (hi, lo)
// representation of the current window.
func (f *Factory) ForwardBlocks() (hi, lo uint64)  { return f.forwardHi, f.forwardLo }
func (f *Factory) BackwardBlocks() (hi, lo uint64) { return f.backwardHi, f.backwardLo }

// CanonicalBlocks returns whichever of forward/backward is currently
// canonical ("current canonical block" in spec.md §4.2).
func (f *Factory) CanonicalBlocks() (hi, lo uint64) {
	if f.forwardIsCanonical {
		return f.forwardHi, f.forwardLo
	}
	return f.backwardHi, f.backwardLo
}

// ForwardCharAt and BackwardCharAt return the i-th character (0 = oldest)
// of the forward/backward window.
func (f *Factory) ForwardCharAt(i int) uint8 {
	return charAt(f.forwardHi, f.forwardLo, int(f.charactersStored), i)
}
func (f *Factory) BackwardCharAt(i int) uint8 {
	return charAt(f.backwardHi, f.backwardLo, int(f.charactersStored), i)
}

// NewestForwardCharacter and OldestForwardCharacter are the accessors named
// in spec.md §4.2.
func (f *Factory) NewestForwardCharacter() uint8 {
	return f.ForwardCharAt(int(f.charactersStored) - 1)
}
func (f *Factory) OldestForwardCharacter() uint8 {
	return f.ForwardCharAt(0)
}

// ShiftLeftAppend returns the packed register obtained by dropping the
// oldest character and appending c as the newest — the natural
// sliding-window operation PushCharacter performs on one orientation.
// Exported for internal/kmertable's predecessor-link reconstruction
// (spec.md §4.7, §9): consecutive forward-canonical k-mers in the same run
// are always related by exactly this operation.
func ShiftLeftAppend(hi, lo uint64, k int, c uint8) (uint64, uint64) {
	nh, nl := shiftIn(hi, lo, c)
	return mask(uint8(k), nh, nl)
}

// ShiftRightPrepend returns the packed register obtained by dropping the
// newest character and prepending c as the oldest — the mirror of
// ShiftLeftAppend, used when a predecessor link continues on the opposite
// canonical strand (spec.md §4.7: "under orientation flips, the correctly
// complemented/reflected relation").
func ShiftRightPrepend(hi, lo uint64, k int, c uint8) (uint64, uint64) {
	if k > 32 {
		carry := hi & 3
		lo2 := (lo >> 2) | (carry << 62)
		hi2 := hi >> 2
		topBits := uint(2 * (k - 32 - 1))
		hi2 |= uint64(c&3) << topBits
		return hi2, lo2
	}
	lo2 := lo >> 2
	topBits := uint(2 * (k - 1))
	lo2 |= uint64(c&3) << topBits
	return 0, lo2
}

// Equal reports whether two packed two-word registers hold the same value.
func Equal(hi1, lo1, hi2, lo2 uint64) bool {
	return hi1 == hi2 && lo1 == lo2
}

// CanonicalString renders the current canonical k-mer as an ACGT string.
// The caller must ensure Full() before calling.
func (f *Factory) CanonicalString() string {
	hi, lo := f.CanonicalBlocks()
	return alphabet.String(hi, lo, int(f.k))
}
