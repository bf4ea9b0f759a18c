package kmertable

import "errors"

// ErrTableFull is returned when N steps of the quadratic probe sequence
// (i = 0..N-1, after which it wraps back to s0) find neither a match nor a
// free slot (spec.md §4.7 step 4, §7, §9: elevated here to a run-wide fatal
// error rather than "abort the chunk"). For a prime N those steps reach only
// (N+1)/2 distinct slots, so the table can report full while other slots
// are still free.
var ErrTableFull = errors.New("kmertable: probe sequence exhausted, table is full")

// ErrChainBroken is returned when walking a predecessor-link chain does not
// terminate at a root within the table's slot count. A chain that does
// reach a root is not checked further: the k-mer it reconstructs is used
// as is and never compared against an expected value.
var ErrChainBroken = errors.New("kmertable: predecessor chain did not resolve to a root")

// ErrInvalidSize is returned by NewFlagTable and NewStateTable when the
// slot count n is zero.
var ErrInvalidSize = errors.New("kmertable: slot count must be > 0")
