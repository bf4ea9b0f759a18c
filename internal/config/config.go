// Package config validates the run-time knobs spec.md §6 lists as the
// binary's external interface, the way the teacher's config.go validates
// before use, stripped of its file-loading precedence chain — there is no
// config file here, only flags (SPEC_FULL.md §10).
package config

import (
	"fmt"

	"github.com/denopia/kaarme-go/internal/kmer"
)

// Config holds every CLI knob spec.md §6 names.
type Config struct {
	InputFile  string
	OutputFile string

	K int // k-mer length, 1 <= K <= kmer.MaxK

	ChunkSize    int // target chunk size in bytes
	ActiveChunks int // size of the buffer ring
	NThreads     int // worker count

	MinSlots     uint64 // lower bound on hash-table size
	MinAbundance uint64 // write-out threshold tau; 0 disables output

	Gzip bool // plain vs gzipped input

	// TableVariant selects the locking discipline of the hash table
	// (spec.md §4.7): TableVariantFlag (C7a) or TableVariantState (C7b,
	// the default). Not part of spec.md's CLI list; added so both
	// variants built into internal/kmertable stay reachable from the
	// binary instead of only from tests.
	TableVariant string
}

// TableVariant values accepted by Config.TableVariant.
const (
	TableVariantFlag  = "flag"
	TableVariantState = "state"
)

// Validate rejects the argument/configuration errors spec.md §7 requires be
// caught at startup (k <= 0, min_slots = 0, thread count 0, ...).
func (c Config) Validate() error {
	if c.InputFile == "" {
		return errInputFileRequired
	}
	if c.OutputFile == "" {
		return errOutputFileRequired
	}
	if c.K < 1 || c.K > kmer.MaxK {
		return fmt.Errorf("%w: got %d, must be in [1, %d]", errKOutOfRange, c.K, kmer.MaxK)
	}
	if c.ChunkSize < c.K {
		return fmt.Errorf("%w: chunk_size %d must be >= k %d", errChunkSizeTooSmall, c.ChunkSize, c.K)
	}
	if c.ActiveChunks < 1 {
		return fmt.Errorf("%w: got %d", errActiveChunksZero, c.ActiveChunks)
	}
	if c.NThreads < 1 {
		return fmt.Errorf("%w: got %d", errNThreadsZero, c.NThreads)
	}
	if c.MinSlots == 0 {
		return errMinSlotsZero
	}
	switch c.TableVariant {
	case "", TableVariantFlag, TableVariantState:
	default:
		return fmt.Errorf("%w: %q", errUnknownTableVariant, c.TableVariant)
	}
	return nil
}
