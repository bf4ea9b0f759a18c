// Package kmertable implements the concurrent canonical k-mer hash table
// (C7): a fixed-capacity, open-addressed table with per-slot locks,
// quadratic probing, and a bulk write-out filtered by abundance.
//
// Two variants share the Table interface and the insertion algorithm in
// spec.md §4.7; they differ only in the slot-lock implementation:
//
//   - [FlagTable] (C7a): one spin flag per slot, fully mutually exclusive,
//     storing the canonical k-mer directly in every slot.
//   - [StateTable] (C7b): a multi-state atomic word per slot
//     (FREE/WRITE_LOCKED/OCCUPIED/READ_LOCKED_n) that lets concurrent
//     readers walk predecessor-link chains while an unrelated insert
//     proceeds, storing either a full k-mer (root) or a compact
//     {parent slot, appended character, orientation} link (spec.md §4.7,
//     §9).
//
// Grounded on hash_functions.cpp's insertion algorithm and on
// pkg/slotcache/lock.go's "Locking architecture" state-machine comment
// style (adapted from a file-backed seqlock to an in-memory atomic state
// word — see DESIGN.md).
package kmertable
