// Package orchestrator wires the I/O thread, the worker pool, and the two
// bounded queues into the producer/consumer pipeline spec.md §4.8
// describes, and drives it to completion or to a diagnosed failure
// (spec.md §7). Grounded structurally on the teacher's
// internal/cli.Run(...) int shape: a single entry point that validates,
// does the work, logs failures with an "error:" prefix, and returns an
// exit code rather than panicking or calling os.Exit itself.
package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/denopia/kaarme-go/internal/alphabet"
	"github.com/denopia/kaarme-go/internal/config"
	"github.com/denopia/kaarme-go/internal/kmer"
	"github.com/denopia/kaarme-go/internal/kmertable"
	"github.com/denopia/kaarme-go/internal/mathutil"
	"github.com/denopia/kaarme-go/internal/queue"
	"github.com/denopia/kaarme-go/internal/reader"
	"github.com/denopia/kaarme-go/pkg/fs"
)

// hashModulus is q for the rolling hasher: a large Mersenne prime, so
// mulMod's 128-bit widening multiply path is exercised (q is not a power of
// two) and collisions across the whole input stream stay vanishingly rare
// regardless of table size. The table-sized stripe is obtained separately
// via kmer.WithReadoutModulus (spec.md §3 "optional secondary modulus rq").
const hashModulus = (1 << 61) - 1

// Run executes one end-to-end counting pass: it builds the hash table,
// opens the input, runs the pipeline to completion, and writes the
// threshold-filtered output. It returns a process exit code (0 clean,
// nonzero on any failure), logging a single "error: ..." diagnostic to
// errOut on failure, matching the teacher's cmd/tk entry point.
func Run(errOut io.Writer, cfg config.Config, fsys fs.FS) int {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if err := run(cfg, fsys); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	return 0
}

func run(cfg config.Config, fsys fs.FS) error {
	n := mathutil.NextPrime(cfg.MinSlots)

	table, err := newTable(cfg, n)
	if err != nil {
		return err
	}

	rd, err := reader.Open(fsys, cfg.InputFile, cfg.K, reader.Plain, cfg.Gzip)
	if err != nil {
		return fmt.Errorf("orchestrator: open input: %w", err)
	}
	defer rd.Close()

	buffers := make([][]byte, cfg.ActiveChunks)
	symsInBuf := make([]int, cfg.ActiveChunks)
	for i := range buffers {
		buffers[i] = make([]byte, cfg.ChunkSize)
	}

	inQ := queue.New(cfg.ActiveChunks)
	outQ := queue.New(cfg.ActiveChunks)

	var ioErr error
	var ioWg sync.WaitGroup
	ioWg.Add(1)
	go func() {
		defer ioWg.Done()
		ioErr = ioLoop(rd, buffers, symsInBuf, inQ, outQ)
	}()

	workerErrs := make([]error, cfg.NThreads)
	var workerWg sync.WaitGroup
	for i := 0; i < cfg.NThreads; i++ {
		workerWg.Add(1)
		go func(slot int) {
			defer workerWg.Done()
			workerErrs[slot] = worker(cfg, table, inQ, outQ, buffers, symsInBuf)
		}(i)
	}

	ioWg.Wait()
	workerWg.Wait()
	outQ.Done()

	if ioErr != nil {
		return fmt.Errorf("orchestrator: reading input: %w", ioErr)
	}
	for _, werr := range workerErrs {
		if werr != nil {
			return fmt.Errorf("orchestrator: worker: %w", werr)
		}
	}

	if cfg.MinAbundance > 0 {
		if err := table.WriteOut(cfg.MinAbundance, cfg.OutputFile, fsys); err != nil {
			return fmt.Errorf("orchestrator: write-out: %w", err)
		}
	}

	return nil
}

func newTable(cfg config.Config, n uint64) (kmertable.Table, error) {
	switch cfg.TableVariant {
	case config.TableVariantFlag:
		return kmertable.NewFlagTable(n, cfg.K)
	case config.TableVariantState, "":
		return kmertable.NewStateTable(n, cfg.K)
	default:
		return nil, fmt.Errorf("orchestrator: unknown table variant %q", cfg.TableVariant)
	}
}

// ioLoop is the I/O thread (spec.md §4.8): it fills every buffer once,
// enqueues it, and thereafter refills whatever the workers return via
// outQ, seeded with the previous k-1 bytes by [reader.Reader.Fill] itself.
// On EOF (or a read error) it stops and marks inQ done, so workers drain
// whatever is already queued and exit once it's empty (spec.md §4.8). outQ
// is sized to hold every buffer at once, so workers returning buffers never
// block on it regardless of whether this loop is still popping it; the
// orchestrator closes outQ itself once both this loop and every worker
// have returned.
func ioLoop(rd *reader.Reader, buffers [][]byte, symsInBuf []int, inQ, outQ *queue.Queue) error {
	var ioErr error
	stopped := false

fill:
	for i := range buffers {
		n, err := rd.Fill(buffers[i])
		symsInBuf[i] = n
		if n > 0 {
			inQ.Push(i)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				ioErr = err
			}
			stopped = true
			break fill
		}
	}

	if !stopped {
	refill:
		for {
			idx, ok := outQ.Pop()
			if !ok {
				break refill
			}

			n, err := rd.Fill(buffers[idx])
			symsInBuf[idx] = n
			if n > 0 {
				inQ.Push(idx)
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					ioErr = err
				}
				break refill
			}
		}
	}

	inQ.Done()

	return ioErr
}

// worker is one consumer thread (spec.md §4.8): pop a chunk, replay its
// bytes through a fresh factory/hasher pair, call table.ProcessKmer once
// per completed window, and carry the returned slot as the next
// predecessor within the same unbroken run.
func worker(cfg config.Config, table kmertable.Table, inQ, outQ *queue.Queue, buffers [][]byte, symsInBuf []int) error {
	factory := kmer.NewFactory(cfg.K)
	hasher := kmer.NewHasher(hashModulus, uint64(cfg.K), kmer.WithReadoutModulus(table.Size()))

	// After a failure the worker keeps passing chunks back unprocessed, so
	// the I/O loop still reaches EOF and the run can unwind with the error.
	var firstErr error
	for {
		idx, ok := inQ.Pop()
		if !ok {
			return firstErr
		}

		if firstErr == nil {
			firstErr = processChunk(factory, hasher, table, buffers[idx][:symsInBuf[idx]])
		}

		outQ.Push(idx)
	}
}

func processChunk(factory *kmer.Factory, hasher *kmer.Hasher, table kmertable.Table, buf []byte) error {
	factory.Reset()
	hasher.Reset()

	predecessorExists := false
	var predecessorSlot uint64

	for _, b := range buf {
		c := alphabet.Encode(b)
		if c >= alphabet.Break {
			factory.Reset()
			hasher.Reset()
			predecessorExists = false
			continue
		}

		wasFull := factory.Full()
		factory.PushCharacter(c)

		var cOut uint8
		if wasFull {
			cOut = factory.PushedOffCharacterForward()
		}
		hasher.Push(c, cOut, alphabet.Complement(c))

		if !factory.Full() {
			continue
		}

		slot, err := table.ProcessKmer(factory, hasher, predecessorExists, predecessorSlot)
		if err != nil {
			return err
		}
		predecessorSlot = slot
		predecessorExists = true
	}

	return nil
}
