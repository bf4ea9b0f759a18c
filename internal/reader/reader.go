// Package reader implements the chunked file reader (C6): byte-aligned
// reads that preserve a k-1 byte overlap across chunk boundaries so every
// k-window straddling a boundary is processed exactly once, by the later
// chunk's worker (spec.md §4.6). Grounded structurally on
// 53e44499_restic-restic__chunker-chunker.go.go's stateful chunk-boundary
// reader shape, and on pkg/fs.Real/File for POSIX open/read/close.
package reader

import (
	"errors"
	"fmt"
	"io"

	"github.com/denopia/kaarme-go/pkg/fs"
)

// ErrUnsupportedFormat is returned for FASTA/FASTQ inputs, which
// spec.md §6/§9 documents as unimplemented stubs in the source this repo
// was distilled from.
var ErrUnsupportedFormat = errors.New("reader: FASTA/FASTQ are unimplemented; only the PLAIN dialect is supported")

// Format selects the input dialect. Only Plain is implemented; FASTA and
// FASTQ are named so callers can reject them with ErrUnsupportedFormat
// instead of silently mis-parsing (spec.md §7).
type Format int

const (
	Plain Format = iota
	FASTA
	FASTQ
)

// Reader produces fixed-size chunks from an input stream, each chunk after
// the first seeded with the last k-1 bytes of the previous one.
type Reader struct {
	file fs.File
	src  io.Reader
	k    int

	overlap   []byte // last k-1 bytes of the previous chunk; nil before the first
	sawEOF    bool
	advisedOk bool
}

// Open opens path on fsys for the given dialect, advising the kernel of
// sequential access on Linux (spec.md §4.6), and wraps it in a gzip
// decompressor when gzipped is true (spec.md §4.6: "a parallel gzipped
// variant wraps a streaming decompressor; the rest of the pipeline is
// oblivious to which variant is in use").
func Open(fsys fs.FS, path string, k int, format Format, gzipped bool) (*Reader, error) {
	if format != Plain {
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
	}
	if k < 1 {
		return nil, fmt.Errorf("reader: k must be >= 1, got %d", k)
	}

	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %q: %w", path, err)
	}

	advisedOk := fs.AdviseSequential(f.Fd()) == nil

	var src io.Reader = f
	if gzipped {
		src, err = newGzipSource(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("reader: open gzip stream %q: %w", path, err)
		}
	}

	return &Reader{file: f, src: src, k: k, advisedOk: advisedOk}, nil
}

// Fill populates buf (its full length is the target chunk_size) and returns
// the number of usable symbols written (syms_in_buff in spec.md §4.6).
// After the first call, the chunk is seeded with the previous chunk's last
// k-1 bytes. io.EOF is returned once no further bytes are available and the
// seed itself is empty or already consumed.
func (r *Reader) Fill(buf []byte) (symsInBuff int, err error) {
	if len(buf) == 0 {
		return 0, fmt.Errorf("reader: Fill requires a non-empty buffer")
	}
	if r.sawEOF {
		// The stream is exhausted: any leftover overlap was already fully
		// processed as the tail of the previous chunk, so there is no new
		// chunk to hand out (no phantom re-processing of the last k-1 bytes).
		return 0, io.EOF
	}

	n := 0
	if r.overlap != nil {
		n = copy(buf, r.overlap)
	}

	if n < len(buf) {
		read, readErr := io.ReadFull(r.src, buf[n:])
		n += read
		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) && !errors.Is(readErr, io.EOF) {
			return n, fmt.Errorf("reader: read: %w", readErr)
		}
		if errors.Is(readErr, io.ErrUnexpectedEOF) || errors.Is(readErr, io.EOF) {
			r.sawEOF = true
			if read == 0 {
				// Only the seed is left, and it was already processed as the
				// tail of the previous chunk.
				return 0, io.EOF
			}
		}
	}

	if n == 0 {
		return 0, io.EOF
	}

	seedLen := r.k - 1
	if seedLen > n {
		seedLen = n
	}
	if seedLen > 0 {
		seed := make([]byte, seedLen)
		copy(seed, buf[n-seedLen:n])
		r.overlap = seed
	}

	return n, nil
}

// Done reports whether the underlying stream has been fully drained.
func (r *Reader) Done() bool { return r.sawEOF }

// Close advises the kernel that the input's pages are no longer needed
// (spec.md §4.6/§8) and closes the file.
func (r *Reader) Close() error {
	if r.advisedOk {
		_ = fs.AdviseDontNeed(r.file.Fd())
	}
	return r.file.Close()
}
