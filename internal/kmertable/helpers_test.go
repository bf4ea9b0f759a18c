package kmertable_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denopia/kaarme-go/internal/alphabet"
	"github.com/denopia/kaarme-go/internal/kmer"
	"github.com/denopia/kaarme-go/internal/kmertable"
	"github.com/denopia/kaarme-go/pkg/fs"
)

const hashModulus = (1 << 61) - 1

// feed replays seq through a fresh factory/hasher pair and calls
// table.ProcessKmer once per completed window, the way the orchestrator's
// worker loop does, carrying the slot returned by each call forward as the
// next predecessor within the same unbroken run.
func feed(t *testing.T, table kmertable.Table, k int, seq string) {
	t.Helper()

	factory := kmer.NewFactory(k)
	hasher := kmer.NewHasher(hashModulus, uint64(k), kmer.WithReadoutModulus(table.Size()))

	predecessorExists := false
	var predecessorSlot uint64

	for _, b := range []byte(seq) {
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
		require.NoError(t, err)
		predecessorSlot = slot
		predecessorExists = true
	}
}

// feedExpectErr is like feed but returns the first error ProcessKmer
// reports instead of failing the test, for cases exercising ErrTableFull.
func feedExpectErr(t *testing.T, table kmertable.Table, k int, seq string) error {
	t.Helper()

	factory := kmer.NewFactory(k)
	hasher := kmer.NewHasher(hashModulus, uint64(k), kmer.WithReadoutModulus(table.Size()))

	predecessorExists := false
	var predecessorSlot uint64

	for _, b := range []byte(seq) {
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

// counts writes out every entry (threshold 0, so nothing is dropped) and
// parses the result back into a kmer -> count map for assertions.
func counts(t *testing.T, table kmertable.Table) map[string]uint64 {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, table.WriteOut(0, path, fs.NewReal()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := make(map[string]uint64)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		require.Len(t, fields, 2)
		n, err := strconv.ParseUint(fields[1], 10, 64)
		require.NoError(t, err)
		out[fields[0]] = n
	}
	return out
}
