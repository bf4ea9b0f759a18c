package kmertable_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denopia/kaarme-go/internal/kmertable"
	"github.com/denopia/kaarme-go/pkg/fs"
)

func Test_FlagTable_CountsCanonicalKmers(t *testing.T) {
	t.Parallel()

	// "ACGT" at k=3 yields windows ACG, CGT; CGT's canonical form is ACG
	// (reverse complement), so both collapse to one entry with count 2.
	table, err := kmertable.NewFlagTable(101, 3)
	require.NoError(t, err)

	feed(t, table, 3, "ACGT")

	require.Equal(t, map[string]uint64{"ACG": 2}, counts(t, table))
}

func Test_FlagTable_RepeatedKmer_AccumulatesCount(t *testing.T) {
	t.Parallel()

	table, err := kmertable.NewFlagTable(101, 2)
	require.NoError(t, err)

	feed(t, table, 2, "AAAA")

	require.Equal(t, map[string]uint64{"AA": 3}, counts(t, table))
}

func Test_FlagTable_BreakResetsRun(t *testing.T) {
	t.Parallel()

	table, err := kmertable.NewFlagTable(101, 3)
	require.NoError(t, err)

	feed(t, table, 3, "ACGTN ACGT")

	require.Equal(t, map[string]uint64{"ACG": 4}, counts(t, table))
}

func Test_FlagTable_WriteOut_FiltersByThreshold(t *testing.T) {
	t.Parallel()

	table, err := kmertable.NewFlagTable(101, 3)
	require.NoError(t, err)

	feed(t, table, 3, "AAACCC")
	feed(t, table, 3, "AAACCC") // repeat the same run once more
	feed(t, table, 3, "ACT")    // seen once: below the threshold

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, table.WriteOut(2, path, fs.NewReal()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "AAA 2\n")
	require.Contains(t, string(data), "CCC 2\n")
	require.NotContains(t, string(data), "ACT")
}

func Test_FlagTable_Palindrome_CountsAsOne(t *testing.T) {
	t.Parallel()

	table, err := kmertable.NewFlagTable(101, 4)
	require.NoError(t, err)

	feed(t, table, 4, "ATAT")

	require.Equal(t, map[string]uint64{"ATAT": 1}, counts(t, table))
}

func Test_FlagTable_ErrTableFull_WhenSlotsExhausted(t *testing.T) {
	t.Parallel()

	table, err := kmertable.NewFlagTable(2, 5)
	require.NoError(t, err)

	// Three 5-mers with pairwise-distinct canonical forms can't all fit in
	// a 2-slot table; ProcessKmer must report ErrTableFull on the one that
	// doesn't fit, rather than overwrite another entry.
	seqs := []string{"AAAAA", "CCCCC", "ATATA"}
	var lastErr error
	for _, seq := range seqs {
		if err := feedExpectErr(t, table, 5, seq); err != nil {
			lastErr = err
		}
	}
	require.ErrorIs(t, lastErr, kmertable.ErrTableFull)
}

func Test_FlagTable_ConcurrentInserts_ConvergeToCorrectCounts(t *testing.T) {
	t.Parallel()

	table, err := kmertable.NewFlagTable(10007, 4)
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			feed(t, table, 4, "ACGTACGTACGT")
		}()
	}
	wg.Wait()

	got := counts(t, table)
	var total uint64
	for _, c := range got {
		total += c
	}
	// Each run of "ACGTACGTACGT" (12 bases) yields 9 overlapping 4-mers;
	// goroutines many runs must sum to that many total observations.
	require.Equal(t, uint64(goroutines*9), total)
}
