package reader_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denopia/kaarme-go/internal/reader"
	"github.com/denopia/kaarme-go/pkg/fs"
)

func writeTempFile(t *testing.T, data string) (fs.FS, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return fs.NewReal(), path
}

func Test_Reader_SingleChunk_HoldsWholeInput(t *testing.T) {
	t.Parallel()

	fsys, path := writeTempFile(t, "ACGTACGT")
	rd, err := reader.Open(fsys, path, 3, reader.Plain, false)
	require.NoError(t, err)
	defer rd.Close()

	buf := make([]byte, 64)
	n, err := rd.Fill(buf)
	require.NoError(t, err)
	require.Equal(t, "ACGTACGT", string(buf[:n]))

	_, err = rd.Fill(buf)
	require.ErrorIs(t, err, io.EOF)
}

func Test_Reader_MultiChunk_OverlapsByKMinus1(t *testing.T) {
	t.Parallel()

	// k=3 means each chunk after the first is seeded with the previous
	// chunk's last 2 bytes.
	const k = 3
	fsys, path := writeTempFile(t, "AAACCCGGG")
	rd, err := reader.Open(fsys, path, k, reader.Plain, false)
	require.NoError(t, err)
	defer rd.Close()

	buf := make([]byte, 4)

	n1, err := rd.Fill(buf)
	require.NoError(t, err)
	chunk1 := string(buf[:n1])
	require.Equal(t, "AAAC", chunk1)

	n2, err := rd.Fill(buf)
	require.NoError(t, err)
	chunk2 := string(buf[:n2])
	// seeded with the last k-1=2 bytes of chunk1 ("AC") followed by the
	// next 2 bytes of input ("CC").
	require.Equal(t, "ACCC", chunk2)

	n3, err := rd.Fill(buf)
	require.NoError(t, err)
	chunk3 := string(buf[:n3])
	require.Equal(t, "CCGG", chunk3)

	n4, err := rd.Fill(buf)
	require.NoError(t, err)
	chunk4 := string(buf[:n4])
	require.Equal(t, "GGG", chunk4)

	_, err = rd.Fill(buf)
	require.ErrorIs(t, err, io.EOF)
}

func Test_Reader_RejectsFASTA(t *testing.T) {
	t.Parallel()

	fsys, path := writeTempFile(t, "ACGT")
	_, err := reader.Open(fsys, path, 3, reader.FASTA, false)
	require.ErrorIs(t, err, reader.ErrUnsupportedFormat)
}

func Test_Reader_EmptyInput_IsImmediateEOF(t *testing.T) {
	t.Parallel()

	fsys, path := writeTempFile(t, "")
	rd, err := reader.Open(fsys, path, 3, reader.Plain, false)
	require.NoError(t, err)
	defer rd.Close()

	buf := make([]byte, 4)
	_, err = rd.Fill(buf)
	require.ErrorIs(t, err, io.EOF)
}
