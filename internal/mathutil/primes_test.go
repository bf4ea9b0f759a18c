package mathutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denopia/kaarme-go/internal/mathutil"
)

func Test_NextPrime(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   uint64
		want uint64
	}{
		{"below two", 0, 2},
		{"one", 1, 2},
		{"two", 2, 2},
		{"three", 3, 3},
		{"four", 4, 5},
		{"already prime", 17, 17},
		{"even composite", 100, 101},
		{"one above a prime", 18, 19},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, mathutil.NextPrime(tc.in))
		})
	}
}

func Test_GCD(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint64(6), mathutil.GCD(54, 24))
	require.Equal(t, uint64(1), mathutil.GCD(5, 1_000_003))
	require.Equal(t, uint64(7), mathutil.GCD(0, 7))
}

func Test_ExtendedGCD(t *testing.T) {
	t.Parallel()

	g, x, y := mathutil.ExtendedGCD(35, 15)
	require.Equal(t, int64(5), g)
	require.Equal(t, int64(35*x+15*y), g)
}

func Test_ModularInverse(t *testing.T) {
	t.Parallel()

	inv, err := mathutil.ModularInverse(5, 17)
	require.NoError(t, err)
	require.Equal(t, uint64(1), (5*inv)%17)
}

func Test_ModularInverse_NotCoprime(t *testing.T) {
	t.Parallel()

	_, err := mathutil.ModularInverse(4, 8)
	require.ErrorIs(t, err, mathutil.ErrNotCoprime)
}
