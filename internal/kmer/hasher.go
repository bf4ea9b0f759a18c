package kmer

import (
	"math/bits"

	"github.com/denopia/kaarme-go/internal/mathutil"
)

// defaultBase is d=5 in RollingHasherDual, the next prime above the
// 4-letter alphabet size, used unless a HasherOption overrides it
// (SPEC_FULL.md §13).
const defaultBase = 5

// Hasher implements the dual polynomial rolling hash (C3): H_f tracks the
// forward window, H_r tracks the reverse-complement window. Once the window
// is full both are updated in O(1) per character; while priming, each push
// recomputes d^count with count multiplications, so it is not O(1) then.
// Grounded on RollingHasherDual
// (original_source/source/hash_functions.cpp).
type Hasher struct {
	q  uint64 // modulus: a prime, or a power of two when powerOfTwo is set
	m  uint64 // window length (k)
	d  uint64 // alphabet base
	di uint64 // modular multiplicative inverse of d mod q
	h  uint64 // d^(m-1) mod q
	rq uint64 // optional secondary read-out modulus; 0 disables it

	powerOfTwo bool // q is a power of two: use AND (q-1) instead of mod q

	hf, hr uint64 // running forward/reverse hash values
	count  uint64 // characters hashed so far, saturating at m
}

// HasherOption configures NewHasher beyond the (q, m) pair every
// RollingHasherDual constructor needs. The four constructor overloads in
// hash_functions.cpp are reachable as: no options (derive d=5 and its
// inverse), WithBase (precomputed d/d⁻¹), WithBase+WithReadoutModulus, and
// all three plus WithPowerOfTwoModulus (SPEC_FULL.md §13).
type HasherOption func(*Hasher)

// WithBase overrides the alphabet base d (default 5) and its modular
// inverse dInverse mod q. The caller must ensure gcd(d, q) = 1.
func WithBase(d, dInverse uint64) HasherOption {
	return func(h *Hasher) {
		h.d = d
		h.di = dInverse
	}
}

// WithReadoutModulus sets a secondary modulus rq applied on read-out
// (HashForward/HashBackward), used to map a wide rolling hash down to a
// hash-table/stripe index range.
func WithReadoutModulus(rq uint64) HasherOption {
	return func(h *Hasher) { h.rq = rq }
}

// WithPowerOfTwoModulus marks q as a power of two, switching the update
// arithmetic from "mod q" to "AND (q-1)". d must be odd for its inverse to
// exist under this mode.
func WithPowerOfTwoModulus() HasherOption {
	return func(h *Hasher) { h.powerOfTwo = true }
}

// NewHasher constructs a Hasher for window length m over modulus q, with
// the default base d=5 unless overridden by opts. The caller must ensure
// gcd(d, q) = 1; otherwise d has no inverse mod q and the reverse hash is
// not maintained correctly.
func NewHasher(q, m uint64, opts ...HasherOption) *Hasher {
	h := &Hasher{q: q, m: m, d: defaultBase}
	for _, opt := range opts {
		opt(h)
	}
	if h.di == 0 {
		h.di = modInverse(h.d, h.q, h.powerOfTwo)
	}
	h.h = 1
	for i := uint64(0); i+1 < m; i++ {
		h.h = mulMod(h.h, h.d, h.q, h.powerOfTwo)
	}
	return h
}

// modInverse computes d^-1 mod q (required for the O(1) reverse-hash
// update, spec.md §3) via mathutil's extended-Euclid implementation. q need
// not be prime; extended Euclid only requires gcd(d, q) = 1, which is the
// documented precondition on the caller (NewHasher's doc comment).
func modInverse(d, q uint64, _ bool) uint64 {
	inv, err := mathutil.ModularInverse(d, q)
	if err != nil {
		return 0
	}
	return inv
}

// mulMod computes (a*b) mod q, using a 128-bit widening multiply to avoid
// overflow when q is not a power of two (spec.md §4.3).
func mulMod(a, b, q uint64, powerOfTwo bool) uint64 {
	if powerOfTwo {
		return (a * b) & (q - 1)
	}
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, q)
	return rem
}

func addMod(a, b, q uint64, powerOfTwo bool) uint64 {
	if powerOfTwo {
		return (a + b) & (q - 1)
	}
	return (a + b) % q
}

func subMod(a, b, q uint64, powerOfTwo bool) uint64 {
	if powerOfTwo {
		return (a - b) & (q - 1)
	}
	if b > a {
		return q - (b - a)
	}
	return a - b
}

// Reset zeros H_f, H_r, and the character count.
func (h *Hasher) Reset() {
	h.hf, h.hr = 0, 0
	h.count = 0
}

// Push advances the rolling hash by one character. cIn is the incoming
// forward character; cOut is the character leaving the window (ignored
// while priming, i.e. while count < m). complementIn is the complement of
// cIn, matching update_rolling_hash's reverse-stream update.
func (h *Hasher) Push(cIn, cOut, complementIn uint8) {
	q, d, di, hh := h.q, h.d, h.di, h.h
	pot := h.powerOfTwo

	if h.count < h.m {
		// Priming (spec.md §4.3): H_f <- d*H_f + c_in; H_r <- H_r + complement(c_in)*d^count
		h.hf = addMod(mulMod(d, h.hf, q, pot), uint64(cIn), q, pot)

		pow := uint64(1)
		for i := uint64(0); i < h.count; i++ {
			pow = mulMod(pow, d, q, pot)
		}
		h.hr = addMod(h.hr, mulMod(uint64(complementIn), pow, q, pot), q, pot)

		h.count++
		return
	}

	// Steady state (spec.md §4.3):
	// H_f <- d*H_f + c_in - d*h*c_out
	in := addMod(mulMod(d, h.hf, q, pot), uint64(cIn), q, pot)
	out := mulMod(mulMod(d, hh, q, pot), uint64(cOut), q, pot)
	h.hf = subMod(in, out, q, pot)

	// H_r <- complement(c_in)*h + (H_r - complement(c_out))*d^-1
	complementOut := 3 - cOut // alphabet.Complement inlined to avoid an import for one expression
	base := subMod(h.hr, uint64(complementOut), q, pot)
	h.hr = addMod(mulMod(uint64(complementIn), hh, q, pot), mulMod(base, di, q, pot), q, pot)
}

// HashForward and HashBackward read out the current forward/reverse hash,
// reduced by the secondary modulus rq if one was configured.
func (h *Hasher) HashForward() uint64 {
	if h.rq == 0 {
		return h.hf
	}
	return h.hf % h.rq
}

func (h *Hasher) HashBackward() uint64 {
	if h.rq == 0 {
		return h.hr
	}
	return h.hr % h.rq
}
