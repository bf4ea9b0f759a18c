// Package mathutil implements the math utilities (C4): next-prime search,
// gcd/extended-gcd, and modular multiplicative inverse, grounded on
// mathfunctions:: in original_source/source/hash_functions.cpp.
package mathutil

import "errors"

// ErrNotCoprime is returned by ModularInverse when gcd(a, m) != 1, so no
// inverse exists.
var ErrNotCoprime = errors.New("mathutil: a and m are not coprime")

// NextPrime returns the smallest prime p >= n, using trial division with a
// 6k+-1 wheel (spec.md §4.4).
func NextPrime(n uint64) uint64 {
	if n <= 2 {
		return 2
	}
	if n == 3 {
		return 3
	}

	candidate := n
	if candidate%2 == 0 {
		candidate++
	}
	for !isPrime(candidate) {
		candidate += 2
	}
	return candidate
}

// isPrime tests primality by trial division restricted to the 6k+-1 wheel:
// every prime > 3 is of the form 6k+1 or 6k-1.
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n == 2 || n == 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := uint64(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ExtendedGCD returns (g, x, y) such that a*x + b*y = g = gcd(a, b).
func ExtendedGCD(a, b int64) (g, x, y int64) {
	if b == 0 {
		return a, 1, 0
	}
	g, x1, y1 := ExtendedGCD(b, a%b)
	return g, y1, x1 - (a/b)*y1
}

// ModularInverse returns a^-1 mod m via extended Euclid. Precondition:
// gcd(a, m) = 1 (modular_multiplicative_inverse_coprimes in
// hash_functions.cpp); violating it returns ErrNotCoprime.
func ModularInverse(a, m uint64) (uint64, error) {
	g, x, _ := ExtendedGCD(int64(a), int64(m))
	if g != 1 && g != -1 {
		return 0, ErrNotCoprime
	}

	inv := x % int64(m)
	if inv < 0 {
		inv += int64(m)
	}
	return uint64(inv), nil
}
