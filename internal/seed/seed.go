// Package seed provides the deterministic fixture generator used by all
// synthetic dashboard data. Every "random" value in the system is a pure
// function of a string seed, so catalogs and scores are reproducible
// across runs and platforms.
package seed

import "math"

// maxInt32 is the divisor that maps the absolute hash into [0,1).
const maxInt32 = 2147483647

// Value maps an arbitrary string seed to a float in [0,1). The hash is
// the classic shift-subtract string hash with 32-bit signed wraparound at
// every step; identical seeds produce identical output on any platform.
// The empty string hashes to 0.
func Value(s string) float64 {
	var hash int32
	for _, c := range s {
		hash = (hash << 5) - hash + int32(c)
	}
	// abs(MinInt32) is not representable in 32 bits.
	if hash == math.MinInt32 {
		hash = math.MaxInt32
	}
	if hash < 0 {
		hash = -hash
	}
	return float64(hash) / maxInt32
}

// Range maps a seed onto the interval [lo, hi).
func Range(s string, lo, hi float64) float64 {
	return lo + Value(s)*(hi-lo)
}

// IntBetween maps a seed onto the integers [lo, hi] inclusive.
func IntBetween(s string, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := lo + int(Value(s)*float64(hi-lo+1))
	// A hash of exactly MaxInt32 maps to 1.0.
	if n > hi {
		n = hi
	}
	return n
}

// Pick selects one element of options by seed. Empty options return the
// zero string.
func Pick(s string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	i := int(Value(s) * float64(len(options)))
	if i >= len(options) {
		i = len(options) - 1
	}
	return options[i]
}

// Chance reports whether the seeded value falls under probability p.
func Chance(s string, p float64) bool {
	return Value(s) < p
}
