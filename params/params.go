// Package params defines the NTRU Prime parameter bundles used throughout the
// toolkit: the prime degree p, the prime modulus q, the target weight w, and
// the derived constants (Q12, byte-lengths, the modular inverse of 3) every
// other package reads off a validated Parameters value instead of
// recomputing.
package params

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ErrInvalidParams is the sentinel wrapped by NewParametersFromLiteral when a
// literal violates one of the NTRU Prime structural invariants.
var ErrInvalidParams = fmt.Errorf("ntrulp/params: invalid parameters")

// ParametersLiteral is the unchecked, JSON-friendly representation of an NTRU
// Prime parameter set. Users assemble a ParametersLiteral (or pick one of the
// package-level defaults below) and pass it to NewParametersFromLiteral to
// obtain a validated, immutable Parameters value.
type ParametersLiteral struct {
	P int `json:"p"`
	Q int `json:"q"`
	W int `json:"w"`
	// Difficult is the slack between the chunker's payload-weight budget and
	// the target weight w. See chunker.SplitWChunks.
	Difficult int `json:"difficult"`
}

// Parameters is a validated, immutable NTRU Prime parameter set. Its fields
// are private; construct one with NewParametersFromLiteral.
type Parameters struct {
	p         int
	q         int
	w         int
	q12       int32
	difficult int
	r3Bytes   int
	rqBytes   int
	inv3      int32
}

// P returns the polynomial degree / ring dimension.
func (p Parameters) P() int { return p.p }

// Q returns the coefficient modulus of Rq.
func (p Parameters) Q() int { return p.q }

// W returns the target Hamming weight of short polynomials.
func (p Parameters) W() int { return p.w }

// Q12 returns (q-1)/2, the half-modulus used to center Rq coefficients.
func (p Parameters) Q12() int32 { return p.q12 }

// Difficult returns the chunker padding slack constant.
func (p Parameters) Difficult() int { return p.difficult }

// R3Bytes returns the wire length, in bytes, of an encoded R3 polynomial.
func (p Parameters) R3Bytes() int { return p.r3Bytes }

// RqBytes returns the wire length, in bytes, of an encoded Rq polynomial.
func (p Parameters) RqBytes() int { return p.rqBytes }

// Inv3 returns the modular inverse of 3 mod q, centered in [-Q12, Q12].
// It is computed once at construction instead of per key-pair generation,
// the way a Ring precomputes its Montgomery/Barrett constants once in
// NewRing rather than on every reduction.
func (p Parameters) Inv3() int32 { return p.inv3 }

// MarshalJSON encodes the parameter set as its literal form.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(ParametersLiteral{P: p.p, Q: p.q, W: p.w, Difficult: p.difficult})
}

// NewParametersFromLiteral validates lit against the NTRU Prime structural
// invariants and returns an immutable Parameters value. A non-nil error
// wraps ErrInvalidParams and names the violated invariant.
func NewParametersFromLiteral(lit ParametersLiteral) (Parameters, error) {
	p, q, w := lit.P, lit.Q, lit.W

	if !isPrime(p) {
		return Parameters{}, fmt.Errorf("%w: p=%d is not prime", ErrInvalidParams, p)
	}
	if !isPrime(q) {
		return Parameters{}, fmt.Errorf("%w: q=%d is not prime", ErrInvalidParams, q)
	}
	if w <= 0 {
		return Parameters{}, fmt.Errorf("%w: w=%d must be positive", ErrInvalidParams, w)
	}
	if 2*p < 3*w {
		return Parameters{}, fmt.Errorf("%w: 2p=%d must be >= 3w=%d", ErrInvalidParams, 2*p, 3*w)
	}
	if q < 16*w+1 {
		return Parameters{}, fmt.Errorf("%w: q=%d must be >= 16w+1=%d", ErrInvalidParams, q, 16*w+1)
	}
	if q%6 != 1 {
		return Parameters{}, fmt.Errorf("%w: q=%d must be congruent to 1 mod 6", ErrInvalidParams, q)
	}
	if lit.Difficult < 0 || lit.Difficult >= w {
		return Parameters{}, fmt.Errorf("%w: difficult=%d must satisfy 0 <= difficult < w=%d", ErrInvalidParams, lit.Difficult, w)
	}

	inv3, err := inverseMod3(q)
	if err != nil {
		// Sanity check, this error should not happen: q is prime and q != 3
		// (q >= 16w+1 > 3 for any w >= 1), so 3 is always invertible mod q.
		panic(err)
	}

	return Parameters{
		p:         p,
		q:         q,
		w:         w,
		q12:       int32((q - 1) / 2),
		difficult: lit.Difficult,
		r3Bytes:   (p + 3) / 4,
		rqBytes:   2 * p,
		inv3:      inv3,
	}, nil
}

// isPrime reports whether n is prime, deferring to math/big's
// Baillie-PSW-backed primality test.
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	return new(big.Int).SetInt64(int64(n)).ProbablyPrime(20)
}

// inverseMod3 returns the inverse of 3 modulo q, centered in [-Q12, Q12].
func inverseMod3(q int) (int32, error) {
	for x := 0; x < q; x++ {
		if (3*x)%q == 1 {
			v := int32(x)
			q12 := int32((q - 1) / 2)
			if v > q12 {
				v -= int32(q)
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("3 has no inverse mod %d", q)
}

// Get looks up one of the canonical parameter literals by name. It is a
// convenience for boundary layers (CLI flags, config files) that need to
// select among the standard NTRU Prime instances; the core itself never
// calls it.
func Get(name string) (ParametersLiteral, error) {
	lit, ok := byName[name]
	if !ok {
		return ParametersLiteral{}, fmt.Errorf("%w: unknown parameter set %q", ErrInvalidParams, name)
	}
	return lit, nil
}

// Canonical NTRU Prime parameter sets.
var (
	NTRUP653  = ParametersLiteral{P: 653, Q: 4621, W: 288, Difficult: 4}
	NTRUP761  = ParametersLiteral{P: 761, Q: 4591, W: 286, Difficult: 6}
	NTRUP857  = ParametersLiteral{P: 857, Q: 5167, W: 322, Difficult: 8}
	NTRUP953  = ParametersLiteral{P: 953, Q: 6343, W: 396, Difficult: 10}
	NTRUP1013 = ParametersLiteral{P: 1013, Q: 7177, W: 448, Difficult: 12}
	NTRUP1277 = ParametersLiteral{P: 1277, Q: 7879, W: 492, Difficult: 14}
)

var byName = map[string]ParametersLiteral{
	"NTRUP653":  NTRUP653,
	"NTRUP761":  NTRUP761,
	"NTRUP857":  NTRUP857,
	"NTRUP953":  NTRUP953,
	"NTRUP1013": NTRUP1013,
	"NTRUP1277": NTRUP1277,
}
