package ring

import "errors"

// ErrNoInverseR3 is returned by (*R3).Recip when the receiver has no inverse
// in R3. Roughly a 1/3 fraction of R3 elements are singular; callers that
// drew the element at random (key generation) are expected to redraw and
// retry rather than treat this as fatal.
var ErrNoInverseR3 = errors.New("ntrulp/ring: element has no inverse in R3")

// R3 is an element of (Z/3)[x] / (x^p - x - 1): a length-p vector of
// coefficients, each centered in {-1, 0, 1}.
type R3 struct {
	P      int
	Coeffs []int8
}

// NewR3 allocates the zero element of R3 for the given degree.
func NewR3(p int) *R3 {
	return &R3{P: p, Coeffs: make([]int8, p)}
}

// Copy returns an independent copy of r.
func (r *R3) Copy() *R3 {
	out := NewR3(r.P)
	copy(out.Coeffs, r.Coeffs)
	return out
}

// Equal reports whether r and other hold identical coefficient vectors.
func (r *R3) Equal(other *R3) bool {
	if r.P != other.P {
		return false
	}
	for i := range r.Coeffs {
		if r.Coeffs[i] != other.Coeffs[i] {
			return false
		}
	}
	return true
}

// Mult computes h = f*g reduced modulo 3 and modulo (x^p - x - 1). The
// convolution is computed the naive O(p^2) way, folding the high-degree
// tail (indices p..2p-2) back in twice -- once at offset i-p and once at
// offset i-p+1 -- which realizes reduction by x^p - x - 1 exactly, since
// x^p = x + 1 in this ring. Sums accumulate unreduced in int32 (at most 3p
// in magnitude) and Freeze is applied once to each folded coefficient.
func Mult(f, g *R3) *R3 {
	p := f.P
	fg := make([]int32, 2*p-1)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			fg[i+j] += int32(f.Coeffs[i]) * int32(g.Coeffs[j])
		}
	}
	for i := 2*p - 2; i >= p; i-- {
		fg[i-p] += fg[i]
		fg[i-p+1] += fg[i]
	}
	out := NewR3(p)
	for i := 0; i < p; i++ {
		out.Coeffs[i] = Freeze(fg[i])
	}
	return out
}

// Recip computes the multiplicative inverse of r in R3 using the
// constant-time division-step algorithm (Bernstein-Yang specialized to
// F3[x]/(x^p-x-1)). Returns ErrNoInverseR3 if r is singular.
//
// The algorithm tracks two polynomial pairs: (f, g) holding the modulus and
// (a shifted copy of) the operand, and (v, out) accumulating the Bezout
// coefficient. Every step either swaps the pairs or not, selected via a
// branchless mask so the control flow never depends on secret coefficient
// values.
func (r *R3) Recip() (*R3, error) {
	p := r.P

	f := make([]int8, p+1)
	g := make([]int8, p+1)
	v := make([]int8, p+1)
	out := make([]int8, p+1)

	// f = x^p - x - 1, represented with f[0]=1 (constant of -(x^p-x-1)
	// reversed... ) laid out so the division-step loop below operates on
	// it directly: f[0]=1, f[p-1]=-1, f[p]=-1.
	f[0] = 1
	f[p-1] = -1
	f[p] = -1

	// g holds the operand reversed into the first p slots (g[p] stays 0).
	for i := 0; i < p; i++ {
		g[i] = r.Coeffs[p-1-i]
	}

	out[0] = 1
	var delta int16 = 1

	for i := 0; i < 2*p-1; i++ {
		// Shift v right by one.
		for j := p; j > 0; j-- {
			v[j] = v[j-1]
		}
		v[0] = 0

		sign := -g[0] * f[0]
		swap := int8(NegativeMask(int16(-delta)) & NonzeroMask(int16(g[0])))

		// Swap (f,g) and (v,out) under a mask rather than a data-dependent
		// branch: every byte is XORed with a mask that is all-ones when
		// swap is set and all-zero otherwise, so the memory access pattern
		// and instruction trace never depend on secret coefficients.
		delta ^= int16(swap) & (delta ^ -delta)
		delta++

		for j := 0; j <= p; j++ {
			t := swap & (f[j] ^ g[j])
			f[j] ^= t
			g[j] ^= t
			t = swap & (v[j] ^ out[j])
			v[j] ^= t
			out[j] ^= t
		}

		for j := 0; j <= p; j++ {
			g[j] = Freeze(int32(g[j]) + int32(sign)*int32(f[j]))
		}
		for j := 0; j <= p; j++ {
			out[j] = Freeze(int32(out[j]) + int32(sign)*int32(v[j]))
		}

		// Shift g left by one (discard g[0]).
		copy(g[:p], g[1:])
		g[p] = 0
	}

	if delta != 0 {
		return nil, ErrNoInverseR3
	}

	scale := f[0]
	inv := NewR3(p)
	for i := 0; i < p; i++ {
		inv.Coeffs[i] = Freeze(int32(scale) * int32(v[p-1-i]))
	}
	return inv, nil
}
