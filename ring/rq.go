package ring

import "errors"

// ErrNoInverseRq is returned by (*Rq).Recip when the receiver has no
// inverse in Rq. Unlike ErrNoInverseR3, this is unexpected for the short
// polynomials key generation feeds it and should be treated as an internal
// error by callers rather than silently retried.
var ErrNoInverseRq = errors.New("ntrulp/ring: element has no inverse in Rq")

// Rq is an element of (Z/q)[x] / (x^p - x - 1): a length-p vector of
// coefficients, each centered in [-Q12, Q12].
type Rq struct {
	P   int
	Q   int32
	Q12 int32

	Coeffs []int32
}

// NewRq allocates the zero element of Rq for the given parameters.
func NewRq(p int, q, q12 int32) *Rq {
	return &Rq{P: p, Q: q, Q12: q12, Coeffs: make([]int32, p)}
}

// Copy returns an independent copy of r.
func (r *Rq) Copy() *Rq {
	out := NewRq(r.P, r.Q, r.Q12)
	copy(out.Coeffs, r.Coeffs)
	return out
}

// Equal reports whether r and other hold identical coefficient vectors
// under identical moduli.
func (r *Rq) Equal(other *Rq) bool {
	if r.P != other.P || r.Q != other.Q {
		return false
	}
	for i := range r.Coeffs {
		if r.Coeffs[i] != other.Coeffs[i] {
			return false
		}
	}
	return true
}

// center maps a residue to the centered representative in [-q12, q12].
func (r *Rq) center(x int32) int32 {
	x %= r.Q
	x += r.Q & (x >> 31)           // negative -> [0, q)
	x -= r.Q & ((r.Q12 - x) >> 31) // above q12 -> negative side
	return x
}

// MultR3 computes h = r*t reduced modulo q and modulo (x^p - x - 1), where t
// is a ternary (R3) polynomial -- the shape every product in the cipher
// component needs: an Rq accumulator times a public or secret short
// polynomial. The convolution folds the high-degree tail back in twice, the
// same way ring.Mult reduces by x^p - x - 1, but accumulates in int64 since
// q can approach 2^14 and p approaches 2^11.
func (r *Rq) MultR3(t *R3) *Rq {
	p := r.P
	acc := make([]int64, 2*p-1)
	for i := 0; i < p; i++ {
		c := t.Coeffs[i]
		for j := 0; j < p; j++ {
			acc[i+j] += int64(c) * int64(r.Coeffs[j])
		}
	}
	for i := 2*p - 2; i >= p; i-- {
		acc[i-p] += acc[i]
		acc[i-p+1] += acc[i]
	}

	out := NewRq(p, r.Q, r.Q12)
	for i := 0; i < p; i++ {
		out.Coeffs[i] = out.center(int32(acc[i] % int64(r.Q)))
	}
	return out
}

// Round3 returns a copy of r with every coefficient rounded to the nearest
// multiple of 3, via the centered mod-3 residue subtracted from each
// coefficient: round(a) = a - freezeMod3(a).
func (r *Rq) Round3() *Rq {
	out := NewRq(r.P, r.Q, r.Q12)
	for i, c := range r.Coeffs {
		residue := freezeMod3(c)
		out.Coeffs[i] = out.center(c - int32(residue))
	}
	return out
}

// freezeMod3 computes the centered residue of an Rq coefficient modulo 3.
// It generalizes Freeze (which assumes |a| < 2^15) to the wider domain an
// Rq coefficient can occupy by first reducing through I32DivModU14.
func freezeMod3(a int32) int8 {
	_, r := I32DivModU14(a, 3)
	switch r {
	case 0:
		return 0
	case 1:
		return 1
	default: // r == 2
		return -1
	}
}

// MultInt returns a copy of r with every coefficient multiplied by the
// small public integer c and re-centered modulo q.
func (r *Rq) MultInt(c int32) *Rq {
	out := NewRq(r.P, r.Q, r.Q12)
	for i, v := range r.Coeffs {
		out.Coeffs[i] = out.center(v * c)
	}
	return out
}

// R3FromRq views r's coefficients modulo 3, centered, returning an R3
// element. The cipher component uses this to read out the ternary residue
// of an Rq product (always a multiple of 3 away from a valid R3 value for
// the inputs it is fed).
func (r *Rq) R3FromRq() *R3 {
	out := NewR3(r.P)
	for i, c := range r.Coeffs {
		out.Coeffs[i] = freezeMod3(c)
	}
	return out
}

// Recip computes the multiplicative inverse of r in Rq using the same
// division-step skeleton as (*R3).Recip: a fixed 2p-1 iterations, a
// branchless XOR-masked swap driven only by the public loop state and the
// sign of a running delta counter, never by an `if` on a secret
// coefficient. The one genuine difference from F3 is that Zq has no
// self-inverse shortcut (f0^2 = 1 does not hold for a general field
// element), so each step's elimination factor needs a true modular inverse
// of the current pivot f[0]. That inverse is computed via modInverse, whose
// Fermat exponentiation branches only on the fixed, public exponent q-2 --
// never on the secret pivot value itself -- so the per-step cost is higher
// than R3's but the control flow remains independent of any secret.
// Returns ErrNoInverseRq when the final delta is nonzero, meaning r shares
// a nontrivial factor with x^p-x-1 modulo q.
func (r *Rq) Recip() (*Rq, error) {
	p := r.P
	q := int64(r.Q)

	f := make([]int32, p+1)
	g := make([]int32, p+1)
	v := make([]int32, p+1)
	out := make([]int32, p+1)

	f[0] = 1
	f[p-1] = int32(q - 1)
	f[p] = int32(q - 1)

	for i := 0; i < p; i++ {
		g[i] = r.center(r.Coeffs[p-1-i])
	}

	out[0] = 1
	var delta int32 = 1

	for i := 0; i < 2*p-1; i++ {
		for j := p; j > 0; j-- {
			v[j] = v[j-1]
		}
		v[0] = 0

		swap := negativeMaskWord(-delta) & nonzeroMaskWord(g[0])

		delta ^= swap & (delta ^ -delta)
		delta++

		for j := 0; j <= p; j++ {
			t := swap & (f[j] ^ g[j])
			f[j] ^= t
			g[j] ^= t
			t = swap & (v[j] ^ out[j])
			v[j] ^= t
			out[j] ^= t
		}

		f0inv := modInverse(int64(f[0]), q)
		sign := int32(qmod(-int64(g[0])*f0inv, q))

		for j := 0; j <= p; j++ {
			g[j] = r.center(int32(qmod(int64(g[j])+int64(sign)*int64(f[j]), q)))
		}
		for j := 0; j <= p; j++ {
			out[j] = r.center(int32(qmod(int64(out[j])+int64(sign)*int64(v[j]), q)))
		}

		copy(g[:p], g[1:])
		g[p] = 0
	}

	if delta != 0 {
		return nil, ErrNoInverseRq
	}

	scale := modInverse(int64(f[0]), q)
	inv := NewRq(p, r.Q, r.Q12)
	for i := 0; i < p; i++ {
		inv.Coeffs[i] = inv.center(int32(qmod(scale*int64(v[p-1-i]), q)))
	}
	return inv, nil
}

// negativeMaskWord and nonzeroMaskWord are the 32-bit mask primitives the
// Rq division step needs: Rq coefficients and the delta counter can exceed
// what NonzeroMask/NegativeMask's 16-bit domain covers.
func negativeMaskWord(x int32) int32 {
	return x >> 31
}

func nonzeroMaskWord(x int32) int32 {
	u := uint32(x)
	m := -u | u
	return int32(m) >> 31
}

// modInverse returns the inverse of a modulo q (q prime) via Fermat's
// little theorem: a^(q-2) mod q, computed by square-and-multiply over the
// fixed, public exponent q-2 -- the bit pattern it branches on is known at
// compile time for a given parameter set, not dependent on a.
func modInverse(a, q int64) int64 {
	a = qmod(a, q)
	result := int64(1)
	base := a
	exp := q - 2
	for exp > 0 {
		if exp&1 == 1 {
			result = (result * base) % q
		}
		base = (base * base) % q
		exp >>= 1
	}
	return result
}

func qmod(a, q int64) int64 {
	a %= q
	a += q & (a >> 63)
	return a
}
