// Package ring implements the two coefficient rings NTRU Prime is built on,
// R3 = (Z/3)[x]/(x^p-x-1) and Rq = (Z/q)[x]/(x^p-x-1), plus the small-integer
// primitives (constant-time masks, 14-bit division, centered mod-3 freeze)
// their arithmetic is built from, and the wire encodings used to serialize
// polynomials.
package ring

// NonzeroMask returns -1 if x is non-zero, 0 otherwise. Branchless: an
// all-ones mask is produced by OR-ing x with its two's-complement negation
// and sign-extending the top bit across the word.
func NonzeroMask(x int16) int16 {
	u := uint16(x)
	m := -u | u
	return int16(m) >> 15
}

// NegativeMask returns -1 if x < 0, 0 otherwise. Branchless sign extraction.
func NegativeMask(x int16) int16 {
	return x >> 15
}

// reciprocalBias is the Barrett-style bias V = 2^31 used by U32DivModU14 and
// I32DivModU14 to compute a reciprocal of a modulus known to fit in 14 bits.
const reciprocalBias = uint64(1) << 31

// U32DivModU14 divides the unsigned 32-bit value x by the modulus m, where m
// is known to fit in 14 bits (m < 2^14). It returns the quotient and
// remainder via a fixed reciprocal-multiply-and-correct sequence: no
// data-dependent branch count, only a bounded number of correction steps.
func U32DivModU14(x uint32, m uint16) (q uint32, r uint16) {
	if m == 0 {
		return 0, 0
	}
	v := reciprocalBias / uint64(m)
	qq := uint32((v * uint64(x)) >> 31)
	rr := x - qq*uint32(m)

	// At most two correction passes are ever needed for m < 2^14.
	if rr >= uint32(m) {
		rr -= uint32(m)
		qq++
	}
	if rr >= uint32(m) {
		rr -= uint32(m)
		qq++
	}
	return qq, uint16(rr)
}

// I32DivModU14 divides the signed 32-bit value x by the modulus m (m < 2^14),
// returning a quotient/remainder pair with a non-negative remainder in
// [0, m), i.e. floor division. Negative x is handled by dividing its
// magnitude and correcting the sign. The sign test and the zero-remainder
// test are ordinary branches on x, and so are U32DivModU14's correction
// steps; freezeMod3 calls this on Rq coefficients, including the
// key-dependent ones Decrypt reads out through R3FromRq, so that path is
// not branch-free.
func I32DivModU14(x int32, m uint16) (q uint32, r uint32) {
	if x >= 0 {
		qq, rr := U32DivModU14(uint32(x), m)
		return qq, uint32(rr)
	}
	qq, rr := U32DivModU14(uint32(-x), m)
	if rr == 0 {
		return uint32(-int32(qq)), 0
	}
	return uint32(-int32(qq) - 1), uint32(m) - uint32(rr)
}

// Freeze reduces a to the centered representative of a mod 3, i.e. an
// element of {-1, 0, 1}. Valid for a in [-2^15, 2^15). This is the identity
// used after every accumulation inside R3 multiplication and inversion so
// intermediate sums never escape the ternary alphabet.
func Freeze(a int32) int8 {
	b := a - 3*((10923*a)>>15)
	c := b - 3*((89478485*b+134217728)>>28)
	return int8(c)
}

// WeightWMask returns 0 if r has exactly w non-zero coefficients, -1
// otherwise. It is evaluated without branching on any individual
// coefficient's value: the comparison of the running count against w is the
// only data-dependent step, and it is itself reduced through NonzeroMask.
func WeightWMask(r []int8, w int) int16 {
	var count int
	for _, c := range r {
		count += int(NonzeroMask(int16(c)) & 1)
	}
	return NonzeroMask(int16(count - w))
}
