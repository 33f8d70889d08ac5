// Package cipher implements the NTRU Prime encryption and decryption
// primitives: a single Rq multiply-and-round for encryption, and a
// branchless weight-checked fallback for decryption, the way the reference
// lattice-cryptography codebase's cipher layer sits directly on top of its
// ring and key packages without any framing of its own.
package cipher

import (
	"github.com/zebra-sh/ntrulp/keypair"
	"github.com/zebra-sh/ntrulp/ring"
)

// Encrypt computes c = round(h*r), the ciphertext for plaintext r under
// public key h. r is expected to be a legal weight-w short polynomial, but
// Encrypt itself does not check that -- it is the caller's responsibility to
// draw r from random.Short or an equivalent source.
func Encrypt(r *ring.R3, h *ring.Rq) *ring.Rq {
	return h.MultR3(r).Round3()
}

// Decrypt recovers the plaintext from ciphertext c under private key sk. It
// always returns a polynomial of exactly weight sk.W: for a ciphertext
// honestly produced by Encrypt, that polynomial equals the original r: for
// any other input, it falls back to the fixed pattern (1,...,1,0,...,0) (W
// ones followed by zeros) rather than returning whatever nonsense the
// arithmetic produced. Comparing a decryption result's weight or
// decrypting adversarial ciphertexts therefore leaks nothing about sk.
func Decrypt(c *ring.Rq, sk *keypair.PrivateKey) *ring.R3 {
	e := c.MultR3(sk.F).MultInt(3).R3FromRq()
	ev := ring.Mult(e, sk.GInv)

	mask := ring.WeightWMask(ev.Coeffs, sk.W) // 0 if weight w, else -1
	notMask := ^mask

	p := len(ev.Coeffs)
	out := ring.NewR3(p)
	for i := 0; i < sk.W && i < p; i++ {
		v := (int16(ev.Coeffs[i]) ^ 1) & notMask
		out.Coeffs[i] = int8(v ^ 1)
	}
	for i := sk.W; i < p; i++ {
		out.Coeffs[i] = int8(int16(ev.Coeffs[i]) & notMask)
	}
	return out
}
