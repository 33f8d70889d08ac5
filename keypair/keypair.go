// Package keypair derives NTRU Prime key pairs and verifies them, the way
// the reference lattice-cryptography codebase's key generator separates
// "draw candidate secret material" from "assemble and validate the public
// key" into a small retry loop around the ring package's arithmetic.
package keypair

import (
	"fmt"

	"github.com/zebra-sh/ntrulp/params"
	"github.com/zebra-sh/ntrulp/random"
	"github.com/zebra-sh/ntrulp/ring"
	"github.com/zebra-sh/ntrulp/sampling"
)

// PrivateKey is the pair (f, g_inv) an honest party keeps secret: f is a
// short polynomial, g_inv is the R3 inverse of the g used to derive h. W is
// carried alongside so the cipher's decryption weight check doesn't need a
// separate parameter lookup.
type PrivateKey struct {
	F    *ring.R3
	GInv *ring.R3
	W    int
}

// PublicKey is the single Rq polynomial h = g * (3f)^-1 shared with peers.
type PublicKey struct {
	H *ring.Rq
}

// KeyPair bundles a PrivateKey and the PublicKey derived alongside it.
type KeyPair struct {
	Private PrivateKey
	Public  PublicKey
}

// Gen draws fresh randomness from rng and derives a key pair for the given
// parameters. It retries only the inversion of g in R3 (roughly a third of
// R3 elements are singular, so this loop terminates quickly in practice);
// a failure to invert f in Rq is treated as an internal error since that
// should not happen for a well-formed short polynomial and these
// parameters.
func Gen(p params.Parameters, rng sampling.PRNG) (*KeyPair, error) {
	f, err := random.Short(rng, p.P(), p.W())
	if err != nil {
		return nil, fmt.Errorf("ntrulp/keypair: sampling f: %w", err)
	}

	for {
		gCoeffs, err := random.Small(rng, p.P())
		if err != nil {
			return nil, fmt.Errorf("ntrulp/keypair: sampling g: %w", err)
		}
		g := &ring.R3{P: p.P(), Coeffs: gCoeffs}

		gInv, err := g.Recip()
		if err != nil {
			continue // g is singular in R3; redraw.
		}

		return deriveFromSecrets(p, &ring.R3{P: p.P(), Coeffs: f}, g, gInv)
	}
}

// GenFromSeed derives a key pair from caller-supplied f and g, rather than
// fresh randomness. It exists for the deterministic test vectors published
// alongside the reference implementation, where f and g are fixed inputs
// rather than drawn on the fly.
func GenFromSeed(p params.Parameters, f, g *ring.R3) (*KeyPair, error) {
	gInv, err := g.Recip()
	if err != nil {
		return nil, fmt.Errorf("ntrulp/keypair: g has no inverse in R3: %w", err)
	}
	return deriveFromSecrets(p, f, g, gInv)
}

func deriveFromSecrets(p params.Parameters, f, g, gInv *ring.R3) (*KeyPair, error) {
	fRq := toRq(f, p)

	fInv, err := fRq.Recip()
	if err != nil {
		// Surfaced as an internal error: an honestly-drawn short f should
		// always be invertible modulo q for well-formed parameters.
		return nil, fmt.Errorf("ntrulp/keypair: f has no inverse in Rq: %w", ring.ErrNoInverseRq)
	}

	h := fInv.MultR3(g).MultInt(p.Inv3())

	return &KeyPair{
		Private: PrivateKey{F: f, GInv: gInv, W: p.W()},
		Public:  PublicKey{H: h},
	}, nil
}

func toRq(r *ring.R3, p params.Parameters) *ring.Rq {
	out := ring.NewRq(p.P(), int32(p.Q()), p.Q12())
	for i, c := range r.Coeffs {
		out.Coeffs[i] = int32(c)
	}
	return out
}

// Verify checks the NTRU Prime key-pair identity: 3*(h*f) reduced mod q,
// then viewed mod 3 and multiplied by g_inv, must equal the constant
// polynomial 1.
func (kp *KeyPair) Verify(p params.Parameters) bool {
	a := kp.Public.H.MultR3(kp.Private.F).MultInt(3)
	aR3 := a.R3FromRq()
	b := ring.Mult(aR3, kp.Private.GInv)

	if b.Coeffs[0] != 1 {
		return false
	}
	for _, c := range b.Coeffs[1:] {
		if c != 0 {
			return false
		}
	}
	return true
}
