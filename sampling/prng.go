// Package sampling provides the two sources of randomness the rest of the
// toolkit draws on: a non-deterministic wrapper around crypto/rand for key
// generation, and a deterministic, seed-keyed stream -- built the same way
// the reference lattice-cryptography codebase's collective-randomness
// generator is, on a blake2b ratchet -- for the chunker's reproducible
// per-chunk permutations and for seeded test vectors.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// PRNG is the minimal interface every sampler in this toolkit consumes.
// It mirrors io.Reader deliberately: any io.Reader satisfies it.
type PRNG interface {
	Read(p []byte) (int, error)
}

// CryptoRandPRNG wraps crypto/rand.Reader. It carries no state of its own,
// so a single value may be shared freely across goroutines.
type CryptoRandPRNG struct{}

// NewCryptoRandPRNG returns a PRNG backed by the operating system's
// cryptographically secure random source.
func NewCryptoRandPRNG() CryptoRandPRNG { return CryptoRandPRNG{} }

// Read fills p with cryptographically strong random bytes.
func (CryptoRandPRNG) Read(p []byte) (int, error) {
	return rand.Read(p)
}

// KeyedPRNG is a deterministic stream keyed by a seed: identical seeds
// always produce identical output. It is NOT safe for concurrent use --
// each goroutine that needs reproducible randomness should own its own
// instance, the same restriction the reference codebase documents on its
// level-scoped samplers.
type KeyedPRNG struct {
	clock  uint64
	state  []byte // blake2b digest input, reset via Seed
	hash   hash.Hash
	buffer []byte
}

// NewKeyedPRNG creates a deterministic PRNG over a blake2b-512 hash keyed
// with key (pass nil for an unkeyed hash); its input is supplied afterwards
// through Seed. Two KeyedPRNGs constructed with the same key and then
// Seed-ed identically produce identical streams.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	h, err := blake2b.New512(key)
	if err != nil {
		return nil, err
	}
	return &KeyedPRNG{hash: h}, nil
}

// NewKeyedPRNGFromSeed derives a KeyedPRNG directly from a 64-bit seed, the
// form the chunker uses: the hash is unkeyed, and the seed, encoded as 8
// little-endian bytes, is the initial digest input passed to Seed.
func NewKeyedPRNGFromSeed(seed uint64) (*KeyedPRNG, error) {
	p, err := NewKeyedPRNG(nil)
	if err != nil {
		return nil, err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	p.Seed(buf[:])
	return p, nil
}

// Seed resets the ratchet's clock to zero and feeds seed into the digest.
func (p *KeyedPRNG) Seed(seed []byte) {
	p.hash.Reset()
	p.state = append(p.state[:0], seed...)
	p.hash.Write(seed)
	p.clock = 0
	p.buffer = nil
}

// Clock advances the ratchet one step: it hashes the current state, feeds
// the left half of the digest back into the hash (so the next Clock call
// depends on it), and returns the right half as fresh output.
func (p *KeyedPRNG) Clock() []byte {
	sum := p.hash.Sum(nil)
	p.hash.Write(sum[:32])
	p.clock++
	out := make([]byte, 32)
	copy(out, sum[32:])
	return out
}

// GetClock returns the number of Clock steps taken since the last Seed.
func (p *KeyedPRNG) GetClock() uint64 { return p.clock }

// Read fills p with output drawn from the ratchet, buffering any leftover
// bytes from a partially consumed Clock() block between calls.
func (p *KeyedPRNG) Read(out []byte) (int, error) {
	n := 0
	for n < len(out) {
		if len(p.buffer) == 0 {
			p.buffer = p.Clock()
		}
		c := copy(out[n:], p.buffer)
		p.buffer = p.buffer[c:]
		n += c
	}
	return n, nil
}

// Uint64 draws eight bytes from the stream and interprets them as a
// little-endian uint64.
func Uint64(p PRNG) (uint64, error) {
	var buf [8]byte
	if _, err := p.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
