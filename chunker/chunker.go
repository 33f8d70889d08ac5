// Package chunker adapts an arbitrary ternary bytestream to the fixed-weight
// constraint of R3 plaintexts, splitting it into a sequence of weight-w,
// length-p chunks and merging them back, the way the reference
// lattice-cryptography codebase's encoder sits between the wire encoding and
// the cipher without owning either.
package chunker

import (
	"fmt"

	"github.com/zebra-sh/ntrulp/params"
	"github.com/zebra-sh/ntrulp/random"
	"github.com/zebra-sh/ntrulp/ring"
	"github.com/zebra-sh/ntrulp/sampling"
)

// SplitWChunks partitions input into a sequence of length-p, weight-w
// chunks. Each chunk holds as much of input's payload as fits within an
// absolute-value budget of LIMIT = w - difficult (and stops early if the
// p slots would otherwise run out before the padding), padded out to weight w
// with random signs, then shuffled with a seed derived from a randomly
// drawn base seed so the payload/pad boundary is not fixed to a known
// coefficient position. sizes[k] records how many of chunk k's p slots (pre
// shuffle) held real payload, which MergeWChunks needs to strip the pad back
// off.
func SplitWChunks(input []int8, p params.Parameters, rng sampling.PRNG) (chunks [][]int8, sizes []int, baseSeed uint64, err error) {
	limit := p.W() - p.Difficult()

	originSeed, err := sampling.Uint64(rng)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("ntrulp/chunker: drawing base seed: %w", err)
	}
	// Matches the reference encoder's origin-seed derivation: the drawn
	// seed is offset by len(input)/p (the number of whole p-length blocks
	// in the input, not the number of chunks produced).
	originSeed -= uint64(len(input) / p.P())

	seed := originSeed
	inputPtr := 0

	for inputPtr != len(input) {
		part := make([]int8, p.P())
		partPtr := 0
		sum := 0

		// The last condition keeps room for the w-sum padding signs, so the
		// chunk never outgrows its p slots on zero-heavy input.
		for sum != limit && inputPtr != len(input) && partPtr+p.W()-sum < p.P() {
			v := input[inputPtr]
			sum += int(ring.AbsInt(v))
			inputPtr++
			part[partPtr] = v
			partPtr++
		}

		sizes = append(sizes, partPtr)

		for sum != p.W() {
			sign, err := random.RandomSign(rng)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("ntrulp/chunker: padding chunk: %w", err)
			}
			part[partPtr] = sign
			sum++
			partPtr++
		}

		if err := random.ShuffleArray(part, seed); err != nil {
			return nil, nil, 0, fmt.Errorf("ntrulp/chunker: shuffling chunk: %w", err)
		}
		chunks = append(chunks, part)
		seed++
	}

	return chunks, sizes, originSeed, nil
}

// MergeWChunks inverts SplitWChunks: it unshuffles each chunk with its
// derived seed and concatenates the first sizes[k] coefficients of each,
// discarding the padding SplitWChunks added.
func MergeWChunks(chunks [][]int8, sizes []int, baseSeed uint64) ([]int8, error) {
	if len(chunks) != len(sizes) {
		return nil, fmt.Errorf("ntrulp/chunker: %d chunks but %d sizes", len(chunks), len(sizes))
	}

	var out []int8
	for i, chunk := range chunks {
		part := append([]int8{}, chunk...)
		seed := baseSeed + uint64(i)
		if err := random.UnshuffleArray(part, seed); err != nil {
			return nil, fmt.Errorf("ntrulp/chunker: unshuffling chunk %d: %w", i, err)
		}
		if sizes[i] > len(part) {
			return nil, fmt.Errorf("ntrulp/chunker: chunk %d size %d exceeds chunk length %d", i, sizes[i], len(part))
		}
		out = append(out, part[:sizes[i]]...)
	}
	return out, nil
}
