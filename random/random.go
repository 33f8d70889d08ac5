// Package random builds the distributions NTRU Prime needs -- uniform
// ternary coefficients, fixed-weight short polynomials, and seeded
// permutations -- on top of the sampling.PRNG abstraction, the way the
// reference lattice-cryptography codebase layers its ternary and sparse
// samplers over a generic PRNG rather than reading raw bytes inline.
package random

import (
	"encoding/binary"
	"fmt"

	"github.com/zebra-sh/ntrulp/sampling"
)

// Small draws a length-n vector with each coefficient independently
// uniform over {-1, 0, 1}. Two random bits are drawn per coefficient and
// rejected on the (1-in-4) out-of-range value 3, mirroring the reference
// ternary sampler's rejection-and-retry loop.
func Small(p sampling.PRNG, n int) ([]int8, error) {
	out := make([]int8, n)
	buf := make([]byte, 256)
	bufPos := len(buf)

	nextByte := func() (byte, error) {
		if bufPos == len(buf) {
			if _, err := p.Read(buf); err != nil {
				return 0, err
			}
			bufPos = 0
		}
		b := buf[bufPos]
		bufPos++
		return b, nil
	}

	for i := 0; i < n; {
		b, err := nextByte()
		if err != nil {
			return nil, err
		}
		for shift := 0; shift < 8 && i < n; shift += 2 {
			v := (b >> uint(shift)) & 0x3
			if v == 3 {
				continue // reject
			}
			out[i] = int8(v) - 1
			i++
		}
	}
	return out, nil
}

// Short draws a length-n vector with exactly w non-zero coefficients and
// random signs, using the sort-based oblivious technique: tag every
// position with a fresh random 32-bit word, reserve the low two bits of w
// of those words to mark "non-zero, randomly signed" and the rest to mark
// "zero", then route every tag to its final position with a fixed
// comparator network (oddEvenMergeSort) instead of a data-dependent
// shuffle. Every comparator in the network fires unconditionally and
// swaps via a branchless mask (minmaxU32), so neither the comparison
// outcomes nor the resulting permutation are exposed through branching on
// secret tag bits -- unlike a Fisher-Yates shuffle, whose swap targets are
// drawn from secret-influenced state when the shuffled values are secret.
// This is the only sampler keypair.Gen uses to draw the secret f, which is
// exactly the case a plain shuffle is unsuited for; see fisherYatesShuffle.
func Short(p sampling.PRNG, n, w int) ([]int8, error) {
	if w > n {
		return nil, fmt.Errorf("ntrulp/random: weight %d exceeds length %d", w, n)
	}
	// The sorting network works on power-of-two lengths, so the tag array
	// is padded up to one. Padding tags hold 0x7fffffff, the largest value
	// in minmaxU32's signed order and never equal to a marked tag (those end
	// in binary 00, 10 or 01), so they all sort past the first n slots.
	size := 1
	for size < n {
		size *= 2
	}
	tags := make([]uint32, size)
	for i := n; i < size; i++ {
		tags[i] = 0x7fffffff
	}
	var buf [4]byte
	for i := 0; i < n; i++ {
		if _, err := p.Read(buf[:]); err != nil {
			return nil, err
		}
		tags[i] = binary.LittleEndian.Uint32(buf[:])
	}
	// Tags 0..w-1 get bit0 cleared: after sorting, (tag&3) is 0 or 2
	// depending on the untouched bit1, decoding to -1 or +1. Tags w..n-1
	// are forced to the "01" pattern, decoding to 0. The marking is set
	// before the sort, not after, so the network's comparisons never
	// reveal which original index fed which mark.
	for i := 0; i < w; i++ {
		tags[i] &^= 1
	}
	for i := w; i < n; i++ {
		tags[i] = (tags[i] &^ 3) | 1
	}
	oddEvenMergeSort(tags, 0, size)

	out := make([]int8, n)
	for i, t := range tags[:n] {
		out[i] = int8(t&3) - 1
	}
	return out, nil
}

// RandomSign draws one bit from p and maps it to {-1, +1}.
func RandomSign(p sampling.PRNG) (int8, error) {
	var b [1]byte
	if _, err := p.Read(b[:]); err != nil {
		return 0, err
	}
	if b[0]&1 == 0 {
		return 1, nil
	}
	return -1, nil
}

// ShuffleArray permutes arr in place, deterministically, keyed by seed. It
// is the chunker's mechanism for hiding a plaintext's payload/pad boundary:
// every chunk is shuffled with a distinct derived seed so the boundary is
// not fixed to a known coefficient position.
func ShuffleArray(arr []int8, seed uint64) error {
	prng, err := sampling.NewKeyedPRNGFromSeed(seed)
	if err != nil {
		return err
	}
	return fisherYatesShuffle(arr, prng)
}

// UnshuffleArray inverts ShuffleArray: given the same seed, it replays the
// same sequence of swaps and applies them in reverse, so
// UnshuffleArray(ShuffleArray(arr, seed), seed) == arr.
func UnshuffleArray(arr []int8, seed uint64) error {
	prng, err := sampling.NewKeyedPRNGFromSeed(seed)
	if err != nil {
		return err
	}
	n := len(arr)
	swaps := make([][2]int, max(n-1, 0))
	for i := n - 1; i > 0; i-- {
		j, err := boundedIndex(prng, i+1)
		if err != nil {
			return err
		}
		swaps[i-1] = [2]int{i, j}
	}
	// Forward shuffling applies swaps for i = n-1, n-2, ..., 1 in that
	// order; undoing it means replaying the same swaps (each is its own
	// inverse) in the opposite order: i = 1, 2, ..., n-1.
	for k := 0; k < len(swaps); k++ {
		i, j := swaps[k][0], swaps[k][1]
		arr[i], arr[j] = arr[j], arr[i]
	}
	return nil
}

// fisherYatesShuffle performs a standard in-place Fisher-Yates shuffle,
// drawing each bounded index from p via rejection sampling. Each swap
// target is chosen by a data-dependent branch inside boundedIndex's
// rejection loop and by the loop bound itself, so this is acceptable only
// when arr holds non-secret values -- the chunker's plaintext/pad
// rearrangement (ShuffleArray/UnshuffleArray), never a secret key
// component. Secret sampling uses Short's oblivious sorting network
// instead.
func fisherYatesShuffle(arr []int8, p sampling.PRNG) error {
	for i := len(arr) - 1; i > 0; i-- {
		j, err := boundedIndex(p, i+1)
		if err != nil {
			return err
		}
		arr[i], arr[j] = arr[j], arr[i]
	}
	return nil
}

// oddEvenMergeSort sorts a[lo:lo+n] into ascending order, comparing the
// words as signed 32-bit values (see minmaxU32), using Batcher's odd-even
// merge sorting network, a comparator sequence determined entirely by lo
// and n (never by the data being sorted): split into two halves, sort each
// recursively, then merge with oddEvenMerge. n must be a power of two; for
// other lengths the merge schedule indexes past a[lo+n-1].
func oddEvenMergeSort(a []uint32, lo, n int) {
	if n > 1 {
		m := n / 2
		oddEvenMergeSort(a, lo, m)
		oddEvenMergeSort(a, lo+m, n-m)
		oddEvenMerge(a, lo, n, 1)
	}
}

// oddEvenMerge merges the two interleaved-by-stride-r halves of a[lo:lo+n]
// (each already sorted at stride r) into a single run sorted at stride r/2,
// via the standard recursive odd-even merge comparator schedule.
func oddEvenMerge(a []uint32, lo, n, r int) {
	step := r * 2
	if step < n {
		oddEvenMerge(a, lo, n, step)
		oddEvenMerge(a, lo+r, n-r, step)
		for i := lo + r; i+r < lo+n; i += step {
			minmaxU32(a, i, i+r)
		}
	} else {
		minmaxU32(a, lo, lo+r)
	}
}

// minmaxU32 places the smaller of a[i], a[j] into a[i] and the larger into
// a[j], without branching on either value: c is computed to be all-ones
// when int32(a[i]) > int32(a[j]) and all-zero otherwise via djb's classic
// signed compare-and-swap bit trick, then used as an XOR mask to
// conditionally swap. The order is therefore signed: 0x80000000 sorts
// before 1.
func minmaxU32(a []uint32, i, j int) {
	x, y := a[i], a[j]
	xy := x ^ y
	c := y - x
	c ^= xy & (c ^ y)
	c >>= 31
	c = -c
	c &= xy
	a[i] = x ^ c
	a[j] = y ^ c
}

// boundedIndex draws a uniform index in [0, n) from p via rejection
// sampling over 32-bit draws, avoiding modulo bias.
func boundedIndex(p sampling.PRNG, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("ntrulp/random: non-positive bound %d", n)
	}
	limit := uint32(n)
	threshold := (^uint32(0) - (^uint32(0) % limit))
	var buf [4]byte
	for {
		if _, err := p.Read(buf[:]); err != nil {
			return 0, err
		}
		v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		if v < threshold {
			return int(v % limit), nil
		}
	}
}
