package ring

import "golang.org/x/exp/constraints"

// AbsInt returns the absolute value of a signed integer of any width. The
// chunker's split loop uses it to sum coefficient magnitudes; being generic,
// it serves int8, int16 or int32 callers alike.
func AbsInt[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
