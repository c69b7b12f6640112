package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every conversion error.
var ErrOverflow = errors.New("integer overflow")

// IntToUint32 converts a non-negative int to uint32.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// MustHandle converts the length of an arena to the handle of its next
// element. Handles are uint32, so an arena is limited to 2^32-1 elements;
// exceeding that is a capacity error the caller cannot recover from.
func MustHandle(n int) uint32 {
	h, err := IntToUint32(n)
	if err != nil || h == math.MaxUint32 {
		panic(fmt.Errorf("hitree: handle space exhausted at %d elements: %w", n, ErrOverflow))
	}
	return h
}
