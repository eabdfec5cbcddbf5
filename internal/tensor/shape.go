package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxRank is the number of logical axes GPU texture addressing works with.
// Every tensor handed to a program is padded to this rank.
const MaxRank = 4

// ErrRankExceeded is returned when a shape cannot be canonicalized to MaxRank axes.
var ErrRankExceeded = errors.New("rank exceeds 4")

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Pad4 returns the canonical 4D form of the shape, left-padded with 1s:
//
//	[7]       → [1, 1, 1, 7]
//	[3, 5]    → [1, 1, 3, 5]
//	[2, 3, 4] → [1, 2, 3, 4]
//
// Shapes with more than four axes can't be addressed by a texture and return ErrRankExceeded.
func (s Shape) Pad4() (Shape, error) {
	if len(s) > MaxRank {
		return nil, errors.Wrapf(ErrRankExceeded, "cannot canonicalize shape %v", []int(s))
	}
	padded := Shape{1, 1, 1, 1}
	copy(padded[MaxRank-len(s):], s)
	return padded, nil
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}
