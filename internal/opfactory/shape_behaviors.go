package opfactory

import (
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// maxPermutation is the longest axis permutation a texture-addressed program can apply.
const maxPermutation = tensor.MaxRank

// reshapeInfer resolves the new_shape attribute against the input shape and writes it as
// the output shape. A 0 copies the input extent at the same position; one -1 is solved so
// the element count is preserved.
func reshapeInfer(op *OpData) error {
	origin, err := op.mustTensor(RoleOrigin)
	if err != nil {
		return err
	}
	out, err := op.mustTensor(RoleOut)
	if err != nil {
		return err
	}
	target, ok := lookupInts(op.Attrs, "new_shape")
	if !ok {
		return errors.Wrapf(ErrInvalidAttr, "new_shape missing or not an integer array: %v", op.Attrs["new_shape"])
	}
	if out.Shape.Equal(target) {
		return nil
	}

	resolved, err := inferReshape(origin.Shape, target)
	if err != nil {
		return err
	}
	op.Attrs["new_shape"] = []int(resolved.Clone())
	out.Shape = resolved
	return nil
}

// inferReshape resolves a reshape target with 0 (copy) and -1 (wildcard) entries.
func inferReshape(input tensor.Shape, target []int) (tensor.Shape, error) {
	total := input.NumElements()
	resolved := make(tensor.Shape, len(target))
	wildcard := -1
	known := 1
	for i, dim := range target {
		switch {
		case dim == 0:
			if i >= len(input) {
				return nil, errors.Wrapf(ErrInvalidAttr,
					"new_shape %v copies axis %d, but input %v has rank %d", target, i, input, len(input))
			}
			dim = input[i]
		case dim == -1:
			if wildcard != -1 {
				return nil, errors.Wrapf(ErrInvalidAttr, "new_shape %v has more than one -1", target)
			}
			wildcard = i
			continue
		case dim < 0:
			return nil, errors.Wrapf(ErrInvalidAttr, "new_shape %v has invalid dimension %d", target, dim)
		}
		resolved[i] = dim
		known *= dim
	}

	if wildcard != -1 {
		if known == 0 || total%known != 0 {
			return nil, errors.Wrapf(ErrInvalidAttr,
				"cannot reshape %v (%d elements) to %v", input, total, target)
		}
		resolved[wildcard] = total / known
		return resolved, nil
	}
	if known != total {
		return nil, errors.Wrapf(ErrInvalidAttr,
			"cannot reshape %v (%d elements) to %v (%d elements)", input, total, target, known)
	}
	return resolved, nil
}

// permutationCompute stores the inverse of the axis permutation as perm_0..perm_3 and its
// length as perm_size.
func permutationCompute(op *OpData) error {
	perm, ok := lookupInts(op.Attrs, "axis")
	if !ok {
		return errors.Wrapf(ErrInvalidAttr, "axis missing or not an integer array: %v", op.Attrs["axis"])
	}
	length := len(perm)
	if length > maxPermutation {
		return errors.Wrapf(ErrInvalidAttr, "axis length exceeds maximum length %d, got %d", maxPermutation, length)
	}
	inverse := make([]int, maxPermutation)
	for i, axis := range perm {
		if axis < 0 || axis >= length {
			return errors.Wrapf(ErrInvalidAttr, "axis %v: entry %d out of range [0, %d)", perm, axis, length)
		}
		inverse[axis] = i
	}
	for i, v := range inverse {
		op.Params[permKey(i)] = v
	}
	op.Params["perm_size"] = length
	return nil
}

func permKey(i int) string {
	return "perm_" + string(rune('0'+i))
}

// flattenTo2D collapses the first bound tensor with rank > 2 to the 2D matrix that matches
// its texture: [b*h, c*w] of the canonical [b, c, h, w].
func flattenTo2D(op *OpData) error {
	for _, b := range op.Tensors {
		if len(b.Shape) <= 2 {
			continue
		}
		canonical, err := b.Shape.Pad4()
		if err != nil {
			return errors.WithMessagef(err, "flatten %q", b.Name)
		}
		b.Shape = tensor.Shape{canonical[0] * canonical[2], canonical[1] * canonical[3]}
		return nil
	}
	return nil
}

// reshapeRoleAdapt prepares matrix multiplication: the higher-rank operand becomes the
// origin, and an origin of rank > 2 multiplied by a matrix is reshaped to a matrix.
func reshapeRoleAdapt(op *OpData) error {
	origin, err := op.mustTensor(RoleOrigin)
	if err != nil {
		return err
	}
	counter, err := op.mustTensor(RoleCounter)
	if err != nil {
		return err
	}
	if len(counter.Shape) > len(origin.Shape) {
		origin.Role, counter.Role = RoleCounter, RoleOrigin
		origin, counter = counter, origin
	}
	if len(origin.Shape) <= 2 || len(counter.Shape) != 2 {
		return nil
	}
	out, err := op.mustTensor(RoleOut)
	if err != nil {
		return err
	}
	shape, err := matrixReshape(origin.Shape, out.Shape)
	if err != nil {
		return err
	}
	origin.Shape = shape
	return nil
}

// matrixReshape collapses an NCHW tensor to the [rows, cols] matrix whose rows follow the
// output's first axis. A rank-1 output yields a single row.
func matrixReshape(input, out tensor.Shape) (tensor.Shape, error) {
	total := input.NumElements()
	if len(out) <= 1 {
		return tensor.Shape{1, total}, nil
	}
	rows := out[0]
	if rows <= 0 || total%rows != 0 {
		return nil, errors.Wrapf(ErrInvalidAttr,
			"cannot reshape %v (%d elements) into %d rows for output %v", input, total, rows, out)
	}
	return tensor.Shape{rows, total / rows}, nil
}
