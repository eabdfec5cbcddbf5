package opfactory

import (
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// normalizeAxis turns a possibly negative axis into an index in [0, rank).
func normalizeAxis(axis, rank int) (int, error) {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return 0, errors.Wrapf(ErrInvalidAttr, "axis out of range for rank %d", rank)
	}
	return axis, nil
}

func requiredAxis(op *OpData) (int, error) {
	axis, ok := lookupInt(op.Attrs, "axis")
	if !ok {
		return 0, errors.Wrapf(ErrInvalidAttr, "axis missing or not an integer: %v", op.Attrs["axis"])
	}
	return axis, nil
}

// axisNormalize resolves axis against the origin shape and records the enumerated indices
// along it (target_value, target_length), its length (inputs_dim) and the axis remapped to
// the canonical 4D layout (dim).
func axisNormalize(op *OpData) error {
	origin, err := op.mustTensor(RoleOrigin)
	if err != nil {
		return err
	}
	raw, err := requiredAxis(op)
	if err != nil {
		return err
	}
	rank := len(origin.Shape)
	axis, err := normalizeAxis(raw, rank)
	if err != nil {
		return errors.WithMessagef(err, "axis %d, origin %v", raw, origin.Shape)
	}

	length := origin.Shape[axis]
	values := make([]int, length)
	for i := range values {
		values[i] = i
	}
	op.Attrs["target_length"] = length
	op.Attrs["target_value"] = values
	op.Attrs["inputs_dim"] = length
	op.Attrs["dim"] = tensor.MaxRank - rank + axis
	return nil
}

// axisNormalizeSecondary resolves axis against the counter shape and records its length.
func axisNormalizeSecondary(op *OpData) error {
	counter, err := op.mustTensor(RoleCounter)
	if err != nil {
		return err
	}
	raw, err := requiredAxis(op)
	if err != nil {
		return err
	}
	axis, err := normalizeAxis(raw, len(counter.Shape))
	if err != nil {
		return errors.WithMessagef(err, "axis %d, counter %v", raw, counter.Shape)
	}
	op.Attrs["append_num"] = counter.Shape[axis]
	return nil
}

// broadcastAxisResolve resolves the elementwise broadcast axis: -1 aligns the counter with
// the trailing axes of the origin; other values are remapped to the canonical 4D layout.
func broadcastAxisResolve(op *OpData) error {
	origin, err := op.mustTensor(RoleOrigin)
	if err != nil {
		return err
	}
	counter, err := op.mustTensor(RoleCounter)
	if err != nil {
		return err
	}
	axis, err := requiredAxis(op)
	if err != nil {
		return err
	}
	if axis == -1 {
		op.Attrs["axis"] = len(origin.Shape) - len(counter.Shape)
		return nil
	}
	op.Attrs["axis"] = tensor.MaxRank - len(counter.Shape) - axis
	return nil
}
