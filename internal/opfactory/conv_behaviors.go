package opfactory

import (
	"slices"

	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// Program name suffixes selecting specialized shader variants.
const (
	DepthwiseSuffix = "_depthwise"
	MaxPoolSuffix   = "_max"
)

// zeroBiasName names the bias synthesized for convolutions declared without one.
const zeroBiasName = "conv_zero_bias"

// paddingCompat rewrites the legacy [0, 1] paddings encoding to [0, 0].
func paddingCompat(op *OpData) error {
	paddings, ok := lookupInts(op.Attrs, "paddings")
	if !ok {
		return nil
	}
	if slices.Equal(paddings, []int{0, 1}) {
		op.Attrs["paddings"] = []int{0, 0}
	}
	return nil
}

// globalPoolingAdapt sets ksize to the spatial extent of the input for global pooling.
func globalPoolingAdapt(op *OpData) error {
	if !GetAttrBool(op.Attrs, "global_pooling", false) {
		return nil
	}
	origin, ok := op.Tensor(RoleOrigin)
	if !ok {
		return nil
	}
	rank := len(origin.Shape)
	if rank <= 2 {
		return nil
	}
	op.Attrs["ksize"] = []int{origin.Shape[rank-2], origin.Shape[rank-1]}
	return nil
}

// fuseAttributes replaces attrs with the left-to-right merge of the fused ops' attributes.
func fuseAttributes(op *OpData) error {
	op.Attrs = mergeAttrs(op.SubAttrs...)
	return nil
}

// separableConvDetect selects the depthwise program when the filter is [groups, 1, kh, kw],
// and synthesizes a zero bias sized to the output channels when none is bound.
func separableConvDetect(op *OpData) error {
	groups, hasGroups := lookupInt(op.Attrs, "groups")
	if filter, ok := op.Tensor(RoleFilter); ok && hasGroups && len(filter.Shape) >= 2 {
		if filter.Shape[0] == groups && filter.Shape[1] == 1 {
			op.Name += DepthwiseSuffix
		}
	}

	if _, hasBias := op.Tensor(RoleBias); hasBias {
		return nil
	}
	out, err := op.mustTensor(RoleOut)
	if err != nil {
		return errors.WithMessage(err, "cannot size the zero bias")
	}
	canonical, err := out.Shape.Pad4()
	if err != nil {
		return err
	}
	channels := canonical[1]
	op.Tensors = append(op.Tensors, &Binding{
		Name:   zeroBiasName,
		Role:   RoleBias,
		Shape:  tensor.Shape{channels},
		Data:   make([]float32, channels),
		Slot:   catalog.NoSlot,
		Source: SourceSynthetic,
	})
	return nil
}

// conv2dVectorizeHint splits the filter input channels into a multiple of four and a
// remainder so the shader can read four channels at a time.
func conv2dVectorizeHint(op *OpData) error {
	filter, err := op.mustTensor(RoleFilter)
	if err != nil {
		return err
	}
	if len(filter.Shape) < 2 {
		return errors.Wrapf(ErrInvalidAttr, "filter shape %v has no input channel axis", filter.Shape)
	}
	inChannels := filter.Shape[1]
	op.Attrs["filter_nearest_vec4"] = inChannels / 4 * 4
	op.Attrs["filter_remainder_vec4"] = inChannels % 4
	return nil
}

// poolingTypeEncode turns the pooling_type string into an integer flag and selects the
// max-pooling program.
func poolingTypeEncode(op *OpData) error {
	if GetAttrString(op.Attrs, "pooling_type", "") == "max" {
		op.Attrs["pooling_type"] = 1
		op.Name += MaxPoolSuffix
		return nil
	}
	op.Attrs["pooling_type"] = 0
	return nil
}
