package opfactory

import (
	"github.com/pkg/errors"
)

// Behavior is one named transformation applied to an operator before program generation.
// The set is closed: apply dispatches with an exhaustive switch, and configuration refers
// to behaviors by name through ParseBehavior.
type Behavior int

// Behaviors, grouped by the operator families that use them.
const (
	BehaviorInvalid Behavior = iota

	// Convolution and pooling.
	BehaviorPaddingCompat
	BehaviorGlobalPoolingAdapt
	BehaviorSeparableConvDetect
	BehaviorConv2DVectorizeHint
	BehaviorPoolingTypeEncode
	BehaviorFuseAttributes

	// Shape manipulation.
	BehaviorReshapeInfer
	BehaviorPermutationCompute
	BehaviorFlattenTo2D
	BehaviorReshapeRoleAdapt

	// Activations.
	BehaviorActivationPRelu
	BehaviorActivationReLU6
	BehaviorActivationLeakyReLU
	BehaviorFusedActivationRewrite

	// Axes.
	BehaviorAxisNormalize
	BehaviorAxisNormalizeSecondary
	BehaviorBroadcastAxisResolve

	behaviorCount
)

var behaviorNames = [...]string{
	BehaviorInvalid:                "invalid",
	BehaviorPaddingCompat:          "paddingCompat",
	BehaviorGlobalPoolingAdapt:     "globalPoolingAdapt",
	BehaviorSeparableConvDetect:    "separableConvDetect",
	BehaviorConv2DVectorizeHint:    "conv2dVectorizeHint",
	BehaviorPoolingTypeEncode:      "poolingTypeEncode",
	BehaviorFuseAttributes:         "fuseAttributes",
	BehaviorReshapeInfer:           "reshapeInfer",
	BehaviorPermutationCompute:     "permutationCompute",
	BehaviorFlattenTo2D:            "flattenTo2D",
	BehaviorReshapeRoleAdapt:       "reshapeRoleAdapt",
	BehaviorActivationPRelu:        "activationPRelu",
	BehaviorActivationReLU6:        "activationReLU6",
	BehaviorActivationLeakyReLU:    "activationLeakyReLU",
	BehaviorFusedActivationRewrite: "fusedActivationRewrite",
	BehaviorAxisNormalize:          "axisNormalize",
	BehaviorAxisNormalizeSecondary: "axisNormalizeSecondary",
	BehaviorBroadcastAxisResolve:   "broadcastAxisResolve",
}

var behaviorsByName = func() map[string]Behavior {
	m := make(map[string]Behavior, behaviorCount)
	for b := BehaviorInvalid + 1; b < behaviorCount; b++ {
		m[behaviorNames[b]] = b
	}
	return m
}()

// String returns the configuration name of the behavior.
func (b Behavior) String() string {
	if b < 0 || b >= behaviorCount {
		return "Behavior(invalid)"
	}
	return behaviorNames[b]
}

// ParseBehavior returns the behavior with the given configuration name.
func ParseBehavior(name string) (Behavior, error) {
	b, ok := behaviorsByName[name]
	if !ok {
		return BehaviorInvalid, errors.Wrapf(ErrUnknownBehavior, "%q", name)
	}
	return b, nil
}

// AllBehaviors returns every valid behavior in declaration order.
func AllBehaviors() []Behavior {
	all := make([]Behavior, 0, behaviorCount-1)
	for b := BehaviorInvalid + 1; b < behaviorCount; b++ {
		all = append(all, b)
	}
	return all
}

// apply runs one behavior against the operator.
func apply(b Behavior, op *OpData) error {
	switch b {
	case BehaviorPaddingCompat:
		return paddingCompat(op)
	case BehaviorGlobalPoolingAdapt:
		return globalPoolingAdapt(op)
	case BehaviorSeparableConvDetect:
		return separableConvDetect(op)
	case BehaviorConv2DVectorizeHint:
		return conv2dVectorizeHint(op)
	case BehaviorPoolingTypeEncode:
		return poolingTypeEncode(op)
	case BehaviorFuseAttributes:
		return fuseAttributes(op)
	case BehaviorReshapeInfer:
		return reshapeInfer(op)
	case BehaviorPermutationCompute:
		return permutationCompute(op)
	case BehaviorFlattenTo2D:
		return flattenTo2D(op)
	case BehaviorReshapeRoleAdapt:
		return reshapeRoleAdapt(op)
	case BehaviorActivationPRelu:
		return activationPRelu(op)
	case BehaviorActivationReLU6:
		return activationReLU6(op)
	case BehaviorActivationLeakyReLU:
		return activationLeakyReLU(op)
	case BehaviorFusedActivationRewrite:
		return fusedActivationRewrite(op)
	case BehaviorAxisNormalize:
		return axisNormalize(op)
	case BehaviorAxisNormalizeSecondary:
		return axisNormalizeSecondary(op)
	case BehaviorBroadcastAxisResolve:
		return broadcastAxisResolve(op)
	case BehaviorInvalid, behaviorCount:
	}
	return errors.Wrapf(ErrUnknownBehavior, "%s", b)
}
