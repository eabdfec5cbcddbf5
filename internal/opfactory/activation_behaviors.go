package opfactory

import (
	"strings"

	"github.com/pkg/errors"
)

// Shader activation modes, written to the "active_function" parameter.
const (
	ActivePRelu     = "prelu"
	ActiveReLU6     = "relu6"
	ActiveLeakyReLU = "leakyRelu"
)

// reluProgram is the shader family that implements every ReLU-like activation.
const reluProgram = "relu"

// FusionPattern describes a fused operator kind: a fixed prefix naming the fused ops,
// followed by "-" and an optional activation suffix.
type FusionPattern struct {
	Prefix string
	// Activations maps the suffix after Prefix+"-" to the activation it selects.
	Activations map[string]ActivationRewrite
}

// ActivationRewrite writes the shader activation mode for one activation kind.
type ActivationRewrite struct {
	Function string // Value of "active_function".
	// ValueAttr names the attribute copied to "multi_value"; empty means Value is used.
	ValueAttr string
	Value     any
}

// fusionPatterns is the audited list of fused operator kinds and the activations that
// may trail them.
var fusionPatterns = []FusionPattern{
	{
		Prefix: "conv2d-elementwise_add",
		Activations: map[string]ActivationRewrite{
			"leaky_relu": {Function: ActiveLeakyReLU, ValueAttr: "alpha"},
		},
	},
}

// FusionPatterns returns a copy of the fused operator patterns known to the compiler.
func FusionPatterns() []FusionPattern {
	out := make([]FusionPattern, len(fusionPatterns))
	copy(out, fusionPatterns)
	return out
}

func (a ActivationRewrite) write(op *OpData) error {
	value := a.Value
	if a.ValueAttr != "" {
		v, ok := op.Attrs[a.ValueAttr]
		if !ok {
			return errors.Wrapf(ErrInvalidAttr, "%s activation requires attribute %q", a.Function, a.ValueAttr)
		}
		value = v
	}
	op.Params["multi_value"] = value
	op.Params["active_function"] = a.Function
	return nil
}

func activationPRelu(op *OpData) error {
	return ActivationRewrite{Function: ActivePRelu, Value: "0.0"}.write(op)
}

func activationReLU6(op *OpData) error {
	return ActivationRewrite{Function: ActiveReLU6, ValueAttr: "threshold"}.write(op)
}

// activationLeakyReLU also renames the operator so the single relu shader serves it.
func activationLeakyReLU(op *OpData) error {
	if err := (ActivationRewrite{Function: ActiveLeakyReLU, ValueAttr: "alpha"}).write(op); err != nil {
		return err
	}
	op.Name = reluProgram
	return nil
}

// fusedActivationRewrite applies the activation named by a fused operator's suffix.
func fusedActivationRewrite(op *OpData) error {
	for _, p := range fusionPatterns {
		suffix, ok := strings.CutPrefix(op.Name, p.Prefix+"-")
		if !ok {
			continue
		}
		if rewrite, known := p.Activations[suffix]; known {
			return rewrite.write(op)
		}
		return nil
	}
	return nil
}
