package opfactory

import (
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// OpData is the in-flight compiled unit of one operator instance.
type OpData struct {
	Name     string // Program name; behaviors may specialize it (e.g. "conv2d_depthwise").
	Type     string // Operator kind as declared.
	Layer    int
	Packed   bool
	Attrs    Attrs   // Working copy of the operator attributes.
	SubAttrs []Attrs // Attribute sets of fused ops.

	// Params holds values behaviors write straight into the shader parameters
	// (e.g. "perm_0", "active_function"). Attrs are copied over them.
	Params Attrs

	// Tensors is the ordered list of bound tensors, outputs first.
	Tensors []*Binding
	// Inputs and Outputs keep the raw structure: raw key → bindings. Roleless
	// outputs appear here with RoleNone but never in Tensors.
	Inputs  map[string][]*Binding
	Outputs map[string][]*Binding

	InputTensors  []*tensor.Descriptor
	OutputTensors []*tensor.Descriptor
	ShaderParams  []Attrs // One map per output tensor.
	Programs      []Program
	RenderData    any
}

func newOpData(spec *OperatorSpec, layer int) *OpData {
	op := &OpData{
		Name:    spec.Type,
		Type:    spec.Type,
		Layer:   layer,
		Packed:  spec.IsPacked,
		Attrs:   spec.Attrs.Clone(),
		Params:  make(Attrs),
		Inputs:  make(map[string][]*Binding),
		Outputs: make(map[string][]*Binding),
	}
	if op.Attrs == nil {
		op.Attrs = make(Attrs)
	}
	for _, sub := range spec.SubAttrs {
		op.SubAttrs = append(op.SubAttrs, sub.Clone())
	}
	return op
}

// Tensor returns the first bound tensor with the given role.
func (op *OpData) Tensor(role Role) (*Binding, bool) {
	for _, b := range op.Tensors {
		if b.Role == role {
			return b, true
		}
	}
	return nil, false
}

// mustTensor returns the first tensor with the role or an ErrMissingRole error.
func (op *OpData) mustTensor(role Role) (*Binding, error) {
	b, ok := op.Tensor(role)
	if !ok {
		return nil, errors.Wrapf(ErrMissingRole, "%q", role.String())
	}
	return b, nil
}
