package opfactory

import (
	"github.com/born-ml/opfactory/internal/tensor"
)

// buildShaderParams fills op.ShaderParams with one map per output tensor.
//
// The base map holds behavior-written params, then every attribute (attributes win on
// collisions), then the layout attributes of each input suffixed with its role. Each
// output gets a deep copy of the base plus its own layout attributes.
func buildShaderParams(op *OpData) {
	base := op.Params.Clone()
	if base == nil {
		base = make(Attrs)
	}
	for k, v := range op.Attrs {
		base[k] = cloneValue(v)
	}
	for _, in := range op.InputTensors {
		addLayoutAttrs(base, in)
	}

	op.ShaderParams = make([]Attrs, 0, len(op.OutputTensors))
	for _, out := range op.OutputTensors {
		params := base.Clone()
		addLayoutAttrs(params, out)
		op.ShaderParams = append(op.ShaderParams, params)
	}
}

func addLayoutAttrs(params Attrs, d *tensor.Descriptor) {
	attrs := d.Attrs()
	for _, name := range tensor.LayoutAttrs {
		params[name+"_"+d.Name] = attrs[name]
	}
}
