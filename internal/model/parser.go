package model

import (
	"bytes"
	"encoding/json"
	"math"
	"os"

	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// Skipped operator kinds: graph inputs and outputs compile to nothing.
const (
	OpFeed  = "feed"
	OpFetch = "fetch"
)

// Definition is the JSON model description: the operator list in declaration order and
// the flat variable list.
type Definition struct {
	Ops  []OpDef  `json:"ops"`
	Vars []VarDef `json:"vars"`
}

// OpDef declares one operator.
type OpDef struct {
	Type     string              `json:"type"`
	Inputs   map[string][]string `json:"inputs"`
	Outputs  map[string][]string `json:"outputs"`
	Attrs    map[string]any      `json:"attrs,omitempty"`
	SubAttrs []map[string]any    `json:"subAttrs,omitempty"`
	IsPacked bool                `json:"isPacked,omitempty"`
}

// VarDef declares one variable. Data is present only for persisted weights.
type VarDef struct {
	Name        string    `json:"name"`
	Shape       []int     `json:"shape"`
	Data        []float32 `json:"data,omitempty"`
	Persistable bool      `json:"persistable,omitempty"`
}

// ParseFile reads and parses a JSON model file.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file %q", path)
	}
	return Parse(data)
}

// Parse decodes a JSON model. Attribute numbers are normalized: integral values become
// int, others float64, and arrays holding only numbers become []int or []float64.
func Parse(data []byte) (*Definition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "failed to decode model")
	}
	for i := range def.Ops {
		op := &def.Ops[i]
		if op.Type == "" {
			return nil, errors.Errorf("op %d has no type", i)
		}
		op.Attrs = normalizeMap(op.Attrs)
		for j := range op.SubAttrs {
			op.SubAttrs[j] = normalizeMap(op.SubAttrs[j])
		}
	}
	for i, v := range def.Vars {
		if v.Name == "" {
			return nil, errors.Errorf("var %d has no name", i)
		}
	}
	return &def, nil
}

// OperatorSpecs converts the compiled operators (feed and fetch excluded) to specs.
func (d *Definition) OperatorSpecs() []*opfactory.OperatorSpec {
	specs := make([]*opfactory.OperatorSpec, 0, len(d.Ops))
	for i := range d.Ops {
		op := &d.Ops[i]
		if op.Type == OpFeed || op.Type == OpFetch {
			continue
		}
		spec := &opfactory.OperatorSpec{
			Type:     op.Type,
			Inputs:   op.Inputs,
			Outputs:  op.Outputs,
			Attrs:    opfactory.Attrs(op.Attrs),
			IsPacked: op.IsPacked,
		}
		for _, sub := range op.SubAttrs {
			spec.SubAttrs = append(spec.SubAttrs, opfactory.Attrs(sub))
		}
		specs = append(specs, spec)
	}
	return specs
}

// Variables converts the variable list to catalog variables.
func (d *Definition) Variables() []catalog.Variable {
	vars := make([]catalog.Variable, len(d.Vars))
	for i, v := range d.Vars {
		vars[i] = catalog.Variable{
			Name:        v.Name,
			Shape:       tensor.Shape(v.Shape).Clone(),
			Data:        v.Data,
			Persistable: v.Persistable,
		}
	}
	return vars
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		return normalizeNumber(x)
	case map[string]any:
		return normalizeMap(x)
	case []any:
		return normalizeList(x)
	}
	return v
}

func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
		return int(i)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// normalizeList turns numeric arrays into []int or []float64; empty and mixed arrays are
// kept as []any with normalized elements.
func normalizeList(list []any) any {
	if len(list) == 0 {
		return list
	}
	values := make([]any, len(list))
	integral, numeric := true, true
	for i, e := range list {
		values[i] = normalize(e)
		switch values[i].(type) {
		case int:
		case float64:
			integral = false
		default:
			numeric = false
		}
	}
	switch {
	case numeric && integral:
		ints := make([]int, len(values))
		for i, e := range values {
			ints[i] = e.(int)
		}
		return ints
	case numeric:
		floats := make([]float64, len(values))
		for i, e := range values {
			switch n := e.(type) {
			case int:
				floats[i] = float64(n)
			case float64:
				floats[i] = n
			}
		}
		return floats
	}
	return values
}
