package model

import (
	"maps"
	"slices"

	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrOrder is returned by VerifyOrder for operators that read a later operator's output.
var ErrOrder = errors.New("operator reads a variable produced later")

// Model is a loaded model ready for compilation.
type Model struct {
	backend     opfactory.ProgramBackend
	opts        LoadOptions
	ops         []*opfactory.OperatorSpec
	vars        []Variable
	inputNames  []string
	outputNames []string
}

// Variable is a model variable as declared.
type Variable = catalog.Variable

// Compiled is the result of compiling every operator of a model.
type Compiled struct {
	Ops     []*opfactory.OpData
	Catalog *catalog.Catalog // Variables with every inferred shape committed.
}

// Programs returns the number of programs across all operators.
func (c *Compiled) Programs() int {
	n := 0
	for _, op := range c.Ops {
		n += len(op.Programs)
	}
	return n
}

// InputNames returns the variables written by feed operators.
func (m *Model) InputNames() []string {
	return m.inputNames
}

// OutputNames returns the variables read by fetch operators.
func (m *Model) OutputNames() []string {
	return m.outputNames
}

// Ops returns the compiled operator specs in declaration order.
func (m *Model) Ops() []*opfactory.OperatorSpec {
	return m.ops
}

// Variables returns the declared variables.
func (m *Model) Variables() []Variable {
	return m.vars
}

// WeightBytes returns the size of the persisted weight data in bytes.
func (m *Model) WeightBytes() uint64 {
	var n uint64
	for _, v := range m.vars {
		n += uint64(len(v.Data)) * 4
	}
	return n
}

// Compile compiles every operator in declaration order, committing the inferred shapes
// between operators so each one sees its predecessors' results. feed substitutes the
// inputs declared with opfactory.FeedMarker.
//
// Compile starts from the declared variables every time, so it can be called repeatedly.
// The first error aborts the whole graph.
func (m *Model) Compile(feed []Variable) (*Compiled, error) {
	vars := make([]Variable, len(m.vars))
	for i, v := range m.vars {
		vars[i] = v.Clone()
	}
	cat := catalog.New(vars)

	compiler, err := opfactory.NewCompiler(cat, m.backend, m.opts.Registry, m.opts.Compiler)
	if err != nil {
		return nil, err
	}

	compiled := &Compiled{Ops: make([]*opfactory.OpData, 0, len(m.ops)), Catalog: cat}
	for layer, spec := range m.ops {
		op, err := compiler.Compile(spec, layer, feed)
		if err != nil {
			compiler.Discard()
			return nil, err
		}
		if changed := compiler.Commit(); changed > 0 {
			klog.V(2).Infof("layer %d: committed %d shape(s)", layer, changed)
		}
		compiled.Ops = append(compiled.Ops, op)
	}
	klog.V(1).Infof("compiled %d operator(s) into %d program(s)", len(compiled.Ops), compiled.Programs())
	return compiled, nil
}

// verifyOrder checks that no operator reads a variable whose first producer comes later.
func verifyOrder(ops []*opfactory.OperatorSpec) error {
	// Build output-to-op map, first producer wins.
	producer := make(map[string]int)
	for i, op := range ops {
		for _, name := range flatten(op.Outputs) {
			if _, ok := producer[name]; !ok {
				producer[name] = i
			}
		}
	}

	for i, op := range ops {
		for _, name := range flatten(op.Inputs) {
			if j, ok := producer[name]; ok && j > i {
				return errors.Wrapf(ErrOrder, "op %d (%s) reads %q produced by op %d (%s)",
					i, op.Type, name, j, ops[j].Type)
			}
		}
	}
	return nil
}

// flatten lists the variable names of an input or output map, keys in sorted order.
func flatten(names map[string][]string) []string {
	var out []string
	for _, key := range slices.Sorted(maps.Keys(names)) {
		out = append(out, names[key]...)
	}
	return out
}
