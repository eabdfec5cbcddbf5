package model

import (
	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/pkg/errors"
)

// LoadOptions configures model loading and compilation.
type LoadOptions struct {
	// Compiler configures the operator compiler.
	Compiler opfactory.Options

	// Registry provides the behavior table (default: opfactory.NewRegistry()).
	Registry *opfactory.Registry

	// VerifyOrder rejects graphs where an operator reads a variable produced by a later
	// operator (default: false = compile in declaration order as given).
	VerifyOrder bool
}

// DefaultLoadOptions returns default loading options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Compiler:    opfactory.DefaultOptions(),
		Registry:    nil,
		VerifyOrder: false,
	}
}

// Load loads a JSON model from file and prepares it for compilation.
// The backend creates the programs of every compiled operator.
//
// Example:
//
//	m, err := model.Load("mobilenet.json", recording.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	compiled, err := m.Compile(feed)
func Load(path string, backend opfactory.ProgramBackend, opts ...LoadOptions) (*Model, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	def, err := ParseFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse model file")
	}
	return LoadFromDefinition(def, backend, opt)
}

// LoadFromBytes loads a JSON model from bytes.
func LoadFromBytes(data []byte, backend opfactory.ProgramBackend, opts ...LoadOptions) (*Model, error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	def, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse model data")
	}
	return LoadFromDefinition(def, backend, opt)
}

// LoadFromDefinition loads a model from a parsed definition.
func LoadFromDefinition(def *Definition, backend opfactory.ProgramBackend, opt LoadOptions) (*Model, error) {
	if def == nil {
		return nil, errors.New("model definition is nil")
	}
	if backend == nil {
		return nil, errors.New("program backend is nil")
	}
	if opt.Registry == nil {
		opt.Registry = opfactory.NewRegistry()
	}
	if len(opt.Compiler.Behaviors) > 0 {
		if err := opt.Registry.Configure(opt.Compiler.Behaviors); err != nil {
			return nil, err
		}
		// Applied once: compilers created by Compile must not reconfigure.
		opt.Compiler.Behaviors = nil
	}

	m := &Model{
		backend: backend,
		opts:    opt,
		ops:     def.OperatorSpecs(),
		vars:    def.Variables(),
	}
	for i := range def.Ops {
		switch def.Ops[i].Type {
		case OpFeed:
			m.inputNames = append(m.inputNames, flatten(def.Ops[i].Outputs)...)
		case OpFetch:
			m.outputNames = append(m.outputNames, flatten(def.Ops[i].Inputs)...)
		}
	}

	if opt.VerifyOrder {
		if err := verifyOrder(m.ops); err != nil {
			return nil, err
		}
	}
	return m, nil
}
