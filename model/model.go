package model

import (
	internalmodel "github.com/born-ml/opfactory/internal/model"
	"github.com/born-ml/opfactory/internal/opfactory"
)

// Model represents a loaded model ready for compilation.
//
// This interface hides the internal implementation and allows for:
//   - Easy mocking in tests
//   - Decoupling from internal package structure
//
// The model holds the operator list in declaration order and the declared variables.
// Use Compile to turn every operator into programs of the backend it was loaded with.
type Model interface {
	// Compile compiles every operator in declaration order.
	// feed substitutes the inputs declared with the "image" marker.
	//
	// Shapes inferred by one operator are visible to the next. Each call starts
	// over from the declared variables.
	Compile(feed []Variable) (*Compiled, error)

	// InputNames returns the variables written by feed operators.
	InputNames() []string

	// OutputNames returns the variables read by fetch operators.
	OutputNames() []string

	// Ops returns the operators to compile, feed and fetch excluded.
	Ops() []*OperatorSpec

	// Variables returns the declared variables.
	Variables() []Variable

	// WeightBytes returns the size of the persisted weight data.
	WeightBytes() uint64
}

// Compile-time check that the internal model implements Model.
var _ Model = (*internalmodel.Model)(nil)

// Variable is a named model variable.
type Variable = internalmodel.Variable

// Compiled is the result of compiling a model.
type Compiled = internalmodel.Compiled

// OperatorSpec is the declaration of one operator.
type OperatorSpec = opfactory.OperatorSpec

// OpData is one compiled operator: bound tensors, shader parameters and programs.
type OpData = opfactory.OpData
