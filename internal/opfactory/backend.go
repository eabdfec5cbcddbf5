package opfactory

import "github.com/born-ml/opfactory/internal/tensor"

// Program is the opaque handle a ProgramBackend returns for one compiled program.
type Program = any

// ProgramRequest carries everything a backend needs to build the program of one output.
type ProgramRequest struct {
	Name    string             // Program name after specialization.
	Output  *tensor.Descriptor // Output tensor this program writes.
	Params  Attrs              // Shader parameters for this output.
	Runtime int                // Index of the output within the operator.
	Packed  bool
}

// ProgramBackend compiles programs for a GPU execution backend.
type ProgramBackend interface {
	CreateProgram(req ProgramRequest) (Program, error)
}

// RenderDataBackend is implemented by backends that need per-input render metadata
// precomputed at compile time.
type RenderDataBackend interface {
	CreateRenderData(inputs []*tensor.Descriptor) (any, error)
}
