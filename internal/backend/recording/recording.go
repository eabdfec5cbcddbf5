// Package recording implements a program backend that compiles nothing.
//
// It records every program request and returns a Program describing it, which makes it
// the backend of choice for dry runs, model inspection and tests.
package recording

import (
	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/google/uuid"
)

// Program is the handle returned by the recording backends.
type Program struct {
	ID      uuid.UUID
	Name    string
	Runtime int
	Packed  bool
	Output  *tensor.Descriptor
	Params  opfactory.Attrs
}

// Backend records program requests. It does not need render data, like WebGPU.
type Backend struct {
	programs []*Program
}

// Compile-time check that Backend implements opfactory.ProgramBackend.
var _ opfactory.ProgramBackend = (*Backend)(nil)

// New creates an empty recording backend.
func New() *Backend {
	return &Backend{}
}

// CreateProgram implements opfactory.ProgramBackend.
func (b *Backend) CreateProgram(req opfactory.ProgramRequest) (opfactory.Program, error) {
	p := &Program{
		ID:      uuid.New(),
		Name:    req.Name,
		Runtime: req.Runtime,
		Packed:  req.Packed,
		Output:  req.Output,
		Params:  req.Params.Clone(),
	}
	b.programs = append(b.programs, p)
	return p, nil
}

// Programs returns the recorded programs in creation order.
func (b *Backend) Programs() []*Program {
	out := make([]*Program, len(b.programs))
	copy(out, b.programs)
	return out
}

// Reset forgets all recorded programs.
func (b *Backend) Reset() {
	b.programs = nil
}

// RenderInput is the per-input metadata a texture-based backend binds before drawing.
type RenderInput struct {
	Name          string // Role name.
	Variable      string
	TextureWidth  int
	TextureHeight int
	Binding       int
	Persistable   bool // Whether the tensor carries weight data to upload once.
}

// RenderBackend records programs and also precomputes render data, like a WebGL backend.
type RenderBackend struct {
	Backend
	renderData [][]RenderInput
}

// Compile-time check that RenderBackend implements opfactory.RenderDataBackend.
var _ opfactory.RenderDataBackend = (*RenderBackend)(nil)

// NewRender creates an empty recording backend that produces render data.
func NewRender() *RenderBackend {
	return &RenderBackend{}
}

// CreateRenderData implements opfactory.RenderDataBackend.
func (b *RenderBackend) CreateRenderData(inputs []*tensor.Descriptor) (any, error) {
	data := make([]RenderInput, len(inputs))
	for i, d := range inputs {
		data[i] = RenderInput{
			Name:          d.Name,
			Variable:      d.Variable,
			TextureWidth:  d.TextureWidth(),
			TextureHeight: d.TextureHeight(),
			Binding:       d.Binding,
			Persistable:   d.Data != nil,
		}
	}
	b.renderData = append(b.renderData, data)
	return data, nil
}

// RenderData returns the render data produced so far, one entry per operator.
func (b *RenderBackend) RenderData() [][]RenderInput {
	out := make([][]RenderInput, len(b.renderData))
	copy(out, b.renderData)
	return out
}
