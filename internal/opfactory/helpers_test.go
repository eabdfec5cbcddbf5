package opfactory

import (
	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// testOp builds an operator with bound tensors, for behavior tests.
func testOp(opType string, attrs Attrs, bindings ...*Binding) *OpData {
	op := newOpData(&OperatorSpec{Type: opType, Attrs: attrs}, 0)
	op.Tensors = bindings
	return op
}

func bind(role Role, name string, shape ...int) *Binding {
	return &Binding{Name: name, Role: role, Shape: tensor.Shape(shape), Slot: catalog.NoSlot, Source: SourceCatalog}
}

// fakeBackend records requests and can be told to fail.
type fakeBackend struct {
	requests []ProgramRequest
	err      error
}

func (b *fakeBackend) CreateProgram(req ProgramRequest) (Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.requests = append(b.requests, req)
	return req.Name, nil
}

type fakeRenderBackend struct {
	fakeBackend
	inputs [][]*tensor.Descriptor
}

func (b *fakeRenderBackend) CreateRenderData(inputs []*tensor.Descriptor) (any, error) {
	b.inputs = append(b.inputs, inputs)
	return len(inputs), nil
}

var errBackend = errors.New("backend exploded")
