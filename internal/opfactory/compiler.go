package opfactory

import (
	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Options configures a Compiler.
type Options struct {
	// Backend selects the behavior table ("webgl" or "webgpu").
	Backend string

	// Strict fails on raw tensor names without a role and on names missing from the
	// catalog (default: false = drop them with a warning).
	Strict bool

	// MaxTextureSize is the largest texture edge of the device (default 4096).
	MaxTextureSize int

	// PackedLayout computes texture sizes of packed operators (default tensor.PackedLayout).
	PackedLayout tensor.Layout

	// Behaviors overrides registry entries: "<backend>_<op>" → behavior names.
	Behaviors map[string][]string
}

// DefaultOptions returns the default compiler options.
//
// Default configuration:
//   - Backend: webgl
//   - Strict mode: disabled
//   - MaxTextureSize: 4096
func DefaultOptions() Options {
	return Options{
		Backend:        BackendWebGL,
		Strict:         false,
		MaxTextureSize: tensor.DefaultMaxTextureSize,
		PackedLayout:   tensor.PackedLayout{},
	}
}

// Compiler turns operator specs into programs, one operator at a time, in declaration order.
// It is not safe for concurrent use.
type Compiler struct {
	catalog  *catalog.Catalog
	backend  ProgramBackend
	registry *Registry
	opts     Options
	resolver resolver
}

// NewCompiler creates a compiler over the catalog. opts.Behaviors, if any, are applied to
// the registry, which stays owned by the caller.
func NewCompiler(cat *catalog.Catalog, backend ProgramBackend, registry *Registry, opts Options) (*Compiler, error) {
	if cat == nil {
		return nil, errors.New("opfactory: catalog is nil")
	}
	if backend == nil {
		return nil, errors.New("opfactory: program backend is nil")
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if opts.Backend == "" {
		opts.Backend = BackendWebGL
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = tensor.DefaultMaxTextureSize
	}
	if opts.PackedLayout == nil {
		opts.PackedLayout = tensor.PackedLayout{}
	}
	if len(opts.Behaviors) > 0 {
		if err := registry.Configure(opts.Behaviors); err != nil {
			return nil, err
		}
	}
	return &Compiler{
		catalog:  cat,
		backend:  backend,
		registry: registry,
		opts:     opts,
		resolver: resolver{catalog: cat, strict: opts.Strict},
	}, nil
}

// Catalog returns the catalog the compiler reads and stages into.
func (c *Compiler) Catalog() *catalog.Catalog {
	return c.catalog
}

// Compile compiles the operator at position layer. feed replaces inputs declared with
// FeedMarker.
//
// Shapes inferred for catalog variables are staged, not committed: call Commit before
// compiling the next operator (Compile fails with ErrUncommitted otherwise), or Discard
// to drop them.
func (c *Compiler) Compile(spec *OperatorSpec, layer int, feed []catalog.Variable) (*OpData, error) {
	if spec == nil {
		return nil, errors.New("opfactory: operator spec is nil")
	}
	fail := func(behavior string, err error) (*OpData, error) {
		return nil, &CompileError{Op: spec.Type, Layer: layer, Behavior: behavior, Err: err}
	}
	if c.catalog.HasStaged() {
		return fail("", ErrUncommitted)
	}

	op := newOpData(spec, layer)
	if err := c.resolver.resolve(op, spec, feed); err != nil {
		return fail("", err)
	}

	for _, b := range c.registry.Behaviors(c.opts.Backend, op.Type) {
		klog.V(2).Infof("op %s (layer %d): applying %s", op.Type, layer, b)
		if err := apply(b, op); err != nil {
			return fail(b.String(), err)
		}
	}

	if err := c.buildTensors(op); err != nil {
		return fail("", err)
	}
	buildShaderParams(op)

	if rd, ok := c.backend.(RenderDataBackend); ok {
		data, err := rd.CreateRenderData(op.InputTensors)
		if err != nil {
			return fail("", errors.WithMessage(err, "render data"))
		}
		op.RenderData = data
	}

	if err := c.buildPrograms(op); err != nil {
		return fail("", err)
	}
	if err := c.stage(op); err != nil {
		c.catalog.Discard()
		return fail("", err)
	}

	klog.V(1).Infof("op %s (layer %d) compiled as %q: %d input(s), %d program(s)",
		op.Type, layer, op.Name, len(op.InputTensors), len(op.Programs))
	return op, nil
}

// Commit publishes the shapes staged by the last Compile and returns how many changed.
func (c *Compiler) Commit() int {
	return c.catalog.Commit()
}

// Discard drops the shapes staged by the last Compile.
func (c *Compiler) Discard() {
	c.catalog.Discard()
}

// buildTensors creates one descriptor per bound tensor; "out" tensors become outputs.
func (c *Compiler) buildTensors(op *OpData) error {
	unpacked := tensor.UnpackedLayout{MaxTextureSize: c.opts.MaxTextureSize}
	for i, b := range op.Tensors {
		d, err := tensor.NewDescriptor(tensor.DescriptorOptions{
			Name:         b.Role.String(),
			Variable:     b.Name,
			Shape:        b.Shape,
			Data:         b.Data,
			Packed:       op.Packed,
			Binding:      i,
			Unpacked:     unpacked,
			PackedLayout: c.opts.PackedLayout,
		})
		if err != nil {
			return err
		}
		if b.Role == RoleOut {
			op.OutputTensors = append(op.OutputTensors, d)
		} else {
			op.InputTensors = append(op.InputTensors, d)
		}
	}
	return nil
}

// buildPrograms asks the backend for one program per output tensor.
func (c *Compiler) buildPrograms(op *OpData) error {
	op.Programs = make([]Program, 0, len(op.OutputTensors))
	for i, out := range op.OutputTensors {
		program, err := c.backend.CreateProgram(ProgramRequest{
			Name:    op.Name,
			Output:  out,
			Params:  op.ShaderParams[i],
			Runtime: i,
			Packed:  op.Packed,
		})
		if err != nil {
			return errors.WithMessagef(err, "create program %q for output %d", op.Name, i)
		}
		op.Programs = append(op.Programs, program)
	}
	return nil
}

// stage records the shapes of catalog-backed tensors that behaviors changed.
func (c *Compiler) stage(op *OpData) error {
	for _, b := range op.Tensors {
		if b.Source != SourceCatalog {
			continue
		}
		committed, err := c.catalog.Shape(b.Slot)
		if err != nil {
			return err
		}
		if committed.Equal(b.Shape) {
			continue
		}
		if err := c.catalog.Stage(b.Slot, b.Shape); err != nil {
			return err
		}
	}
	return nil
}
