package opfactory

import (
	"testing"

	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompiler(t *testing.T, backend ProgramBackend, opts Options, vars ...catalog.Variable) *Compiler {
	t.Helper()
	c, err := NewCompiler(catalog.New(vars), backend, NewRegistry(), opts)
	require.NoError(t, err)
	return c
}

func TestCompileConv(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestCompiler(t, backend, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{1, 8, 7, 7}},
		catalog.Variable{Name: "w", Shape: tensor.Shape{8, 1, 3, 3}, Data: make([]float32, 72), Persistable: true},
		catalog.Variable{Name: "y", Shape: tensor.Shape{1, 8, 5, 5}},
	)

	op, err := c.Compile(&OperatorSpec{
		Type:    "conv2d",
		Inputs:  map[string][]string{"Input": {"x"}, "Filter": {"w"}},
		Outputs: map[string][]string{"Output": {"y"}},
		Attrs:   Attrs{"groups": 8, "paddings": []int{0, 1}, "strides": []int{1, 1}},
	}, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, "conv2d"+DepthwiseSuffix, op.Name)
	assert.Equal(t, "conv2d", op.Type)
	assert.Equal(t, 3, op.Layer)
	require.Len(t, op.OutputTensors, 1)
	require.Len(t, op.InputTensors, 3)
	assert.Equal(t, []string{"filter", "origin", "bias"},
		[]string{op.InputTensors[0].Name, op.InputTensors[1].Name, op.InputTensors[2].Name})

	require.Len(t, op.ShaderParams, 1)
	params := op.ShaderParams[0]
	assert.Equal(t, []int{0, 0}, params["paddings"])
	assert.Equal(t, 0, params["filter_nearest_vec4"])
	assert.Equal(t, 1, params["filter_remainder_vec4"])
	assert.Equal(t, 7, params["width_shape_origin"])
	assert.Equal(t, 8, params["channel_out"])
	assert.Equal(t, 0, params["binding_out"])
	assert.Equal(t, 3, params["binding_bias"])
	assert.Equal(t, "", params["limit_filter"])

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, op.Name, req.Name)
	assert.Equal(t, 0, req.Runtime)
	assert.Same(t, op.OutputTensors[0], req.Output)
	assert.Equal(t, []Program{op.Name}, op.Programs)

	// No catalog shape changed.
	assert.False(t, c.Catalog().HasStaged())
}

func TestCompileStagesShapes(t *testing.T) {
	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{2, 3, 4}},
		catalog.Variable{Name: "r", Shape: tensor.Shape{1}},
		catalog.Variable{Name: "t", Shape: tensor.Shape{12, 2}},
	)
	reshape := &OperatorSpec{
		Type:    "reshape2",
		Inputs:  map[string][]string{"X": {"x"}},
		Outputs: map[string][]string{"Out": {"r"}},
		Attrs:   Attrs{"new_shape": []int{0, -1}},
	}
	transpose := &OperatorSpec{
		Type:    "transpose2",
		Inputs:  map[string][]string{"X": {"r"}},
		Outputs: map[string][]string{"Out": {"t"}},
		Attrs:   Attrs{"axis": []int{1, 0}},
	}

	_, err := c.Compile(reshape, 0, nil)
	require.NoError(t, err)
	assert.True(t, c.Catalog().HasStaged())

	// The next operator must not see half-published shapes.
	_, err = c.Compile(transpose, 1, nil)
	require.ErrorIs(t, err, ErrUncommitted)

	assert.Equal(t, 1, c.Commit())
	op, err := c.Compile(transpose, 1, nil)
	require.NoError(t, err)
	origin, _ := op.Tensor(RoleOrigin)
	assert.Equal(t, tensor.Shape{2, 12}, origin.Shape)
	assert.Equal(t, 2, op.ShaderParams[0]["perm_size"])
	assert.Equal(t, 0, c.Commit())

	// The declared attrs are not modified by behaviors.
	assert.Equal(t, []int{0, -1}, reshape.Attrs["new_shape"])
}

func TestCompileDiscardOnFailure(t *testing.T) {
	backend := &fakeBackend{err: errBackend}
	c := newTestCompiler(t, backend, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{2, 3, 4}},
		catalog.Variable{Name: "r", Shape: tensor.Shape{1}},
	)
	_, err := c.Compile(&OperatorSpec{
		Type:    "reshape2",
		Inputs:  map[string][]string{"X": {"x"}},
		Outputs: map[string][]string{"Out": {"r"}},
		Attrs:   Attrs{"new_shape": []int{-1}},
	}, 0, nil)
	require.ErrorIs(t, err, errBackend)
	assert.False(t, c.Catalog().HasStaged())

	id, _ := c.Catalog().Lookup("r")
	shape, err := c.Catalog().Shape(id)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1}, shape)
}

func TestCompileBehaviorError(t *testing.T) {
	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{1, 2, 3, 4}},
		catalog.Variable{Name: "y", Shape: tensor.Shape{1, 2, 3, 4}},
	)
	_, err := c.Compile(&OperatorSpec{
		Type:    "transpose2",
		Inputs:  map[string][]string{"X": {"x"}},
		Outputs: map[string][]string{"Out": {"y"}},
		Attrs:   Attrs{"axis": []int{0, 1, 2, 3, 4}},
	}, 7, nil)
	require.ErrorIs(t, err, ErrInvalidAttr)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "transpose2", compileErr.Op)
	assert.Equal(t, 7, compileErr.Layer)
	assert.Equal(t, "permutationCompute", compileErr.Behavior)
	assert.Contains(t, err.Error(), "op transpose2 (layer 7), behavior permutationCompute")
}

func TestCompileFeed(t *testing.T) {
	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(),
		catalog.Variable{Name: "y", Shape: tensor.Shape{1, 3, 4, 4}},
	)
	feed := []catalog.Variable{{Name: "pixels", Shape: tensor.Shape{1, 3, 4, 4}}}
	op, err := c.Compile(&OperatorSpec{
		Type:    "relu",
		Inputs:  map[string][]string{"X": {FeedMarker}},
		Outputs: map[string][]string{"Out": {"y"}},
	}, 0, feed)
	require.NoError(t, err)

	origin, ok := op.Tensor(RoleOrigin)
	require.True(t, ok)
	assert.Equal(t, "pixels", origin.Name)
	assert.Equal(t, SourceFeed, origin.Source)
	assert.Equal(t, catalog.NoSlot, origin.Slot)

	// Working copies never alias the feed.
	origin.Shape[0] = 9
	assert.Equal(t, 1, feed[0].Shape[0])
}

func TestCompileUnmappedNames(t *testing.T) {
	vars := []catalog.Variable{
		{Name: "x", Shape: tensor.Shape{2, 3, 4}},
		{Name: "y", Shape: tensor.Shape{2, 12}},
		{Name: "xs", Shape: tensor.Shape{1}},
	}
	spec := &OperatorSpec{
		Type:    "reshape2",
		Inputs:  map[string][]string{"X": {"x"}, "Shape": {"x"}},
		Outputs: map[string][]string{"Out": {"y"}, "XShape": {"xs"}},
		Attrs:   Attrs{"new_shape": []int{2, 12}},
	}

	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(), vars...)
	op, err := c.Compile(spec, 0, nil)
	require.NoError(t, err)
	assert.Len(t, op.Tensors, 2)
	assert.Len(t, op.Outputs["XShape"], 1)
	assert.Equal(t, RoleNone, op.Outputs["XShape"][0].Role)
	assert.Len(t, op.Inputs["Shape"], 1)

	opts := DefaultOptions()
	opts.Strict = true
	c = newTestCompiler(t, &fakeBackend{}, opts, vars...)
	_, err = c.Compile(spec, 0, nil)
	require.ErrorIs(t, err, ErrUnmappedTensor)
}

func TestCompileMissingVariable(t *testing.T) {
	spec := &OperatorSpec{
		Type:    "relu",
		Inputs:  map[string][]string{"X": {"nope"}},
		Outputs: map[string][]string{"Out": {"y"}},
	}
	vars := []catalog.Variable{{Name: "y", Shape: tensor.Shape{4}}}

	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(), vars...)
	op, err := c.Compile(spec, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, op.InputTensors)

	opts := DefaultOptions()
	opts.Strict = true
	c = newTestCompiler(t, &fakeBackend{}, opts, vars...)
	_, err = c.Compile(spec, 0, nil)
	require.ErrorIs(t, err, ErrMissingVariable)
}

func TestCompileRankExceeded(t *testing.T) {
	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{1, 2, 3, 4, 5}},
		catalog.Variable{Name: "y", Shape: tensor.Shape{4}},
	)
	_, err := c.Compile(&OperatorSpec{
		Type:    "relu",
		Inputs:  map[string][]string{"X": {"x"}},
		Outputs: map[string][]string{"Out": {"y"}},
	}, 0, nil)
	require.ErrorIs(t, err, ErrRankExceeded)
}

func TestCompileMultipleOutputs(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestCompiler(t, backend, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{4, 6}},
		catalog.Variable{Name: "a", Shape: tensor.Shape{4, 3}},
		catalog.Variable{Name: "b", Shape: tensor.Shape{4, 3}},
	)
	op, err := c.Compile(&OperatorSpec{
		Type:    "split",
		Inputs:  map[string][]string{"X": {"x"}},
		Outputs: map[string][]string{"Out": {"a", "b"}},
		Attrs:   Attrs{"sections": []int{3, 3}},
	}, 0, nil)
	require.NoError(t, err)

	require.Len(t, op.Programs, 2)
	require.Len(t, backend.requests, 2)
	assert.Equal(t, 0, backend.requests[0].Runtime)
	assert.Equal(t, 1, backend.requests[1].Runtime)
	assert.Equal(t, 0, op.ShaderParams[0]["binding_out"])
	assert.Equal(t, 1, op.ShaderParams[1]["binding_out"])

	// Each output owns its parameter map.
	op.ShaderParams[0]["sections"].([]int)[0] = 99
	assert.Equal(t, 3, op.ShaderParams[1]["sections"].([]int)[0])
}

func TestCompileRenderData(t *testing.T) {
	backend := &fakeRenderBackend{}
	c := newTestCompiler(t, backend, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{4}},
		catalog.Variable{Name: "y", Shape: tensor.Shape{4}},
	)
	op, err := c.Compile(&OperatorSpec{
		Type:    "elementwise_add",
		Inputs:  map[string][]string{"X": {"x"}, "Y": {"x"}},
		Outputs: map[string][]string{"Out": {"y"}},
		Attrs:   Attrs{"axis": -1},
	}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, op.RenderData)
	require.Len(t, backend.inputs, 1)

	// Aliased inputs get independent working copies.
	origin, _ := op.Tensor(RoleOrigin)
	counter, _ := op.Tensor(RoleCounter)
	assert.Equal(t, origin.Slot, counter.Slot)
	assert.NotSame(t, origin, counter)
	assert.Equal(t, 0, op.Attrs["axis"])
}

func TestCompileBackendSelection(t *testing.T) {
	registry := NewRegistry()
	registry.Register(BackendWebGPU, "relu6")

	opts := DefaultOptions()
	opts.Backend = BackendWebGPU
	c, err := NewCompiler(catalog.New([]catalog.Variable{
		{Name: "x", Shape: tensor.Shape{4}},
		{Name: "y", Shape: tensor.Shape{4}},
	}), &fakeBackend{}, registry, opts)
	require.NoError(t, err)

	spec := &OperatorSpec{
		Type:    "relu6",
		Inputs:  map[string][]string{"X": {"x"}},
		Outputs: map[string][]string{"Out": {"y"}},
	}
	op, err := c.Compile(spec, 0, nil)
	require.NoError(t, err)
	assert.NotContains(t, op.Params, "active_function")

	// The webgl table still requires a threshold.
	webgl, err := NewCompiler(catalog.New([]catalog.Variable{
		{Name: "x", Shape: tensor.Shape{4}},
		{Name: "y", Shape: tensor.Shape{4}},
	}), &fakeBackend{}, registry, DefaultOptions())
	require.NoError(t, err)
	_, err = webgl.Compile(spec, 0, nil)
	require.ErrorIs(t, err, ErrInvalidAttr)
}

func TestCompilePackedLayout(t *testing.T) {
	c := newTestCompiler(t, &fakeBackend{}, DefaultOptions(),
		catalog.Variable{Name: "x", Shape: tensor.Shape{1, 2, 5, 5}},
		catalog.Variable{Name: "y", Shape: tensor.Shape{1, 2, 5, 5}},
	)
	op, err := c.Compile(&OperatorSpec{
		Type:     "relu",
		Inputs:   map[string][]string{"X": {"x"}},
		Outputs:  map[string][]string{"Out": {"y"}},
		IsPacked: true,
	}, 0, nil)
	require.NoError(t, err)
	assert.True(t, op.OutputTensors[0].Packed)
	assert.Equal(t, 3, op.ShaderParams[0]["width_texture_out"])
	assert.Equal(t, 6, op.ShaderParams[0]["height_texture_out"])
}

func TestNewCompilerErrors(t *testing.T) {
	cat := catalog.New(nil)
	_, err := NewCompiler(nil, &fakeBackend{}, nil, DefaultOptions())
	require.Error(t, err)
	_, err = NewCompiler(cat, nil, nil, DefaultOptions())
	require.Error(t, err)

	opts := DefaultOptions()
	opts.Behaviors = map[string][]string{"webgl_conv2d": {"paddingCompat", "bogus"}}
	_, err = NewCompiler(cat, &fakeBackend{}, nil, opts)
	require.ErrorIs(t, err, ErrUnknownBehavior)

	_, err = newTestCompiler(t, &fakeBackend{}, DefaultOptions()).Compile(nil, 0, nil)
	require.Error(t, err)
}
