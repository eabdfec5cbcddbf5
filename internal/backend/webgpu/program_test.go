//go:build windows

package webgpu

import (
	"testing"

	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramBackendCachesPipelines(t *testing.T) {
	if !IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	b, err := New()
	require.NoError(t, err)
	defer b.Release()

	out := outDescriptor(t, tensor.Shape{2, 300})
	req := opfactory.ProgramRequest{
		Name:   "relu",
		Output: out,
		Params: opfactory.Attrs{"binding_origin": 0, "binding_out": 1, "total_shape_out": out.TotalShape()},
	}
	first, err := b.CreateProgram(req)
	require.NoError(t, err)
	second, err := b.CreateProgram(req)
	require.NoError(t, err)

	p1, ok := first.(*Program)
	require.True(t, ok)
	p2, ok := second.(*Program)
	require.True(t, ok)
	assert.NotNil(t, p1.Pipeline)
	assert.Same(t, p1.Pipeline, p2.Pipeline)
}

func TestProgramBackendUnsupported(t *testing.T) {
	if !IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	b, err := New()
	require.NoError(t, err)
	defer b.Release()

	out := outDescriptor(t, tensor.Shape{4})
	_, err = b.CreateProgram(opfactory.ProgramRequest{
		Name:   "conv2d_transpose",
		Output: out,
		Params: opfactory.Attrs{"binding_out": 0},
	})
	require.ErrorIs(t, err, ErrUnsupportedProgram)
}
