package model_test

import (
	"testing"

	"github.com/born-ml/opfactory/backend/recording"
	"github.com/born-ml/opfactory/model"
	"github.com/born-ml/opfactory/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockModel implements the model.Model interface for testing.
type mockModel struct {
	inputNames  []string
	outputNames []string
	compileFunc func([]model.Variable) (*model.Compiled, error)
}

func (m *mockModel) Compile(feed []model.Variable) (*model.Compiled, error) {
	if m.compileFunc != nil {
		return m.compileFunc(feed)
	}
	return &model.Compiled{}, nil
}

func (m *mockModel) InputNames() []string { return m.inputNames }
func (m *mockModel) OutputNames() []string { return m.outputNames }
func (m *mockModel) Ops() []*model.OperatorSpec { return nil }
func (m *mockModel) Variables() []model.Variable { return nil }
func (m *mockModel) WeightBytes() uint64 { return 0 }

// TestModelInterface verifies that mockModel implements model.Model.
func TestModelInterface(_ *testing.T) {
	var _ model.Model = &mockModel{}
}

func TestMockModel(t *testing.T) {
	var got []model.Variable
	m := &mockModel{
		inputNames: []string{"image"},
		compileFunc: func(feed []model.Variable) (*model.Compiled, error) {
			got = feed
			return &model.Compiled{}, nil
		},
	}

	feed := []model.Variable{{Name: "image", Shape: tensor.Shape{1, 3, 8, 8}}}
	compiled, err := m.Compile(feed)
	require.NoError(t, err)
	assert.Zero(t, compiled.Programs())
	assert.Equal(t, feed, got)
}

const reluModel = `{
  "ops": [
    {"type": "feed", "outputs": {"Out": ["image"]}},
    {"type": "relu", "inputs": {"X": ["image"]}, "outputs": {"Out": ["relu_out"]}},
    {"type": "fetch", "inputs": {"X": ["relu_out"]}}
  ],
  "vars": [
    {"name": "relu_out", "shape": [1, 3, 8, 8]}
  ]
}`

func TestLoadFromBytes(t *testing.T) {
	backend := recording.New()
	m, err := model.LoadFromBytes([]byte(reluModel), backend)
	require.NoError(t, err)
	assert.Equal(t, []string{"image"}, m.InputNames())
	assert.Equal(t, []string{"relu_out"}, m.OutputNames())

	compiled, err := m.Compile([]model.Variable{{Name: "image", Shape: tensor.Shape{1, 3, 8, 8}}})
	require.NoError(t, err)
	assert.Equal(t, 1, compiled.Programs())
	require.Len(t, backend.Programs(), 1)
	assert.Equal(t, "relu", backend.Programs()[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := model.Load("does-not-exist.json", recording.New())
	require.Error(t, err)
}

func TestBehaviors(t *testing.T) {
	table := model.Behaviors()
	assert.Equal(t, []string{"reshapeInfer"}, table["webgl_reshape2"])
	assert.Equal(t, table["webgl_conv2d"], table["webgpu_conv2d"])
	assert.NotContains(t, table, "webgl_relu")
}

func TestDefaultLoadOptions(t *testing.T) {
	opts := model.DefaultLoadOptions()
	assert.Equal(t, model.BackendWebGL, opts.Compiler.Backend)
	assert.False(t, opts.Compiler.Strict)
	assert.False(t, opts.VerifyOrder)
}
