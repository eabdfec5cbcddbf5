package opfactory

import (
	"testing"

	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrsClone(t *testing.T) {
	a := Attrs{
		"ints":   []int{1, 2},
		"nested": map[string]any{"k": []float64{0.5}},
		"list":   []any{[]int{3}},
		"n":      4,
	}
	c := a.Clone()
	c["ints"].([]int)[0] = 9
	c["nested"].(Attrs)["k"].([]float64)[0] = 9
	c["list"].([]any)[0].([]int)[0] = 9

	assert.Equal(t, []int{1, 2}, a["ints"])
	assert.Equal(t, []float64{0.5}, a["nested"].(map[string]any)["k"])
	assert.Equal(t, []int{3}, a["list"].([]any)[0])
	assert.Nil(t, Attrs(nil).Clone())
	assert.Equal(t, []string{"ints", "list", "n", "nested"}, a.Keys())
}

func TestMergeAttrs(t *testing.T) {
	first := Attrs{"a": 1, "b": []int{2}}
	merged := mergeAttrs(first, Attrs{"b": 3, "c": 4})
	assert.Equal(t, Attrs{"a": 1, "b": 3, "c": 4}, merged)
	assert.Equal(t, Attrs{}, mergeAttrs())

	merged = mergeAttrs(first)
	merged["b"].([]int)[0] = 9
	assert.Equal(t, []int{2}, first["b"])
}

func TestAttrGetters(t *testing.T) {
	attrs := Attrs{
		"i":     3,
		"i64":   int64(5),
		"f":     2.0,
		"frac":  2.5,
		"ints":  []int64{1, 2},
		"any":   []any{1, 2.0},
		"bad":   []any{1, "x"},
		"s":     "max",
		"b":     true,
		"flag":  1,
		"float": []float64{1.5},
	}

	assert.Equal(t, 3, GetAttrInt(attrs, "i", 0))
	assert.Equal(t, 5, GetAttrInt(attrs, "i64", 0))
	assert.Equal(t, 2, GetAttrInt(attrs, "f", 0))
	assert.Equal(t, -1, GetAttrInt(attrs, "frac", -1))
	assert.Equal(t, -1, GetAttrInt(attrs, "s", -1))

	assert.Equal(t, []int{1, 2}, GetAttrInts(attrs, "ints"))
	assert.Equal(t, []int{1, 2}, GetAttrInts(attrs, "any"))
	assert.Nil(t, GetAttrInts(attrs, "bad"))
	assert.Nil(t, GetAttrInts(attrs, "float"))

	assert.Equal(t, 2.5, GetAttrFloat(attrs, "frac", 0))
	assert.Equal(t, 3.0, GetAttrFloat(attrs, "i", 0))
	assert.Equal(t, 7.0, GetAttrFloat(attrs, "missing", 7))

	assert.Equal(t, "max", GetAttrString(attrs, "s", ""))
	assert.Equal(t, "avg", GetAttrString(attrs, "i", "avg"))

	assert.True(t, GetAttrBool(attrs, "b", false))
	assert.True(t, GetAttrBool(attrs, "flag", false))
	assert.True(t, GetAttrBool(attrs, "missing", true))
}

func TestRoleFor(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"Input", RoleOrigin},
		{"X", RoleOrigin},
		{"Filter", RoleFilter},
		{"Y", RoleCounter},
		{"Z", RoleAppender},
		{"Output", RoleOut},
		{"Out", RoleOut},
		{"Scale", RoleScale},
		{"Bias", RoleBias},
		{"Mean", RoleMean},
		{"Variance", RoleVariance},
		{"W", RoleWeight},
	}
	for _, tt := range tests {
		role, ok := RoleFor(tt.raw)
		assert.True(t, ok, tt.raw)
		assert.Equal(t, tt.want, role, tt.raw)
	}

	role, ok := RoleFor("XShape")
	assert.False(t, ok)
	assert.Equal(t, RoleNone, role)
	assert.Equal(t, "unknown", Role(42).String())
}

func TestBuildShaderParams(t *testing.T) {
	op := testOp("relu6", Attrs{"threshold": 6, "shared": "attr"})
	op.Params["shared"] = "param"
	op.Params["multi_value"] = 6

	in, err := tensor.NewDescriptor(tensor.DescriptorOptions{Name: "origin", Variable: "x", Shape: tensor.Shape{2, 3}, Binding: 1})
	require.NoError(t, err)
	out, err := tensor.NewDescriptor(tensor.DescriptorOptions{Name: "out", Variable: "y", Shape: tensor.Shape{2, 3}})
	require.NoError(t, err)
	op.InputTensors = []*tensor.Descriptor{in}
	op.OutputTensors = []*tensor.Descriptor{out}

	buildShaderParams(op)
	require.Len(t, op.ShaderParams, 1)
	params := op.ShaderParams[0]

	assert.Equal(t, "attr", params["shared"], "attributes win over behavior params")
	assert.Equal(t, 6, params["multi_value"])
	for _, name := range tensor.LayoutAttrs {
		assert.Contains(t, params, name+"_origin")
		assert.Contains(t, params, name+"_out")
	}
	assert.Equal(t, 2, params["length_shape_origin"])
	assert.Equal(t, 3, params["width_shape_origin"])
	assert.Equal(t, 2, params["height_shape_origin"])
	assert.Equal(t, 6, params["total_shape_out"])
	assert.Equal(t, 1, params["binding_origin"])
	assert.Equal(t, 0, params["binding_out"])
}
