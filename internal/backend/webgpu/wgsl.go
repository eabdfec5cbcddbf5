// Package webgpu implements the opfactory program backend for WebGPU.
//
// Programs are WGSL compute shaders generated from the shader parameters the compiler
// synthesizes: every parameter becomes a `p_`-prefixed constant and every tensor bound
// to the operator a storage buffer. Shader generation is portable; compiling the
// shader into a pipeline uses go-webgpu (github.com/go-webgpu/webgpu) and is only
// available where its native library is.
package webgpu

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/pkg/errors"
)

// ErrUnsupportedProgram is returned for program names without a WGSL kernel.
var ErrUnsupportedProgram = errors.New("webgpu: unsupported program")

// ErrUnavailable is returned when no WebGPU device can be created.
var ErrUnavailable = errors.New("webgpu: not available")

// Shader is a generated compute shader.
type Shader struct {
	Name       string   // Program name.
	Source     string   // WGSL source.
	Bindings   []string // Bound tensor roles, indexed by binding slot.
	Workgroups uint32   // Number of workgroups to dispatch along x.
}

// bindingPrefix prefixes the binding slot parameter of each tensor.
const bindingPrefix = "binding_"

// kernel selects the body and default activation of a program name.
type kernel struct {
	body       string
	activation string
	defaults   map[string]string
	required   []string
}

var convDefaults = map[string]string{
	"strides":   "array(1, 1)",
	"paddings":  "array(0, 0)",
	"dilations": "array(1, 1)",
	"groups":    "1",
}

var poolDefaults = map[string]string{
	"strides":  "array(1, 1)",
	"paddings": "array(0, 0)",
}

// lookupKernel returns the kernel serving a program name.
func lookupKernel(name string, roles map[string]bool) (kernel, error) {
	switch name {
	case "relu", "relu6", "prelu", "leaky_relu":
		return kernel{body: activationKernel, activation: "relu", required: []string{"origin"}}, nil
	case "elementwise_add", "elementwise_sub", "elementwise_mul", "elementwise_div":
		operator := map[string]string{"add": "+", "sub": "-", "mul": "*", "div": "/"}[strings.TrimPrefix(name, "elementwise_")]
		return kernel{
			body:       strings.Replace(elementwiseKernel, "OPERATOR", operator, 1),
			activation: "identity",
			required:   []string{"origin", "counter"},
		}, nil
	case "reshape2", "flatten2", "squeeze2", "unsqueeze2":
		return kernel{body: copyKernel, activation: "identity", required: []string{"origin"}}, nil
	case "transpose2":
		return kernel{body: transposeKernel, activation: "identity", required: []string{"origin", "perm_size"}}, nil
	case "pool2d":
		body := strings.NewReplacer(
			"INIT", "0.0",
			"REDUCE", "acc = acc + v;",
			"FINISH", "t_out[i] = acc / f32(max(count, 1));",
		).Replace(pool2dKernel)
		return kernel{body: body, activation: "identity", defaults: poolDefaults, required: []string{"origin", "ksize"}}, nil
	case "pool2d" + opfactory.MaxPoolSuffix:
		body := strings.NewReplacer(
			"INIT", "-3.4028234e38",
			"REDUCE", "acc = max(acc, v);",
			"FINISH", "t_out[i] = acc;",
		).Replace(pool2dKernel)
		return kernel{body: body, activation: "identity", defaults: poolDefaults, required: []string{"origin", "ksize"}}, nil
	}

	conv := strings.TrimSuffix(name, opfactory.DepthwiseSuffix)
	if conv == "conv2d" || conv == "depthwise_conv2d" || strings.HasPrefix(conv, "conv2d-elementwise_add") {
		residual := ""
		if strings.HasPrefix(conv, "conv2d-elementwise_add") && roles["counter"] {
			residual = residualAdd
		}
		body := strings.Replace(conv2dKernel, "RESIDUAL", residual, 1)
		if !roles["bias"] {
			body = strings.Replace(body, "t_bias[o.y]", "0.0", 1)
		}
		return kernel{body: body, activation: "identity", defaults: convDefaults, required: []string{"origin", "filter"}}, nil
	}
	return kernel{}, errors.Wrapf(ErrUnsupportedProgram, "%q", name)
}

// Generate builds the compute shader of one program request.
func Generate(req opfactory.ProgramRequest) (*Shader, error) {
	if req.Output == nil {
		return nil, errors.Errorf("webgpu: program %q has no output tensor", req.Name)
	}
	bindings, err := bindingsOf(req.Params)
	if err != nil {
		return nil, errors.WithMessagef(err, "program %q", req.Name)
	}
	roles := make(map[string]bool, len(bindings))
	for _, role := range bindings {
		roles[role] = true
	}
	if !roles["out"] {
		return nil, errors.Errorf("webgpu: program %q has no bound output", req.Name)
	}

	k, err := lookupKernel(req.Name, roles)
	if err != nil {
		return nil, err
	}
	for _, r := range k.required {
		if roles[r] {
			continue
		}
		if _, ok := req.Params[r]; ok {
			continue
		}
		return nil, errors.Errorf("webgpu: program %q requires %q", req.Name, r)
	}

	function := opfactory.GetAttrString(req.Params, "active_function", k.activation)
	activation, ok := activations[function]
	if !ok {
		return nil, errors.Errorf("webgpu: program %q: unknown activation %q", req.Name, function)
	}

	var sb strings.Builder
	sb.WriteString("// Program: " + req.Name + "\n\n")
	writeConstants(&sb, req.Params, k.defaults)
	sb.WriteString("\n")
	for slot, role := range bindings {
		if role == "" {
			continue
		}
		access := "read"
		if role == "out" {
			access = "read_write"
		}
		sb.WriteString("@group(0) @binding(" + strconv.Itoa(slot) + ") var<storage, " + access + "> t_" + role + ": array<f32>;\n")
	}
	sb.WriteString(commonFunctions)
	sb.WriteString("\nfn activate(v: f32) -> f32 {\n    " + activation + "\n}\n")
	sb.WriteString("\n@compute @workgroup_size(" + strconv.Itoa(workgroupSize) + ")\n")
	sb.WriteString("fn main(@builtin(global_invocation_id) gid: vec3<u32>) {\n")
	sb.WriteString("    let i = i32(gid.x);\n")
	sb.WriteString("    if (i >= p_total_shape_out) {\n        return;\n    }\n")
	sb.WriteString(k.body)
	sb.WriteString("}\n")

	total := req.Output.TotalShape()
	return &Shader{
		Name:       req.Name,
		Source:     sb.String(),
		Bindings:   bindings,
		Workgroups: uint32((total + workgroupSize - 1) / workgroupSize),
	}, nil
}

// bindingsOf returns the bound roles indexed by slot.
func bindingsOf(params opfactory.Attrs) ([]string, error) {
	slots := make(map[int]string)
	maxSlot := -1
	for key := range params {
		role, ok := strings.CutPrefix(key, bindingPrefix)
		if !ok {
			continue
		}
		slot := opfactory.GetAttrInt(params, key, -1)
		if slot < 0 {
			return nil, errors.Wrapf(opfactory.ErrInvalidAttr, "%s = %v", key, params[key])
		}
		if other, dup := slots[slot]; dup {
			return nil, errors.Errorf("webgpu: tensors %q and %q share binding %d", other, role, slot)
		}
		slots[slot] = role
		maxSlot = max(maxSlot, slot)
	}
	bindings := make([]string, maxSlot+1)
	for slot, role := range slots {
		bindings[slot] = role
	}
	return bindings, nil
}

// writeConstants declares every representable parameter as an abstract WGSL constant,
// falling back to defaults for the names that are absent.
func writeConstants(sb *strings.Builder, params opfactory.Attrs, defaults map[string]string) {
	values := make(map[string]string, len(params)+len(defaults))
	for name, v := range defaults {
		values[identifier(name)] = v
	}
	for name, v := range params {
		if lit, ok := literal(v); ok {
			values[identifier(name)] = lit
		}
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString("const p_" + name + " = " + values[name] + ";\n")
	}
}

// identifier maps a parameter name to a WGSL identifier fragment.
func identifier(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
}

// literal renders a parameter value as a WGSL literal. Strings are rendered only when
// they hold a number; empty lists and other values are not representable.
func literal(v any) (string, bool) {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.Itoa(int(x)), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float32:
		return floatLiteral(float64(x))
	case float64:
		return floatLiteral(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return "", false
		}
		return floatLiteral(f)
	case []int:
		return listLiteral(len(x), func(i int) (string, bool) { return strconv.Itoa(x[i]), true })
	case []float64:
		return listLiteral(len(x), func(i int) (string, bool) { return floatLiteral(x[i]) })
	case []float32:
		return listLiteral(len(x), func(i int) (string, bool) { return floatLiteral(float64(x[i])) })
	}
	return "", false
}

func floatLiteral(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, true
}

func listLiteral(n int, item func(i int) (string, bool)) (string, bool) {
	if n == 0 {
		return "", false
	}
	parts := make([]string, n)
	for i := range parts {
		s, ok := item(i)
		if !ok {
			return "", false
		}
		parts[i] = s
	}
	return "array(" + strings.Join(parts, ", ") + ")", true
}
