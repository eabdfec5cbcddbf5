package opfactory

import (
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Backend kinds with a built-in behavior table.
const (
	BackendWebGL  = "webgl"
	BackendWebGPU = "webgpu"
)

// Registry maps (backend kind, operator kind) pairs to the ordered behaviors to run.
type Registry struct {
	behaviors map[string][]Behavior
}

// registryKey joins backend and operator kind the way configuration files spell it,
// e.g. "webgl_conv2d".
func registryKey(backend, op string) string {
	return backend + "_" + op
}

// defaultBehaviors is the behavior table shared by the built-in backends.
var defaultBehaviors = map[string][]Behavior{
	"conv2d": {
		BehaviorPaddingCompat, BehaviorSeparableConvDetect, BehaviorConv2DVectorizeHint,
	},
	"depthwise_conv2d": {
		BehaviorPaddingCompat, BehaviorSeparableConvDetect, BehaviorConv2DVectorizeHint,
	},
	"conv2d_transpose": {
		BehaviorPaddingCompat, BehaviorSeparableConvDetect,
	},
	"conv2d-elementwise_add": {
		BehaviorFuseAttributes, BehaviorPaddingCompat, BehaviorSeparableConvDetect, BehaviorConv2DVectorizeHint,
	},
	// The activation rewrite reads the fused name, so it runs before any specialization suffix.
	"conv2d-elementwise_add-leaky_relu": {
		BehaviorFuseAttributes, BehaviorFusedActivationRewrite,
		BehaviorPaddingCompat, BehaviorSeparableConvDetect, BehaviorConv2DVectorizeHint,
	},
	"pool2d": {
		BehaviorPoolingTypeEncode, BehaviorGlobalPoolingAdapt,
	},
	"elementwise_add": {BehaviorBroadcastAxisResolve},
	"elementwise_sub": {BehaviorBroadcastAxisResolve},
	"elementwise_mul": {BehaviorBroadcastAxisResolve},
	"elementwise_div": {BehaviorBroadcastAxisResolve},
	"mul":             {BehaviorReshapeRoleAdapt},
	"matmul":          {BehaviorReshapeRoleAdapt},
	"reshape2":        {BehaviorReshapeInfer},
	"transpose2":      {BehaviorPermutationCompute},
	"concat":          {BehaviorAxisNormalize, BehaviorAxisNormalizeSecondary},
	"softmax":         {BehaviorAxisNormalize},
	"one_hot":         {BehaviorAxisNormalize},
	"flatten2":        {BehaviorFlattenTo2D},
	"fc":              {BehaviorFlattenTo2D},
	"leaky_relu":      {BehaviorActivationLeakyReLU},
	"relu6":           {BehaviorActivationReLU6},
	"prelu":           {BehaviorActivationPRelu},
}

// NewRegistry creates a registry with the built-in tables for the webgl and webgpu backends.
func NewRegistry() *Registry {
	r := &Registry{
		behaviors: make(map[string][]Behavior),
	}
	for _, backend := range []string{BackendWebGL, BackendWebGPU} {
		for op, behaviors := range defaultBehaviors {
			r.Register(backend, op, behaviors...)
		}
	}
	return r
}

// Register sets the behaviors of an operator kind on a backend, replacing previous ones.
// Registering no behaviors removes the entry.
func (r *Registry) Register(backend, op string, behaviors ...Behavior) {
	key := registryKey(backend, op)
	if len(behaviors) == 0 {
		delete(r.behaviors, key)
		return
	}
	r.behaviors[key] = slices.Clone(behaviors)
}

// Behaviors returns the ordered behaviors for the pair, empty when none are registered.
func (r *Registry) Behaviors(backend, op string) []Behavior {
	return slices.Clone(r.behaviors[registryKey(backend, op)])
}

// Configure replaces entries from string configuration: keys are "<backend>_<op>" and
// values behavior names (see Behavior.String). Nothing is changed if any name is unknown.
func (r *Registry) Configure(entries map[string][]string) error {
	parsed := make(map[string][]Behavior, len(entries))
	for key, names := range entries {
		if !strings.Contains(key, "_") {
			return errors.Errorf("behavior key %q is not of the form <backend>_<op>", key)
		}
		behaviors := make([]Behavior, 0, len(names))
		for _, name := range names {
			b, err := ParseBehavior(name)
			if err != nil {
				return errors.WithMessagef(err, "behaviors for %q", key)
			}
			behaviors = append(behaviors, b)
		}
		parsed[key] = behaviors
	}
	for key, behaviors := range parsed {
		if len(behaviors) == 0 {
			delete(r.behaviors, key)
			continue
		}
		r.behaviors[key] = behaviors
	}
	return nil
}

// Keys returns all registered "<backend>_<op>" keys in sorted order.
func (r *Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r.behaviors))
}

// Table returns a copy of every entry as behavior names keyed by "<backend>_<op>".
func (r *Registry) Table() map[string][]string {
	table := make(map[string][]string, len(r.behaviors))
	for key, behaviors := range r.behaviors {
		names := make([]string, len(behaviors))
		for i, b := range behaviors {
			names[i] = b.String()
		}
		table[key] = names
	}
	return table
}
