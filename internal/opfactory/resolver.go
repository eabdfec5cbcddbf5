package opfactory

import (
	"maps"
	"slices"

	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// resolver binds raw operator names to catalog variables and canonical roles.
//
// It is permissive by default: raw names outside the role dictionary and names missing
// from the catalog are dropped with a warning. In strict mode both are errors.
type resolver struct {
	catalog *catalog.Catalog
	strict  bool
}

// resolve fills op.Tensors, op.Inputs and op.Outputs. Outputs are bound before inputs;
// raw keys are visited in sorted order.
func (r *resolver) resolve(op *OpData, spec *OperatorSpec, feed []catalog.Variable) error {
	for _, key := range slices.Sorted(maps.Keys(spec.Outputs)) {
		role, hasRole := RoleFor(key)
		if !hasRole {
			if err := r.unmapped(op, "output", key); err != nil {
				return err
			}
		}
		for _, name := range spec.Outputs[key] {
			b, err := r.fromCatalog(op, name)
			if err != nil {
				return err
			}
			if b == nil {
				continue
			}
			b.Role = role
			op.Outputs[key] = append(op.Outputs[key], b)
			if hasRole {
				op.Tensors = append(op.Tensors, b)
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(spec.Inputs)) {
		names := spec.Inputs[key]
		if len(names) == 0 {
			continue
		}
		var bound []*Binding
		if names[0] == FeedMarker {
			for _, v := range feed {
				bound = append(bound, &Binding{
					Name:   v.Name,
					Shape:  v.Shape.Clone(),
					Data:   v.Data,
					Slot:   catalog.NoSlot,
					Source: SourceFeed,
				})
			}
		} else {
			b, err := r.fromCatalog(op, names[0])
			if err != nil {
				return err
			}
			if b != nil {
				bound = append(bound, b)
			}
			if len(names) > 1 {
				klog.V(2).Infof("op %s: input %s binds only the first of %d variables", op.Type, key, len(names))
			}
		}
		op.Inputs[key] = bound

		role, hasRole := RoleFor(key)
		if !hasRole {
			if err := r.unmapped(op, "input", key); err != nil {
				return err
			}
			continue
		}
		if len(bound) == 0 {
			continue
		}
		bound[0].Role = role
		op.Tensors = append(op.Tensors, bound[0])
	}
	return nil
}

// fromCatalog returns a binding for the first variable with the name, or nil when it is
// absent and the resolver is permissive.
func (r *resolver) fromCatalog(op *OpData, name string) (*Binding, error) {
	id, ok := r.catalog.Lookup(name)
	if !ok {
		if r.strict {
			return nil, errors.Wrapf(ErrMissingVariable, "%q", name)
		}
		klog.Warningf("op %s (layer %d): variable %q not found in catalog, dropped", op.Type, op.Layer, name)
		return nil, nil
	}
	v, err := r.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	return &Binding{
		Name:   v.Name,
		Shape:  v.Shape,
		Data:   v.Data,
		Slot:   id,
		Source: SourceCatalog,
	}, nil
}

func (r *resolver) unmapped(op *OpData, direction, key string) error {
	if r.strict {
		return errors.Wrapf(ErrUnmappedTensor, "%s %q", direction, key)
	}
	klog.Warningf("op %s (layer %d): %s %q has no role, not bound to the program", op.Type, op.Layer, direction, key)
	return nil
}
