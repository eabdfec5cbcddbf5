package opfactory

import (
	"github.com/born-ml/opfactory/internal/catalog"
	"github.com/born-ml/opfactory/internal/tensor"
)

// FeedMarker as the first entry of an input list means "substitute the external feed".
const FeedMarker = "image"

// OperatorSpec is the raw declaration of one compiled unit, as produced by the loader.
type OperatorSpec struct {
	Type     string              // Operator kind, e.g. "conv2d" or "conv2d-elementwise_add".
	Inputs   map[string][]string // Raw role name → variable names.
	Outputs  map[string][]string // Raw role name → variable names.
	Attrs    Attrs               // Operator attributes.
	SubAttrs []Attrs             // Attribute sets of the fused ops, in order. Empty unless fused.
	IsPacked bool                // Whether the operator uses the packed texture layout.
}

// Source tells where a bound tensor comes from.
type Source int

// Binding sources.
const (
	SourceCatalog Source = iota
	SourceFeed
	SourceSynthetic
)

// Binding is one tensor bound to an operator: a working copy of a variable tagged with
// its role. Behaviors edit Shape freely; the Compiler stages the edits of catalog-backed
// bindings once the operator compiled.
type Binding struct {
	Name   string       // Variable name.
	Role   Role         // RoleNone only for roleless outputs kept in OpData.Outputs.
	Shape  tensor.Shape // Working shape.
	Data   []float32    // Weight data, nil for intermediate tensors.
	Slot   catalog.SlotID
	Source Source
}
