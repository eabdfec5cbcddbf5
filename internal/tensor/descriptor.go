package tensor

import (
	"github.com/pkg/errors"
)

// LimitSuffix is the value of the "limit" attribute for textures that had to be folded
// to fit the device. Shaders append it to select the bounded accessor variant.
const LimitSuffix = "Limit"

// LayoutAttrs lists, in order, the per-tensor attributes a shader receives for every
// tensor bound to a program. Each name is suffixed with "_" + the tensor's role.
var LayoutAttrs = []string{
	"length_shape",
	"width_shape",
	"height_shape",
	"width_texture",
	"height_texture",
	"limit",
	"channel",
	"total_shape",
	"binding",
}

// DescriptorOptions configures NewDescriptor.
type DescriptorOptions struct {
	Name     string    // Role name, used to suffix shader attributes ("origin", "out", ...).
	Variable string    // Variable name in the model.
	Shape    Shape     // Resolved shape, rank 0-4.
	Data     []float32 // Weight data, nil for intermediate tensors.
	Packed   bool      // Whether this tensor uses the packed layout.
	Binding  int       // Binding slot of this tensor within its operator.

	// Layout used when Packed is false. Defaults to UnpackedLayout with DefaultMaxTextureSize.
	Unpacked Layout
	// Layout used when Packed is true. Defaults to PackedLayout.
	PackedLayout Layout
}

// Descriptor holds the addressing metadata a GPU program needs for one tensor.
type Descriptor struct {
	Name     string
	Variable string
	Shape    Shape // Shape as resolved, before padding.
	Data     []float32
	Packed   bool
	Binding  int

	canonical     Shape
	widthTexture  int
	heightTexture int
	folded        bool
}

// NewDescriptor builds the descriptor of one tensor. It fails for shapes with more than
// MaxRank axes or non-positive dimensions.
func NewDescriptor(opts DescriptorOptions) (*Descriptor, error) {
	if err := opts.Shape.Validate(); err != nil {
		return nil, errors.Wrapf(err, "tensor %q (%s)", opts.Variable, opts.Name)
	}
	canonical, err := opts.Shape.Pad4()
	if err != nil {
		return nil, errors.WithMessagef(err, "tensor %q (%s)", opts.Variable, opts.Name)
	}

	layout := opts.Unpacked
	if layout == nil {
		layout = UnpackedLayout{MaxTextureSize: DefaultMaxTextureSize}
	}
	if opts.Packed {
		layout = opts.PackedLayout
		if layout == nil {
			layout = PackedLayout{}
		}
	}
	width, height, folded := layout.TextureSize(canonical)

	return &Descriptor{
		Name:          opts.Name,
		Variable:      opts.Variable,
		Shape:         opts.Shape.Clone(),
		Data:          opts.Data,
		Packed:        opts.Packed,
		Binding:       opts.Binding,
		canonical:     canonical,
		widthTexture:  width,
		heightTexture: height,
		folded:        folded,
	}, nil
}

// Canonical returns the shape padded to four axes: [b, c, h, w].
func (d *Descriptor) Canonical() Shape {
	return d.canonical.Clone()
}

// LengthShape returns the rank of the resolved (unpadded) shape.
func (d *Descriptor) LengthShape() int { return len(d.Shape) }

// WidthShape returns the innermost canonical extent.
func (d *Descriptor) WidthShape() int { return d.canonical[3] }

// HeightShape returns the second innermost canonical extent.
func (d *Descriptor) HeightShape() int { return d.canonical[2] }

// Channel returns the canonical channel extent.
func (d *Descriptor) Channel() int { return d.canonical[1] }

// TotalShape returns the total number of elements.
func (d *Descriptor) TotalShape() int { return d.canonical.NumElements() }

// TextureWidth returns the width of the backing texture in texels.
func (d *Descriptor) TextureWidth() int { return d.widthTexture }

// TextureHeight returns the height of the backing texture in texels.
func (d *Descriptor) TextureHeight() int { return d.heightTexture }

// Limit returns LimitSuffix when the texture was folded to fit the device, "" otherwise.
func (d *Descriptor) Limit() string {
	if d.folded {
		return LimitSuffix
	}
	return ""
}

// Attrs returns the layout attributes keyed by their unsuffixed names (see LayoutAttrs).
func (d *Descriptor) Attrs() map[string]any {
	return map[string]any{
		"length_shape":   d.LengthShape(),
		"width_shape":    d.WidthShape(),
		"height_shape":   d.HeightShape(),
		"width_texture":  d.TextureWidth(),
		"height_texture": d.TextureHeight(),
		"limit":          d.Limit(),
		"channel":        d.Channel(),
		"total_shape":    d.TotalShape(),
		"binding":        d.Binding,
	}
}
