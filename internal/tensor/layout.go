package tensor

// DefaultMaxTextureSize is the largest texture edge most mobile GPUs accept.
const DefaultMaxTextureSize = 4096

// Layout decides how a canonical [b, c, h, w] tensor is stored in a 2D texture.
type Layout interface {
	// TextureSize returns the texture width and height for the canonical shape,
	// and whether the default arrangement exceeded the device limit and was folded.
	TextureSize(canonical Shape) (width, height int, folded bool)
}

// UnpackedLayout lays channels side by side: width = c*w, height = b*h.
// When either edge exceeds MaxTextureSize the texture is folded by four along the
// width so it still fits.
type UnpackedLayout struct {
	MaxTextureSize int
}

// TextureSize implements Layout.
func (l UnpackedLayout) TextureSize(canonical Shape) (width, height int, folded bool) {
	b, c, h, w := canonical[0], canonical[1], canonical[2], canonical[3]
	maxSize := l.MaxTextureSize
	if maxSize <= 0 {
		maxSize = DefaultMaxTextureSize
	}
	width = c * w
	height = b * h
	if width > maxSize || height > maxSize {
		height *= 4
		width = c * ceilDiv(w, 4)
		folded = true
	}
	return width, height, folded
}

// PackedLayout stores 2x2 spatial blocks in the four channels of one texel.
type PackedLayout struct{}

// TextureSize implements Layout.
func (PackedLayout) TextureSize(canonical Shape) (width, height int, folded bool) {
	b, c, h, w := canonical[0], canonical[1], canonical[2], canonical[3]
	return ceilDiv(w, 2), b * c * ceilDiv(h, 2), false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
