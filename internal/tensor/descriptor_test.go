package tensor

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorUnpacked(t *testing.T) {
	d, err := NewDescriptor(DescriptorOptions{
		Name:     "origin",
		Variable: "conv1.tmp_0",
		Shape:    Shape{1, 16, 7, 7},
		Binding:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, Shape{1, 16, 7, 7}, d.Canonical())
	assert.Equal(t, 4, d.LengthShape())
	assert.Equal(t, 7, d.WidthShape())
	assert.Equal(t, 7, d.HeightShape())
	assert.Equal(t, 16, d.Channel())
	assert.Equal(t, 16*7*7, d.TotalShape())
	assert.Equal(t, 16*7, d.TextureWidth())
	assert.Equal(t, 7, d.TextureHeight())
	assert.Equal(t, "", d.Limit())

	attrs := d.Attrs()
	require.Len(t, attrs, len(LayoutAttrs))
	for _, name := range LayoutAttrs {
		assert.Contains(t, attrs, name)
	}
	assert.Equal(t, 2, attrs["binding"])
}

func TestDescriptorLowRank(t *testing.T) {
	d, err := NewDescriptor(DescriptorOptions{Name: "bias", Shape: Shape{8}})
	require.NoError(t, err)
	assert.Equal(t, 1, d.LengthShape())
	assert.Equal(t, 8, d.WidthShape())
	assert.Equal(t, 1, d.HeightShape())
	assert.Equal(t, 1, d.Channel())
	assert.Equal(t, 8, d.TextureWidth())
	assert.Equal(t, 1, d.TextureHeight())
}

func TestDescriptorFoldsLargeTextures(t *testing.T) {
	d, err := NewDescriptor(DescriptorOptions{
		Name:     "origin",
		Shape:    Shape{1, 64, 8, 100},
		Unpacked: UnpackedLayout{MaxTextureSize: 4096},
	})
	require.NoError(t, err)
	// 64*100 = 6400 > 4096
	assert.Equal(t, 64*25, d.TextureWidth())
	assert.Equal(t, 8*4, d.TextureHeight())
	assert.Equal(t, LimitSuffix, d.Limit())
}

func TestDescriptorPacked(t *testing.T) {
	d, err := NewDescriptor(DescriptorOptions{
		Name:   "out",
		Shape:  Shape{1, 3, 5, 5},
		Packed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, d.TextureWidth())
	assert.Equal(t, 1*3*3, d.TextureHeight())
	assert.Equal(t, "", d.Limit())
}

type fixedLayout struct{}

func (fixedLayout) TextureSize(Shape) (int, int, bool) { return 11, 13, false }

func TestDescriptorCustomPackedLayout(t *testing.T) {
	d, err := NewDescriptor(DescriptorOptions{
		Shape:        Shape{2, 2},
		Packed:       true,
		PackedLayout: fixedLayout{},
	})
	require.NoError(t, err)
	assert.Equal(t, 11, d.TextureWidth())
	assert.Equal(t, 13, d.TextureHeight())
}

func TestDescriptorRejectsInvalidShapes(t *testing.T) {
	_, err := NewDescriptor(DescriptorOptions{Name: "origin", Shape: Shape{1, 2, 3, 4, 5}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRankExceeded))

	_, err = NewDescriptor(DescriptorOptions{Name: "origin", Shape: Shape{0, 3}})
	require.Error(t, err)
}
