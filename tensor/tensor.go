// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/opfactory/internal/tensor"

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Descriptor is the layout of one tensor bound to a program.
type Descriptor = tensor.Descriptor

// DescriptorOptions configures NewDescriptor.
type DescriptorOptions = tensor.DescriptorOptions

// Layout decides how a canonical tensor is stored in a 2D texture.
type Layout = tensor.Layout

// UnpackedLayout lays channels side by side.
type UnpackedLayout = tensor.UnpackedLayout

// PackedLayout stores 2x2 spatial blocks in the four channels of one texel.
type PackedLayout = tensor.PackedLayout

const (
	// MaxRank is the largest rank a tensor can have.
	MaxRank = tensor.MaxRank

	// DefaultMaxTextureSize is the default texture edge limit.
	DefaultMaxTextureSize = tensor.DefaultMaxTextureSize

	// LimitSuffix is the limit attribute of folded textures.
	LimitSuffix = tensor.LimitSuffix
)

// ErrRankExceeded is returned for shapes of rank greater than MaxRank.
var ErrRankExceeded = tensor.ErrRankExceeded

// NewDescriptor builds the descriptor of a tensor.
//
// Returns an error if the shape is invalid or has more than MaxRank dimensions.
func NewDescriptor(opts DescriptorOptions) (*Descriptor, error) {
	return tensor.NewDescriptor(opts)
}
