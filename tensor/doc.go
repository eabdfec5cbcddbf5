// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor describes how model tensors are laid out in GPU textures.
//
// # Overview
//
// Every tensor bound to a program is described by a Descriptor. This package provides:
//   - Shapes of rank up to 4, canonicalized to [b, c, h, w]
//   - Texture layouts (unpacked and 2x2 packed)
//   - The per-tensor shader attributes programs are specialized with
//
// # Basic Usage
//
//	import "github.com/born-ml/opfactory/tensor"
//
//	d, err := tensor.NewDescriptor(tensor.DescriptorOptions{
//	    Name:     "origin",
//	    Variable: "image",
//	    Shape:    tensor.Shape{1, 3, 224, 224},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(d.TextureWidth(), d.TextureHeight()) // 672 224
//
// # Attributes
//
// Descriptor.Attrs returns the layout attributes (length_shape, width_shape,
// height_shape, width_texture, height_texture, limit, channel, total_shape and
// binding). Compiled operators expose them as "<attr>_<role>" shader parameters,
// for example "width_shape_origin".
//
// # Texture Limits
//
// When the unpacked texture would exceed MaxTextureSize on either edge, the width is
// folded by four and the limit attribute is set to LimitSuffix.
package tensor
