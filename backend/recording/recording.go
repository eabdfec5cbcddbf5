// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package recording provides program backends that record requests instead of
// compiling them.
//
// Use them to inspect what a model compiles to without a GPU:
//
//	import (
//	    "github.com/born-ml/opfactory/backend/recording"
//	    "github.com/born-ml/opfactory/model"
//	)
//
//	func main() {
//	    backend := recording.NewRender() // Also records WebGL render data.
//	    m, _ := model.Load("model.json", backend)
//	    compiled, _ := m.Compile(nil)
//	    for _, p := range backend.Programs() {
//	        fmt.Println(p.Name, p.Output.Shape)
//	    }
//	}
package recording

import (
	"github.com/born-ml/opfactory/internal/backend/recording"
	"github.com/born-ml/opfactory/internal/opfactory"
)

// Backend records program requests, like a WebGPU backend without the device.
type Backend = recording.Backend

// RenderBackend records programs and render data, like a WebGL backend without the device.
type RenderBackend = recording.RenderBackend

// Program is a recorded program request.
type Program = recording.Program

// RenderInput is the recorded render data of one operator input.
type RenderInput = recording.RenderInput

// Compile-time checks that the backends implement the compiler interfaces.
var (
	_ opfactory.ProgramBackend    = (*Backend)(nil)
	_ opfactory.RenderDataBackend = (*RenderBackend)(nil)
)

// New creates a recording backend.
func New() *Backend {
	return recording.New()
}

// NewRender creates a recording backend that also produces render data.
func NewRender() *RenderBackend {
	return recording.NewRender()
}
