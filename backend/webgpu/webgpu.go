// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU program backend.
//
// Programs are WGSL compute shaders generated from the compiled operator and built into
// compute pipelines on the device. Pipelines are cached by shader source, so operators
// with identical parameters share one.
//
// Device support follows go-webgpu: Windows today. On other platforms New returns
// ErrUnavailable, while Generate works everywhere.
//
// Example:
//
//	import (
//	    "github.com/born-ml/opfactory/backend/webgpu"
//	    "github.com/born-ml/opfactory/model"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    opts := model.DefaultLoadOptions()
//	    opts.Compiler.Backend = model.BackendWebGPU
//	    m, err := model.Load("model.json", gpu, opts)
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/opfactory/internal/backend/webgpu"
	"github.com/born-ml/opfactory/internal/opfactory"
)

// ProgramBackend compiles operators into WebGPU compute pipelines.
type ProgramBackend = internalwebgpu.ProgramBackend

// Program is the handle of one compiled operator.
type Program = internalwebgpu.Program

// Shader is a generated WGSL compute shader.
type Shader = internalwebgpu.Shader

// Compile-time check that ProgramBackend implements opfactory.ProgramBackend.
var _ opfactory.ProgramBackend = (*ProgramBackend)(nil)

var (
	// ErrUnavailable is returned when no WebGPU device can be opened.
	ErrUnavailable = internalwebgpu.ErrUnavailable

	// ErrUnsupportedProgram is returned for program names without a WGSL kernel.
	ErrUnsupportedProgram = internalwebgpu.ErrUnsupportedProgram
)

// New creates a new WebGPU program backend.
//
// Call Release() when done to free GPU resources.
//
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func New() (*ProgramBackend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system.
//
// Example:
//
//	var backend model.ProgramBackend = recording.New()
//	if webgpu.IsAvailable() {
//	    gpu, _ := webgpu.New()
//	    backend = gpu
//	}
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// Generate returns the WGSL shader for a program request without touching a device.
func Generate(req opfactory.ProgramRequest) (*Shader, error) {
	return internalwebgpu.Generate(req)
}

// ProgramRequest describes one program to generate.
type ProgramRequest = opfactory.ProgramRequest
