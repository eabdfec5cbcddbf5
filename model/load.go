// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model loads JSON model descriptions and compiles them into GPU programs.
//
// # Example Usage
//
//	import (
//	    "github.com/born-ml/opfactory/backend/recording"
//	    "github.com/born-ml/opfactory/model"
//	    "github.com/born-ml/opfactory/tensor"
//	)
//
//	backend := recording.New()
//	m, err := model.Load("mobilenet.json", backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	compiled, err := m.Compile([]model.Variable{{Name: "image", Shape: tensor.Shape{1, 3, 224, 224}}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Programs:", compiled.Programs())
//
// # Behaviors
//
// Before programs are generated every operator runs the behaviors registered for its
// kind and backend: shape inference (reshape2, flatten2, mul), attribute normalization
// (conv2d paddings, pooling type, axes) and fusion merging. Use [Behaviors] to list the
// built-in table and LoadOptions to override it.
package model

import (
	internalmodel "github.com/born-ml/opfactory/internal/model"
	"github.com/born-ml/opfactory/internal/opfactory"
)

// LoadOptions configures model loading and compilation.
type LoadOptions = internalmodel.LoadOptions

// CompilerOptions configures the operator compiler.
type CompilerOptions = opfactory.Options

// ProgramBackend creates the programs of compiled operators.
type ProgramBackend = opfactory.ProgramBackend

// Backend kinds with a built-in behavior table.
const (
	BackendWebGL  = opfactory.BackendWebGL
	BackendWebGPU = opfactory.BackendWebGPU
)

// DefaultLoadOptions returns the default options for loading models.
//
// Default configuration:
//   - Backend: webgl
//   - Strict mode: disabled (unknown names are dropped with a warning)
//   - MaxTextureSize: 4096
//   - VerifyOrder: disabled
func DefaultLoadOptions() LoadOptions {
	return internalmodel.DefaultLoadOptions()
}

// Load loads a JSON model from a file path.
//
// For custom loading options, pass LoadOptions:
//
//	opts := model.DefaultLoadOptions()
//	opts.Compiler.Strict = true // Fail on names outside the role dictionary
//	m, err := model.Load("model.json", backend, opts)
func Load(path string, backend ProgramBackend, opts ...LoadOptions) (Model, error) {
	m, err := internalmodel.Load(path, backend, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFromBytes loads a JSON model from raw bytes.
//
// This is useful when the model is embedded in the binary or loaded
// from a network source.
func LoadFromBytes(data []byte, backend ProgramBackend, opts ...LoadOptions) (Model, error) {
	m, err := internalmodel.LoadFromBytes(data, backend, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Behaviors returns the built-in behavior table: "<backend>_<op>" keys mapped to the
// ordered behavior names.
func Behaviors() map[string][]string {
	return opfactory.NewRegistry().Table()
}
