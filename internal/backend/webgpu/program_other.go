//go:build !windows

package webgpu

import (
	"github.com/born-ml/opfactory/internal/opfactory"
)

// Program is a generated shader. Pipelines are only compiled where go-webgpu is supported.
type Program struct {
	*Shader
}

// ProgramBackend is unavailable on this platform.
type ProgramBackend struct{}

// Compile-time check that ProgramBackend implements opfactory.ProgramBackend.
var _ opfactory.ProgramBackend = (*ProgramBackend)(nil)

// New always fails with ErrUnavailable on this platform.
func New() (*ProgramBackend, error) {
	return nil, ErrUnavailable
}

// CreateProgram implements opfactory.ProgramBackend.
func (b *ProgramBackend) CreateProgram(opfactory.ProgramRequest) (opfactory.Program, error) {
	return nil, ErrUnavailable
}

// Release is a no-op.
func (b *ProgramBackend) Release() {}

// IsAvailable reports false on this platform.
func IsAvailable() bool { return false }
