//go:build windows

package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/opfactory/internal/opfactory"
	"github.com/go-webgpu/webgpu/wgpu"
	"k8s.io/klog/v2"
)

// Program is a compiled compute pipeline ready to be bound and dispatched.
type Program struct {
	*Shader
	Pipeline *wgpu.ComputePipeline
}

// ProgramBackend compiles generated shaders into compute pipelines.
// Pipelines are cached by shader source, so identical operators share one.
// It is safe for concurrent use.
type ProgramBackend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device

	mu        sync.RWMutex
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
}

// Compile-time check that ProgramBackend implements opfactory.ProgramBackend.
var _ opfactory.ProgramBackend = (*ProgramBackend)(nil)

// New creates a program backend on the high-performance adapter.
func New() (backend *ProgramBackend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request adapter: %w", ErrUnavailable, adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request device: %w", ErrUnavailable, deviceErr)
	}

	return &ProgramBackend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// CreateProgram implements opfactory.ProgramBackend.
func (b *ProgramBackend) CreateProgram(req opfactory.ProgramRequest) (opfactory.Program, error) {
	shader, err := Generate(req)
	if err != nil {
		return nil, err
	}
	pipeline, err := b.getOrCreatePipeline(shader)
	if err != nil {
		return nil, err
	}
	return &Program{Shader: shader, Pipeline: pipeline}, nil
}

// getOrCreatePipeline returns a cached ComputePipeline or compiles a new one.
func (b *ProgramBackend) getOrCreatePipeline(shader *Shader) (*wgpu.ComputePipeline, error) {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[shader.Source]; exists {
		b.mu.RUnlock()
		return pipeline, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.device == nil {
		return nil, fmt.Errorf("webgpu: backend released")
	}
	if pipeline, exists := b.pipelines[shader.Source]; exists {
		return pipeline, nil
	}

	module := b.device.CreateShaderModuleWGSL(shader.Source)
	if module == nil {
		return nil, fmt.Errorf("webgpu: failed to compile shader %q", shader.Name)
	}
	// Create compute pipeline with auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, module, "main")
	if pipeline == nil {
		module.Release()
		return nil, fmt.Errorf("webgpu: failed to create pipeline %q", shader.Name)
	}
	b.shaders[shader.Source] = module
	b.pipelines[shader.Source] = pipeline
	klog.V(2).Infof("webgpu: compiled pipeline %q (%d cached)", shader.Name, len(b.pipelines))
	return pipeline, nil
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *ProgramBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}
