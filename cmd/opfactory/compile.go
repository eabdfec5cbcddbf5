package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/opfactory/backend/recording"
	"github.com/born-ml/opfactory/backend/webgpu"
	"github.com/born-ml/opfactory/model"
	"github.com/born-ml/opfactory/tensor"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

func newCompileCmd(v *viper.Viper) *cobra.Command {
	var (
		feeds []string
		wgsl  bool
	)
	cmd := &cobra.Command{
		Use:   "compile <model.json>",
		Short: "Compile every operator of a model and list the programs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := parseFeeds(feeds)
			if err != nil {
				return err
			}
			opts, err := loadOptions(v)
			if err != nil {
				return err
			}
			return runCompile(cmd.OutOrStdout(), args[0], feed, opts, wgsl)
		},
	}
	cmd.Flags().StringArrayVar(&feeds, "feed", nil, "input shape as name=d0,d1,...; repeatable")
	cmd.Flags().Bool(keyStrict, false, "fail on tensor names without a role or missing from the model")
	cmd.Flags().Int(keyMaxTextureSize, tensor.DefaultMaxTextureSize, "largest texture edge of the device")
	cmd.Flags().Bool(keyVerifyOrder, false, "reject operators that read variables produced later")
	cmd.Flags().BoolVar(&wgsl, "wgsl", false, "print the WGSL shader of every program")
	return cmd
}

// loadOptions reads the compiler configuration from v.
func loadOptions(v *viper.Viper) (model.LoadOptions, error) {
	opts := model.DefaultLoadOptions()
	opts.Compiler.Backend = v.GetString(keyBackend)
	opts.Compiler.Strict = v.GetBool(keyStrict)
	opts.Compiler.MaxTextureSize = v.GetInt(keyMaxTextureSize)
	opts.VerifyOrder = v.GetBool(keyVerifyOrder)
	if v.IsSet(keyBehaviors) {
		opts.Compiler.Behaviors = v.GetStringMapStringSlice(keyBehaviors)
	}
	switch opts.Compiler.Backend {
	case model.BackendWebGL, model.BackendWebGPU:
	default:
		return opts, errors.Errorf("unknown backend %q, want %q or %q",
			opts.Compiler.Backend, model.BackendWebGL, model.BackendWebGPU)
	}
	return opts, nil
}

// parseFeeds parses "name=d0,d1,..." input declarations.
func parseFeeds(feeds []string) ([]model.Variable, error) {
	vars := make([]model.Variable, 0, len(feeds))
	for _, f := range feeds {
		name, dims, ok := strings.Cut(f, "=")
		if !ok || name == "" || dims == "" {
			return nil, errors.Errorf("invalid feed %q, want name=d0,d1,...", f)
		}
		var shape tensor.Shape
		for _, d := range strings.Split(dims, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(d))
			if err != nil {
				return nil, errors.Wrapf(err, "invalid feed %q", f)
			}
			shape = append(shape, n)
		}
		if err := shape.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "invalid feed %q", f)
		}
		vars = append(vars, model.Variable{Name: name, Shape: shape})
	}
	return vars, nil
}

// newBackend returns the program backend for the kind and a function releasing it.
// Without a WebGPU device, webgpu programs are recorded instead.
func newBackend(kind string) (model.ProgramBackend, func(), error) {
	if kind == model.BackendWebGL {
		return recording.NewRender(), func() {}, nil
	}
	if !webgpu.IsAvailable() {
		klog.Warningf("WebGPU is not available, recording programs instead")
		return recording.New(), func() {}, nil
	}
	gpu, err := webgpu.New()
	if err != nil {
		return nil, nil, err
	}
	return gpu, gpu.Release, nil
}

func runCompile(w io.Writer, path string, feed []model.Variable, opts model.LoadOptions, wgsl bool) error {
	backend, release, err := newBackend(opts.Compiler.Backend)
	if err != nil {
		return err
	}
	defer release()

	m, err := model.Load(path, backend, opts)
	if err != nil {
		return err
	}
	compiled, err := m.Compile(feed)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, titleStyle.Render(path))
	fmt.Fprintln(w, summaryTable(m, compiled, opts).Render())
	fmt.Fprintln(w, programsTable(compiled.Ops).Render())
	if wgsl {
		printShaders(w, compiled.Ops)
	}
	return nil
}

// printShaders writes the WGSL source of every program. Programs without a kernel are
// reported and skipped.
func printShaders(w io.Writer, ops []*model.OpData) {
	for _, op := range ops {
		for i, out := range op.OutputTensors {
			shader, err := webgpu.Generate(webgpu.ProgramRequest{
				Name:    op.Name,
				Output:  out,
				Params:  op.ShaderParams[i],
				Runtime: i,
				Packed:  op.Packed,
			})
			if err != nil {
				klog.Warningf("layer %d (%s): %v", op.Layer, op.Name, err)
				continue
			}
			fmt.Fprintf(w, "// layer %d: %s, %s workgroups\n%s\n",
				op.Layer, shader.Name, humanize.Comma(int64(shader.Workgroups)), shader.Source)
		}
	}
}
