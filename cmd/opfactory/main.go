// Package main provides the opfactory CLI.
//
// It loads a JSON model, compiles every operator for the selected backend and reports
// the programs it produced:
//
//	opfactory compile --feed image=1,3,224,224 mobilenet.json
//	opfactory compile --backend webgpu --wgsl mobilenet.json
//	opfactory behaviors --backend webgl
//
// Flags can also be set from a config file (--config) or OPFACTORY_* environment
// variables. Only the config file can override behaviors:
//
//	backend: webgl
//	strict: true
//	behaviors:
//	  webgl_softmax: [axisNormalize, broadcastAxisResolve]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

const version = "v0.0.1-dev"

// Configuration keys, shared by flags, config file and environment.
const (
	keyBackend        = "backend"
	keyStrict         = "strict"
	keyMaxTextureSize = "max-texture-size"
	keyVerifyOrder    = "verify-order"
	keyBehaviors      = "behaviors"
)

func main() {
	klog.InitFlags(nil)
	if err := newRootCmd().Execute(); err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCmd() *cobra.Command {
	var configFile string
	v := viper.New()

	root := &cobra.Command{
		Use:           "opfactory",
		Short:         "Compile model operators into GPU programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd, configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String(keyBackend, "webgl", "backend behavior table: webgl or webgpu")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newCompileCmd(v), newBehaviorsCmd(v), newVersionCmd())
	return root
}

// loadConfig layers flags over environment over the config file.
func loadConfig(v *viper.Viper, cmd *cobra.Command, configFile string) error {
	v.SetEnvPrefix("OPFACTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config %q", configFile)
		}
		klog.V(1).Infof("Using config %s", v.ConfigFileUsed())
	}
	return errors.WithStack(v.BindPFlags(cmd.Flags()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opfactory %s\n", version)
		},
	}
}
