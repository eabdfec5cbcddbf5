package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/born-ml/opfactory/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBehaviorsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "behaviors",
		Short: "List the behaviors run for every operator kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := model.Behaviors()
			if v.IsSet(keyBehaviors) {
				for key, names := range v.GetStringMapStringSlice(keyBehaviors) {
					if len(names) == 0 {
						delete(table, key)
						continue
					}
					table[key] = names
				}
			}

			prefix := v.GetString(keyBackend) + "_"
			t := newPlainTable(true).Headers("Operator", "Behaviors")
			for _, key := range slices.Sorted(maps.Keys(table)) {
				op, ok := strings.CutPrefix(key, prefix)
				if !ok {
					continue
				}
				t.Row(op, strings.Join(table[key], ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
