package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/opfactory/model"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				return s.Align(lipgloss.Right)
			}
			return s.Align(lipgloss.Left)
		})
}

func summaryTable(m model.Model, compiled *model.Compiled, opts model.LoadOptions) *lgtable.Table {
	var params int64
	for _, v := range m.Variables() {
		if v.Persistable {
			params += int64(len(v.Data))
		}
	}
	return newPlainTable(false).
		Row("backend", opts.Compiler.Backend).
		Row("inputs", strings.Join(m.InputNames(), ", ")).
		Row("outputs", strings.Join(m.OutputNames(), ", ")).
		Row("# operators", humanize.Comma(int64(len(compiled.Ops)))).
		Row("# programs", humanize.Comma(int64(compiled.Programs()))).
		Row("# parameters", humanize.Comma(params)).
		Row("# bytes", humanize.Bytes(m.WeightBytes()))
}

func programsTable(ops []*model.OpData) *lgtable.Table {
	t := newPlainTable(true).Headers("Layer", "Type", "Program", "Inputs", "Output", "Texture")
	for _, op := range ops {
		var inputs []string
		for _, d := range op.InputTensors {
			inputs = append(inputs, fmt.Sprintf("%s=%s%v", d.Name, d.Variable, d.Shape))
		}
		for _, out := range op.OutputTensors {
			t.Row(strconv.Itoa(op.Layer), op.Type, op.Name, strings.Join(inputs, " "),
				fmt.Sprintf("%s%v", out.Variable, out.Shape),
				fmt.Sprintf("%dx%d", out.TextureWidth(), out.TextureHeight()))
		}
	}
	return t
}
