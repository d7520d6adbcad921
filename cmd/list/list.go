package list

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Category string `short:"c" help:"Only show one category: creational, structural or behavioral." default:""`
	Ready    bool   `short:"r" help:"Only show patterns that have an animation."`
	JSON     bool   `long:"json" help:"Output as JSON"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "list",
		Aliases:     []string{"ls"},
		Short:       "List the design patterns in the catalog",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if code := Run(params, os.Stdout, os.Stderr); code != 0 {
				os.Exit(code)
			}
		},
	}.ToCobra()
}

// row is one catalog entry with its step count, when it has a dataset.
type row struct {
	pattern.Entry
	Steps int `json:"steps,omitempty"`
}

func Run(params *Params, stdout, stderr io.Writer) int {
	entries := pattern.Catalog()

	if params.Category != "" {
		c := pattern.Category(strings.ToLower(params.Category))
		if !c.Valid() {
			names := lo.Map(pattern.Categories(), func(c pattern.Category, _ int) string { return string(c) })
			fmt.Fprintf(stderr, "unknown category %q (want one of %s)\n", params.Category, strings.Join(names, ", "))
			return 1
		}
		entries = pattern.ByCategory(c)
	}
	if params.Ready {
		entries = lo.Filter(entries, func(e pattern.Entry, _ int) bool { return e.Implemented })
	}

	datasets, err := pattern.LoadAll()
	if err != nil {
		fmt.Fprintf(stderr, "load datasets: %v\n", err)
		return 1
	}
	steps := lo.SliceToMap(datasets, func(ds *pattern.Dataset) (string, int) { return ds.ID(), ds.StepCount() })

	rows := lo.Map(entries, func(e pattern.Entry, _ int) row {
		return row{Entry: e, Steps: steps[e.ID]}
	})

	if params.JSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Error marshaling JSON: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	renderTable(stdout, rows)
	return 0
}

func renderTable(w io.Writer, rows []row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(common.TermWidth())

	t.AppendHeader(table.Row{"Category", "Pattern", "ID", "Steps", "Status"})

	var last pattern.Category
	for _, r := range rows {
		category := ""
		if r.Category != last {
			if last != "" {
				t.AppendSeparator()
			}
			category = r.Category.Label()
			last = r.Category
		}

		steps, status := "", text.FgHiBlack.Sprint("planned")
		if r.Implemented {
			steps = fmt.Sprint(r.Steps)
			status = text.FgGreen.Sprint("ready")
		}
		t.AppendRow(table.Row{category, r.Icon + " " + r.Name, r.ID, steps, status})
	}

	ready := lo.CountBy(rows, func(r row) bool { return r.Implemented })
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d patterns", len(rows)), "", "", fmt.Sprintf("%d ready", ready)})
	t.Render()
}
