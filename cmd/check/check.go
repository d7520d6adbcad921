package check

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type Params struct {
	Files []string `pos:"true" optional:"true" help:"Dataset files to validate. Without files the embedded datasets are checked."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "check",
		Short:       "Validate pattern datasets",
		Long:        "Parse and validate dataset files, reporting every problem found: step counts that disagree, step indices out of order, highlighted lines outside the source, snapshots of the wrong kind.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if code := Run(params, os.Stdout, os.Stderr); code != 0 {
				os.Exit(code)
			}
		},
	}.ToCobra()
}

type result struct {
	source   string
	id       string
	steps    int
	problems []string
}

func Run(params *Params, stdout, stderr io.Writer) int {
	var results []result
	if len(params.Files) == 0 {
		for _, e := range pattern.Implemented() {
			raw, err := pattern.Raw(e.ID)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return 1
			}
			results = append(results, checkData("embedded:"+e.ID, raw))
		}
	} else {
		for _, path := range params.Files {
			raw, err := os.ReadFile(path)
			if err != nil {
				// the path is already in the source column
				var pe *fs.PathError
				if errors.As(err, &pe) {
					err = pe.Err
				}
				results = append(results, result{source: path, problems: []string{err.Error()}})
				continue
			}
			results = append(results, checkData(path, raw))
		}
	}

	failed := renderResults(stdout, results)
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d dataset(s) invalid\n", failed, len(results))
		return 1
	}
	return 0
}

// checkData parses and validates one dataset, collecting every problem
// rather than stopping at the first.
func checkData(source string, raw []byte) result {
	r := result{source: source}
	ds, err := pattern.Parse(raw)
	if err != nil {
		r.problems = []string{err.Error()}
		return r
	}
	r.id = ds.ID()
	r.steps = ds.StepCount()

	var verr *pattern.ValidationError
	if err := pattern.Validate(ds); errors.As(err, &verr) {
		r.problems = verr.Problems
	} else if err != nil {
		r.problems = []string{err.Error()}
	}
	return r
}

func renderResults(w io.Writer, results []result) (failed int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: max(40, common.TermWidth()/2)},
	})
	t.AppendHeader(table.Row{"Dataset", "ID", "Steps", "Result"})

	for _, r := range results {
		if len(r.problems) == 0 {
			t.AppendRow(table.Row{r.source, r.id, r.steps, text.FgGreen.Sprint("ok")})
			continue
		}
		failed++
		for i, p := range r.problems {
			source, id, steps := "", "", ""
			if i == 0 {
				source, id, steps = r.source, r.id, fmt.Sprint(r.steps)
			}
			t.AppendRow(table.Row{source, id, steps, text.FgRed.Sprint(p)})
		}
	}
	t.Render()
	return failed
}
