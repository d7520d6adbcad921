package show

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/textfit"
	"github.com/spf13/cobra"
)

type Params struct {
	Pattern string `pos:"true" help:"Pattern id (see 'patviz list')."`
	Code    bool   `short:"c" help:"Print the numbered source listing."`
	Step    int    `short:"s" help:"With --code, mark the lines highlighted at this step (1-based)." default:"0"`
	Copy    bool   `long:"copy" help:"Copy the source listing to the clipboard."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "show",
		Short:       "Describe a pattern: intent, use cases, pros and cons",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "patviz show: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

var copyText = clipboard.WriteAll

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hlStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
)

func Run(params *Params, w io.Writer) error {
	entry, ok := pattern.Lookup(params.Pattern)
	if !ok {
		return fmt.Errorf("%w: %q", pattern.ErrUnknownPattern, params.Pattern)
	}

	width := min(common.TermWidth(), 100)
	fmt.Fprintf(w, "%s %s  %s\n", entry.Icon, titleStyle.Render(entry.Name), mutedStyle.Render(entry.Category.Label()))
	if !entry.Implemented {
		fmt.Fprintln(w, mutedStyle.Render("No animation yet. Try 'patviz play "+pattern.DefaultFor(entry.Category)+"'."))
		return nil
	}

	ds, err := pattern.Load(entry.ID)
	if err != nil {
		return err
	}
	md := ds.Metadata
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d steps · %d source lines", ds.StepCount(), len(ds.SourceLines))))

	writeSection(w, "Description", textfit.Wrap(md.Description, width))
	writeSection(w, "When to use", textfit.Wrap(md.WhenToUse, width))
	writeSection(w, "Use cases", bullets(md.UseCases, "•", width))
	writeSection(w, "Pros", bullets(md.Pros, okStyle.Render("+"), width))
	writeSection(w, "Cons", bullets(md.Cons, badStyle.Render("-"), width))

	if params.Code {
		listing, err := sourceListing(ds, params.Step)
		if err != nil {
			return err
		}
		writeSection(w, "Source", listing)
	}

	if params.Copy {
		if err := copyText(strings.Join(ds.SourceLines, "\n")); err != nil {
			return fmt.Errorf("copy source: %w", err)
		}
		fmt.Fprintln(w, "\n"+okStyle.Render("✔ source copied to clipboard"))
	}
	return nil
}

func writeSection(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, "\n"+labelStyle.Render(title))
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func bullets(items []string, mark string, width int) []string {
	var out []string
	for _, it := range items {
		for i, l := range textfit.Wrap(it, width-4) {
			if i == 0 {
				out = append(out, "  "+mark+" "+l)
			} else {
				out = append(out, "    "+l)
			}
		}
	}
	return out
}

// sourceListing numbers the source lines. A step above zero marks the lines
// its code step highlights.
func sourceListing(ds *pattern.Dataset, step int) ([]string, error) {
	var highlight []int
	if step != 0 {
		if step < 1 || step > ds.StepCount() {
			return nil, fmt.Errorf("step %d out of range 1..%d", step, ds.StepCount())
		}
		highlight = ds.CodeSteps[step-1].HighlightLines
	}

	numWidth := len(fmt.Sprint(len(ds.SourceLines)))
	out := make([]string, 0, len(ds.SourceLines))
	for i, line := range ds.SourceLines {
		n := i + 1
		text := textfit.ExpandTabs(line, 4)
		if slices.Contains(highlight, n) {
			out = append(out, hlStyle.Render(fmt.Sprintf("▶%*d  %s", numWidth, n, text)))
		} else {
			out = append(out, fmt.Sprintf(" %s  %s", mutedStyle.Render(fmt.Sprintf("%*d", numWidth, n)), text))
		}
	}
	return out, nil
}
