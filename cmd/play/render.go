package play

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/player"
	"github.com/gigurra/patviz/cmd/common/textfit"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	categoryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238"))
	lineNoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	codeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hlStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220"))
	messageStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	contextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	barFullStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	playingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	pausedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// view holds the presentation options that are not playback state.
type view struct {
	width       int
	height      int
	tabs        []string
	showInfo    bool
	showContext bool
	status      string
}

const (
	defaultWidth = 120
	wideLayout   = 110 // side by side panels from this width
	chromeLines  = 12  // header, message, progress, controls and help
)

func render(f player.Frame, v view) string {
	width := v.width
	if width <= 0 {
		width = defaultWidth
	}
	if !f.Loaded() {
		return helpStyle.Render(textfit.Center("No pattern loaded. Press tab to pick one, q to quit.", width)) + "\n"
	}

	var b strings.Builder
	b.WriteString(renderHeader(f.Dataset, v.tabs, width))
	b.WriteString("\n")

	if v.showInfo {
		b.WriteString(renderInfo(f.Dataset.Metadata, width))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("i back · q quit"))
		b.WriteString("\n")
		return b.String()
	}

	codeHeight := 0
	if v.height > 0 {
		codeHeight = max(5, v.height-chromeLines)
	}

	diagram := renderDiagram(f.Snapshot)
	if width >= wideLayout {
		codeWidth := width*11/20 - 2
		code := panelStyle.Render(renderCode(f, codeWidth, codeHeight))
		diagramWidth := width - lipgloss.Width(code) - 1
		right := lipgloss.NewStyle().Width(diagramWidth).Padding(0, 1).Render(diagram)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, code, " ", right))
	} else {
		if codeHeight > 0 {
			codeHeight = max(5, codeHeight-lipgloss.Height(diagram))
		}
		b.WriteString(panelStyle.Render(renderCode(f, width-2, codeHeight)))
		b.WriteString("\n")
		b.WriteString(diagram)
	}
	b.WriteString("\n\n")

	if f.Snapshot != nil {
		b.WriteString(messageStyle.Render(textfit.Truncate(f.Snapshot.Message(), width)))
		b.WriteString("\n")
	}
	if v.showContext && f.Context != "" {
		b.WriteString(contextStyle.Render(textfit.Truncate("▶ "+f.Context, width)))
		b.WriteString("\n")
	}
	b.WriteString(renderProgress(f, width))
	b.WriteString("\n")
	b.WriteString(renderControls(f))
	b.WriteString("\n")
	if v.status != "" {
		b.WriteString(statusStyle.Render(textfit.Truncate(v.status, width)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(textfit.Truncate(helpLine, width)))
	b.WriteString("\n")
	return b.String()
}

const helpLine = "space play/pause · ←/→ step · g/G first/last · r reset · 1-4 or [/] speed · tab pattern · i info · c copy · q quit"

func renderHeader(ds *pattern.Dataset, tabs []string, width int) string {
	md := ds.Metadata
	title := titleStyle.Render(md.Icon+" "+md.Name) + "  " + categoryStyle.Render(md.Category.Label())

	var rendered []string
	for _, id := range tabs {
		style := tabStyle
		if id == md.ID {
			style = activeTabStyle
		}
		rendered = append(rendered, style.Render(id))
	}
	tabLine := strings.Join(rendered, "")

	gap := width - lipgloss.Width(title) - lipgloss.Width(tabLine)
	if gap < 2 {
		return title + "\n" + tabLine
	}
	return title + strings.Repeat(" ", gap) + tabLine
}

// renderCode draws numbered source lines with the current step highlighted.
// With height > 0 the listing is windowed so the first highlighted line is
// on screen.
func renderCode(f player.Frame, width, height int) string {
	lines := f.Dataset.SourceLines
	numWidth := len(fmt.Sprint(len(lines)))
	textWidth := max(1, width-numWidth-3)

	start, end := 0, len(lines)
	if height > 0 && len(lines) > height {
		first := 0
		if len(f.Highlight) > 0 {
			first = max(0, minInt(f.Highlight)-1)
		}
		start = max(0, min(first-height/3, len(lines)-height))
		end = start + height
	}

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		n := i + 1
		text := textfit.PadRight(textfit.ExpandTabs(lines[i], 4), textWidth)
		num := lineNoStyle.Render(textfit.PadLeft(strconv.Itoa(n), numWidth))
		if f.Highlighted(n) {
			out = append(out, hlStyle.Render("▶")+num+" "+hlStyle.Render(text))
		} else {
			out = append(out, " "+num+" "+codeStyle.Render(text))
		}
	}
	return strings.Join(out, "\n")
}

func minInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		m = min(m, x)
	}
	return m
}

func renderProgress(f player.Frame, width int) string {
	label := fmt.Sprintf(" %3d%%  Step %d/%d", f.Progress(), f.Player.CurrentStep+1, f.Player.TotalSteps)
	if f.Player.TotalSteps == 0 {
		label = "  no steps"
	}
	barWidth := max(10, min(60, width-lipgloss.Width(label)-2))
	filled := barWidth * f.Progress() / 100
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
		label
}

func renderControls(f player.Frame) string {
	button := func(label string, enabled bool) string {
		if enabled {
			return label
		}
		return disabledStyle.Render(label)
	}

	state := pausedStyle.Render("⏸ paused")
	toggle := "▶ play"
	if f.Player.IsPlaying {
		state = playingStyle.Render("▶ playing")
		toggle = "⏸ pause"
	}

	return strings.Join([]string{
		button("⏮ reset", f.CanGoPrev()),
		button("◀ prev", f.CanGoPrev()),
		button(toggle, f.Player.TotalSteps > 0),
		button("next ▶", f.CanGoNext()),
		"speed " + player.SpeedLabel(f.Player.Speed),
		state,
	}, "   ")
}

// renderInfo shows the pattern's description, use cases, pros and cons.
func renderInfo(md pattern.Metadata, width int) string {
	w := min(width, 100)
	var b strings.Builder

	section := func(title string, body []string) {
		b.WriteString("\n" + labelStyle.Render(title) + "\n")
		for _, line := range body {
			b.WriteString(line + "\n")
		}
	}
	bullets := func(items []string, mark string) []string {
		var out []string
		for _, it := range items {
			wrapped := textfit.Wrap(it, w-4)
			for i, l := range wrapped {
				if i == 0 {
					out = append(out, "  "+mark+" "+l)
				} else {
					out = append(out, "    "+l)
				}
			}
		}
		return out
	}

	section("Description", textfit.Wrap(md.Description, w))
	section("When to use", textfit.Wrap(md.WhenToUse, w))
	section("Use cases", bullets(md.UseCases, "•"))
	section("Pros", bullets(md.Pros, okStyle.Render("+")))
	section("Cons", bullets(md.Cons, badStyle.Render("-")))
	return b.String()
}
