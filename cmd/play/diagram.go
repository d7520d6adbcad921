package play

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/patviz/cmd/common/pattern"
)

var (
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	activeBoxStyle = boxStyle.BorderForeground(lipgloss.Color("46"))
	busyBoxStyle   = boxStyle.BorderForeground(lipgloss.Color("214"))
	dimBoxStyle    = boxStyle.BorderForeground(lipgloss.Color("236")).Foreground(lipgloss.Color("240"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	badStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	arrowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// renderDiagram draws the object diagram for one animation state.
func renderDiagram(s pattern.Snapshot) string {
	switch st := s.(type) {
	case pattern.SingletonState:
		return singletonDiagram(st)
	case pattern.StrategyState:
		return strategyDiagram(st)
	case pattern.AdapterState:
		return adapterDiagram(st)
	case pattern.BuilderState:
		return builderDiagram(st)
	case nil:
		return mutedStyle.Render("no pattern loaded")
	default:
		return mutedStyle.Render(fmt.Sprintf("no diagram for %s", s.Kind()))
	}
}

func singletonDiagram(s pattern.SingletonState) string {
	caller := mutedStyle.Render("no caller")
	if s.CallerID != "" {
		caller = boxStyle.Render("👤 " + s.CallerID)
	}

	var instance string
	switch {
	case s.IsCreating:
		instance = busyBoxStyle.Render("Singleton\n" + arrowStyle.Render("new Singleton() …"))
	case s.InstanceExists:
		style := boxStyle
		if s.IsReturning {
			style = activeBoxStyle
		}
		instance = style.Render("Singleton\ninstance " + okStyle.Render("● exists"))
	default:
		instance = dimBoxStyle.Render("Singleton\ninstance = null")
	}

	link := "   "
	switch {
	case s.IsReturning:
		link = arrowStyle.Render(" ◀─ ")
	case s.CallerID != "":
		link = arrowStyle.Render(" ─▶ ")
	}

	top := lipgloss.JoinHorizontal(lipgloss.Center, caller, link, instance)

	var history strings.Builder
	history.WriteString(labelStyle.Render("Call history"))
	if len(s.CallHistory) == 0 {
		history.WriteString("\n" + mutedStyle.Render("  (empty)"))
	}
	for _, c := range s.CallHistory {
		fmt.Fprintf(&history, "\n  %d. %-9s %s", c.Timestamp, c.CallerID, callActionLabel(c.Action))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, "", history.String())
}

func callActionLabel(a pattern.CallAction) string {
	switch a {
	case pattern.ActionCheck:
		return "🔍 check"
	case pattern.ActionCreate:
		return okStyle.Render("🔨 create")
	case pattern.ActionReturn:
		return "🔄 return"
	default:
		return string(a)
	}
}

func strategyDiagram(s pattern.StrategyState) string {
	ctxStyle := dimBoxStyle
	if s.ContextActive {
		ctxStyle = boxStyle
	}
	current := mutedStyle.Render("strategy: none")
	if s.CurrentStrategy != "" {
		current = "strategy: " + labelStyle.Render(s.CurrentStrategy)
	}
	ctx := ctxStyle.Render("ShoppingCart\n" + current)

	var rows []string
	for _, name := range s.AvailableStrategies {
		style := dimBoxStyle
		if name == s.CurrentStrategy {
			style = activeBoxStyle
			if s.IsExecuting {
				style = busyBoxStyle
				name += arrowStyle.Render("  pay()")
			}
		}
		rows = append(rows, style.Render(name))
	}

	link := "   "
	if s.CurrentStrategy != "" {
		link = arrowStyle.Render(" ─▶ ")
	}
	strategies := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.JoinHorizontal(lipgloss.Center, ctx, link, strategies)
}

func adapterDiagram(s pattern.AdapterState) string {
	peg := dimBoxStyle.Render("SquarePeg\n(not created)")
	if s.SquarePegWidth != nil {
		peg = boxStyle.Render(fmt.Sprintf("SquarePeg\nwidth %d", *s.SquarePegWidth))
	}

	adapterStyle := dimBoxStyle
	switch {
	case s.IsConverting:
		adapterStyle = busyBoxStyle
	case s.AdapterActive:
		adapterStyle = activeBoxStyle
	}
	body := "SquarePegAdapter"
	if s.RoundPegRadius != nil {
		body += fmt.Sprintf("\nradius %d", *s.RoundPegRadius)
	} else if s.IsConverting {
		body += "\n" + arrowStyle.Render("converting …")
	}
	adapter := adapterStyle.Render(body)

	holeBody := "RoundHole\nradius 5"
	if s.Fits != nil {
		if *s.Fits {
			holeBody += "\n" + okStyle.Render("✅ fits")
		} else {
			holeBody += "\n" + badStyle.Render("❌ does not fit")
		}
	}
	hole := boxStyle.Render(holeBody)

	link := arrowStyle.Render(" ─▶ ")
	return lipgloss.JoinHorizontal(lipgloss.Center, peg, link, adapter, link, hole)
}

func builderDiagram(s pattern.BuilderState) string {
	directorStyle := dimBoxStyle
	if s.DirectorActive {
		directorStyle = activeBoxStyle
	}
	director := directorStyle.Render("Director")

	builderBody := mutedStyle.Render("no builder")
	if s.CurrentBuilder != "" {
		builderBody = s.CurrentBuilder
		if s.ProductType != "" {
			builderBody += "\n" + mutedStyle.Render("making "+s.ProductType)
		}
	}
	builder := boxStyle.Render(builderBody)

	var steps strings.Builder
	steps.WriteString(labelStyle.Render("Build steps"))
	if len(s.BuildSteps) == 0 {
		steps.WriteString("\n" + mutedStyle.Render("  (none yet)"))
	}
	for _, b := range s.BuildSteps {
		mark := mutedStyle.Render("○")
		if b.Completed {
			mark = okStyle.Render("✔")
		}
		line := fmt.Sprintf("\n  %s %s", mark, b.Step)
		if b.Value != "" {
			line += mutedStyle.Render("(" + b.Value + ")")
		}
		steps.WriteString(line)
	}

	productStyle := dimBoxStyle
	product := "Product\n(in progress)"
	if s.IsProductComplete {
		productStyle = activeBoxStyle
		product = "Product\n" + okStyle.Render("🚗 "+s.Product)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Center, director, arrowStyle.Render(" ─▶ "), builder, arrowStyle.Render(" ─▶ "), productStyle.Render(product))
	return lipgloss.JoinVertical(lipgloss.Left, top, "", steps.String())
}
