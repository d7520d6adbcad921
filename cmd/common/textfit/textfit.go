// Package textfit fits text into terminal cells. Widths are display widths,
// so wide runes (CJK, emoji) count double and ANSI styling counts zero.
package textfit

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// Width returns the display width of s.
func Width(s string) int {
	return lipgloss.Width(s)
}

// Truncate cuts s to at most width cells, ending in "…" when cut.
// s must not contain ANSI escapes.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if used+rw > width-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + ellipsis
}

// PadRight fits s into exactly width cells.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := Width(s)
	if w > width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// PadLeft right-aligns s in width cells.
func PadLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := Width(s)
	if w > width {
		return Truncate(s, width)
	}
	return strings.Repeat(" ", width-w) + s
}

// Center places s in the middle of width cells.
func Center(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := Width(s)
	if w > width {
		return Truncate(s, width)
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// Wrap breaks s into lines of at most width cells at spaces. Words longer
// than width are truncated.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	used := 0

	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if ww > width {
			word = Truncate(word, width)
			ww = runewidth.StringWidth(word)
		}
		switch {
		case used == 0:
			line.WriteString(word)
			used = ww
		case used+1+ww <= width:
			line.WriteByte(' ')
			line.WriteString(word)
			used += 1 + ww
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			used = ww
		}
	}
	if used > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// ExpandTabs replaces tabs with spaces up to the next multiple of tabWidth.
func ExpandTabs(s string, tabWidth int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
