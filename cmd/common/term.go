package common

import (
	"os"

	"golang.org/x/term"
)

const defaultTermWidth = 120

// TermWidth returns the width of the first of files that is a terminal,
// or 120 columns when none is. With no files it checks stdout then stderr.
func TermWidth(files ...*os.File) int {
	if len(files) == 0 {
		files = []*os.File{os.Stdout, os.Stderr}
	}
	for _, f := range files {
		if f == nil {
			continue
		}
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
