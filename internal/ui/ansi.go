package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	strike = "\033[9m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
	symWarn  = "!"
)

var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing overrides TTY detection for static output and the TUI.
// disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
	switch {
	case disable:
		lipgloss.SetColorProfile(termenv.Ascii)
	case force:
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, C(current.Success, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, C(current.Error, symCross+" "+msg)) }
func Warn(w io.Writer, msg string) { fmt.Fprintln(w, C(current.Pending, symWarn+" "+msg)) }
