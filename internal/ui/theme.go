package ui

import (
	"fmt"
	"strings"
)

// Theme bundles palette + symbols + box borders.
// All static renderers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending, Done string
	BoxUnchecked, BoxChecked                            string
	CornerTL, CornerTR, CornerBL, CornerBR              string
	H, V                                                string
}

var Themes = []string{"classic", "neon", "mono"}

var current = classic()

// SetTheme switches the static theme. Unknown names are an error and leave
// the current theme alone.
func SetTheme(name string) error {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m",
			Done:         dim + strike,
			BoxUnchecked: "◻", BoxChecked: "◼",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
		}
	case "mono":
		// no escape codes at all; C passes text through for an empty color
		current = Theme{
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
		}
	case "classic", "":
		current = classic()
	default:
		return fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(Themes, ", "))
	}
	return nil
}

func classic() Theme {
	return Theme{
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		Done:         dim + strike,
		BoxUnchecked: "☐", BoxChecked: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
	}
}

// Expose what renderers need
func Current() Theme { return current }
