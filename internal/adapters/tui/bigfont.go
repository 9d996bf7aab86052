package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// digitMap holds 5-row glyphs for the countdown digits and separator.
var digitMap = map[rune][5]string{
	'0': {
		"████",
		"█  █",
		"█  █",
		"█  █",
		"████",
	},
	'1': {
		" █ ",
		"██ ",
		" █ ",
		" █ ",
		"███",
	},
	'2': {
		"████",
		"   █",
		"████",
		"█   ",
		"████",
	},
	'3': {
		"████",
		"   █",
		"████",
		"   █",
		"████",
	},
	'4': {
		"█  █",
		"█  █",
		"████",
		"   █",
		"   █",
	},
	'5': {
		"████",
		"█   ",
		"████",
		"   █",
		"████",
	},
	'6': {
		"████",
		"█   ",
		"████",
		"█  █",
		"████",
	},
	'7': {
		"████",
		"   █",
		"  █ ",
		" █  ",
		" █  ",
	},
	'8': {
		"████",
		"█  █",
		"████",
		"█  █",
		"████",
	},
	'9': {
		"████",
		"█  █",
		"████",
		"   █",
		"████",
	},
	':': {
		" ",
		"█",
		" ",
		"█",
		" ",
	},
}

// renderBigTime renders an MM:SS countdown in the block font. Narrow
// terminals get a single bold line.
func renderBigTime(timeStr string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < 40 {
		return style.Render(timeStr)
	}

	var rows [5][]string
	for _, ch := range timeStr {
		glyph, ok := digitMap[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], glyph[i])
		}
	}

	styled := make([]string, len(rows))
	for i, row := range rows {
		styled[i] = style.Render(strings.Join(row, " "))
	}
	return strings.Join(styled, "\n")
}
