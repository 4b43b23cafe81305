package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// palette is the handful of colors a scheme actually varies.
type palette struct {
	bg, selected, border, text, accent tcell.Color
}

func (p palette) theme() tview.Theme {
	return tview.Theme{
		PrimitiveBackgroundColor:    p.bg,
		ContrastBackgroundColor:     p.selected,
		MoreContrastBackgroundColor: tcell.ColorDarkSlateGray,
		BorderColor:                 p.border,
		TitleColor:                  tcell.ColorRed,
		GraphicsColor:               p.border,
		PrimaryTextColor:            p.text,
		SecondaryTextColor:          p.accent,
		TertiaryTextColor:           tcell.ColorOrange,
		InverseTextColor:            tcell.ColorWhite,
		ContrastSecondaryTextColor:  tcell.ColorLime,
	}
}

var colorschemes = map[string]tview.Theme{
	"default":   palette{tcell.ColorDefault, tcell.ColorGray, tcell.ColorGray, tcell.ColorLightGray, tcell.ColorYellow}.theme(),
	"gruvbox":   palette{tcell.NewHexColor(0x282828), tcell.ColorDarkGoldenrod, tcell.ColorLightGray, tcell.ColorLightGray, tcell.ColorYellow}.theme(),
	"solarized": palette{tcell.NewHexColor(0x002b36), tcell.ColorDarkCyan, tcell.ColorLightBlue, tcell.ColorWhite, tcell.ColorYellow}.theme(),
	"dracula":   palette{tcell.NewHexColor(0x282a36), tcell.ColorDarkMagenta, tcell.ColorLightGray, tcell.ColorWhite, tcell.ColorLightGreen}.theme(),
}
