package ui

import (
	"strings"

	"github.com/rivo/tview"
)

// Logo is the banner in the top-right corner of the header.
type Logo struct {
	*tview.TextView
}

func NewLogo(theme *Theme, version string) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 0)
	tv.SetText(banner(theme, version))
	return &Logo{TextView: tv}
}

// banner draws "wpp" in block glyphs over an "mcp" tag and the build version.
func banner(theme *Theme, version string) string {
	if version == "" {
		version = "dev"
	}
	title := "[" + ColorName(theme.TitleColor) + "::b]"
	rows := []string{
		title + "█ █ █ ▛▀▖▛▀▖[-:-:-]",
		title + "▐▌▐▌  ▙▄▘▙▄▘[-:-:-]",
		"[" + ColorName(theme.BridgeUpColor) + "::b] mcp [-:-:-][" + ColorName(theme.FgColor) + "]" + tview.Escape(version) + "[-]",
	}
	return strings.Join(rows, "\n")
}
