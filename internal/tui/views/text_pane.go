package views

import (
	"github.com/matheus3301/wppmcp/internal/tui/ui"
	"github.com/rivo/tview"
)

// TextPane shows a plain-text tool result such as the contact listing.
type TextPane struct {
	*tview.TextView
	name string
}

// NewTextPane creates a scrollable pane titled name.
func NewTextPane(theme *ui.Theme, name string) *TextPane {
	tv := tview.NewTextView().
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" " + name + " ")
	tv.SetTitleColor(theme.TitleColor)
	return &TextPane{TextView: tv, name: name}
}

// Name implements Component.
func (tp *TextPane) Name() string { return tp.name }

// Hints implements Component.
func (tp *TextPane) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "j/k", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
	}
}

// SetContent replaces the pane text.
func (tp *TextPane) SetContent(text string) {
	tp.SetText(sanitizeForTerminal(text))
	tp.ScrollToBeginning()
}
