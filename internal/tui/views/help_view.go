package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wppmcp/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	_, _ = fmt.Fprint(hv, hv.render())
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{":", "Command mode"},
		{"/", "Filter conversations"},
		{"?", "Help"},
		{"Esc", "Cancel / go back"},
		{"q", "Quit"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Conversation List", [][2]string{
		{"Enter", "Open conversation"},
		{"1-9", "Open Nth visible chat"},
		{"0", "Clear filter"},
		{"d", "Conversation details"},
		{"r", "Reload chats"},
	}},
	{"Message Thread", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send message (in composer)"},
		{"d", "Conversation details"},
		{"r", "Reload messages"},
	}},
	{"Commands", [][2]string{
		{":chats", "Back to the conversation list"},
		{":chat <name|jid>", "Open a chat by name"},
		{":search <query>", "Search message content"},
		{":contacts", "List contacts"},
		{":nicknames", "List nicknames"},
		{":nick <jid> <name>", "Set a nickname"},
		{":unnick <jid>", "Remove a nickname"},
		{":tools", "Browse the tool registry"},
		{":help, :h", "Show this help"},
		{":quit, :q", "Quit"},
	}},
}

func (hv *HelpView) render() string {
	kc := ui.ColorName(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(&b, "  [%s]%-20s[-:-:-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
	return b.String()
}
