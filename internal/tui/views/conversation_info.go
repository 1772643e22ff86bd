package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matheus3301/wppmcp/internal/tui/model"
	"github.com/matheus3301/wppmcp/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo displays a chat's metadata and message statistics.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders chat details and the statistics returned by the daemon.
func (ci *ConversationInfo) Update(chat model.Chat, stats map[string]any) {
	ci.Clear()
	_, _ = fmt.Fprint(ci, ci.render(chat, stats))
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(chat.DisplayName())))
}

func (ci *ConversationInfo) render(chat model.Chat, stats map[string]any) string {
	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	chatType := "Direct Message"
	if chat.IsGroup {
		chatType = "Group"
	}
	lastActive := "-"
	if t := chat.LastActive(); !t.IsZero() {
		lastActive = t.Local().Format("2006-01-02 15:04")
	}

	rows := [][2]string{
		{"Name", chat.DisplayName()},
		{"JID", chat.JID},
		{"Type", chatType},
		{"Last Active", lastActive},
		{"Last Message", oneLine(chat.Preview(), 80)},
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		if k != "chat_jid" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{statLabel(k), fmt.Sprint(stats[k])})
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(&b, " [%s::b]%-14s[-:-:-] [%s]%s[-]\n", fg, r[0]+":", ct, tview.Escape(r[1]))
	}
	return b.String()
}

// statLabel turns message_count_today into "Message count today".
func statLabel(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
