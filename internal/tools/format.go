package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/wppmcp/internal/model"
)

// formatContact renders a contact as an indented text block without a
// trailing newline.
func formatContact(c model.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", c.DisplayName())
	if c.Nickname != "" && c.Name != "" && c.Name != c.Nickname {
		fmt.Fprintf(&b, "  Contact name: %s\n", c.Name)
	}
	fmt.Fprintf(&b, "  Phone: %s\n", c.PhoneNumber)
	fmt.Fprintf(&b, "  JID: %s\n", c.JID)
	if c.PushName != "" && c.PushName != c.Name {
		fmt.Fprintf(&b, "  Push name: %s\n", c.PushName)
	}
	if c.BusinessName != "" {
		fmt.Fprintf(&b, "  Business: %s\n", c.BusinessName)
	}
	if c.TotalMessageCount != nil {
		fmt.Fprintf(&b, "  Messages: %d total, %d today, %d in the last 7 days, %d in the last 30 days\n",
			deref(c.TotalMessageCount), deref(c.MessageCountToday), deref(c.MessageCountWeek), deref(c.MessageCountMonth))
	}
	if c.LastMessageTime != nil {
		fmt.Fprintf(&b, "  Last message: %s", c.LastMessageTime.Format(time.RFC3339))
		if c.LatestMessagePreview != "" {
			fmt.Fprintf(&b, " %q", c.LatestMessagePreview)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatContacts(contacts []model.Contact, empty string) string {
	if len(contacts) == 0 {
		return empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d contact(s):\n\n", len(contacts))
	for _, c := range contacts {
		b.WriteString(formatContact(c))
		b.WriteString("\n")
	}
	return b.String()
}

func formatNicknames(nicknames []model.Nickname) string {
	if len(nicknames) == 0 {
		return "No custom nicknames set."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d nickname(s):\n\n", len(nicknames))
	for _, n := range nicknames {
		fmt.Fprintf(&b, "  %s → %s\n", n.Nickname, n.JID)
	}
	return b.String()
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
