package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppmcp/internal/tui/client"
	"github.com/matheus3301/wppmcp/internal/tui/model"
	"github.com/matheus3301/wppmcp/internal/tui/ui"
)

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"skin tone", "\U0001F44D\U0001F3FB", "\U0001F44D"},
		{"zwj family", "\U0001F468\u200d\U0001F469", "\U0001F468\U0001F469"},
		{"variation selector", "\u2764\ufe0f", "\u2764"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeForTerminal(tt.in); got != tt.want {
				t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "short", 10, "short"},
		{"newlines collapse", "a\nb\t c", 10, "a b c"},
		{"truncated", "abcdefghij", 5, "abcd…"},
		{"wide runes", "日本語テキスト", 7, "日本語…"},
		{"no limit", "abcdefghij", 0, "abcdefghij"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := oneLine(tt.in, tt.width); got != tt.want {
				t.Errorf("oneLine(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"today", time.Date(2025, 6, 10, 9, 5, 0, 0, time.UTC), "09:05"},
		{"this year", time.Date(2025, 1, 2, 9, 5, 0, 0, time.UTC), "01/02"},
		{"older", time.Date(2023, 1, 2, 9, 5, 0, 0, time.UTC), "2023-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimestamp(tt.t, now); got != tt.want {
				t.Errorf("formatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConversationListFilter(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update([]model.Chat{
		{JID: "1@s.whatsapp.net", Name: "Alice", LastMessage: "see you"},
		{JID: "g@g.us", Name: "Family", IsGroup: true, LastMessage: "dinner at 8"},
		{JID: "3@s.whatsapp.net", LastMessage: "dinner?"},
	})
	if got := cl.ChatByIndex(3); got != "3@s.whatsapp.net" {
		t.Errorf("ChatByIndex(3) = %q", got)
	}

	cl.SetFilter("DINNER")
	if cl.ChatByIndex(1) != "g@g.us" || cl.ChatByIndex(2) != "3@s.whatsapp.net" || cl.ChatByIndex(3) != "" {
		t.Errorf("filtered rows = %v", cl.visible)
	}
	if got := cl.SelectedChat(); got != "g@g.us" {
		t.Errorf("SelectedChat() = %q, want first match", got)
	}

	cl.SetFilter("")
	if cl.ChatByIndex(0) != "" || cl.ChatByIndex(1) != "1@s.whatsapp.net" {
		t.Error("clearing the filter did not restore all rows")
	}
}

func TestTranscriptOrder(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	mt.now = func() time.Time { return time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC) }
	out := mt.transcript([]model.Message{
		{ID: "2", Content: "second [x]", Timestamp: "2025-06-10T09:01:00Z", SenderName: "Bob"},
		{ID: "1", Content: "first", Timestamp: "2025-06-10T09:00:00Z", IsFromMe: true},
	})
	first, second := strings.Index(out, "first"), strings.Index(out, "second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("transcript not oldest first: %q", out)
	}
	if !strings.Contains(out, "second [x[]") {
		t.Errorf("transcript did not escape tags: %q", out)
	}
	if !strings.Contains(out, "09:00") {
		t.Errorf("transcript missing time: %q", out)
	}
}

func TestDescribeTool(t *testing.T) {
	out := describeTool(client.Tool{
		Name:        "list_chats",
		Description: "Get chats.",
		Params: []client.Param{
			{Name: "sort_by", Type: "string", Default: "last_active", Enum: []string{"last_active", "name"}},
			{Name: "chat_jid", Type: "string", Required: true, Description: "The chat"},
		},
	}, "blue")
	for _, want := range []string{"default=last_active", "one of last_active|name", "(required)", "The chat"} {
		if !strings.Contains(out, want) {
			t.Errorf("describeTool() missing %q in %q", want, out)
		}
	}
	if got := describeTool(client.Tool{Name: "x"}, "blue"); !strings.Contains(got, "No parameters.") {
		t.Errorf("describeTool(no params) = %q", got)
	}
}

func TestStatLabel(t *testing.T) {
	if got := statLabel("message_count_last_7_days"); got != "Message count last 7 days" {
		t.Errorf("statLabel() = %q", got)
	}
}
