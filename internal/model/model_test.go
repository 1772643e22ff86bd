package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMessageMapOmitsEmpty(t *testing.T) {
	m := Message{
		ID:        "m1",
		ChatJID:   "123@s.whatsapp.net",
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Sender:    "123",
	}

	got := m.Map()
	for _, key := range []string{"id", "chat_jid", "timestamp", "sender", "content", "is_from_me", "is_group"} {
		if _, ok := got[key]; !ok {
			t.Errorf("required key %q missing", key)
		}
	}
	for _, key := range []string{"chat_name", "url_list", "mentions", "reaction_summary", "is_edited", "is_read", "character_count"} {
		if _, ok := got[key]; ok {
			t.Errorf("empty key %q should be omitted", key)
		}
	}
	if got["timestamp"] != "2025-03-01T10:00:00Z" {
		t.Errorf("timestamp = %v, want RFC 3339", got["timestamp"])
	}
}

func TestMessageMapKeepsSetOptionals(t *testing.T) {
	m := Message{
		ID:              "m1",
		CharacterCount:  Int(0),
		WordCount:       Int(2),
		URLList:         []string{"https://a.example"},
		ReactionSummary: map[string]int{"👍": 2},
		IsRead:          Bool(false),
		IsForwarded:     true,
	}

	got := m.Map()
	if got["character_count"] != 0 {
		t.Errorf("character_count = %v, want explicit 0", got["character_count"])
	}
	if got["word_count"] != 2 {
		t.Errorf("word_count = %v, want 2", got["word_count"])
	}
	if got["is_read"] != false {
		t.Errorf("is_read = %v, want false", got["is_read"])
	}
	if got["is_forwarded"] != true {
		t.Errorf("is_forwarded = %v, want true", got["is_forwarded"])
	}
	if _, ok := got["url_list"]; !ok {
		t.Error("url_list missing")
	}
}

func TestChatAndContactRequiredKeys(t *testing.T) {
	chat, err := json.Marshal(Chat{JID: "1@g.us", IsGroup: true})
	if err != nil {
		t.Fatal(err)
	}
	var chatOut map[string]any
	if err := json.Unmarshal(chat, &chatOut); err != nil {
		t.Fatal(err)
	}
	if len(chatOut) != 3 {
		t.Errorf("chat keys = %v, want jid, name, is_group", chatOut)
	}

	contact, err := json.Marshal(Contact{JID: "1@s.whatsapp.net"})
	if err != nil {
		t.Fatal(err)
	}
	var contactOut map[string]any
	if err := json.Unmarshal(contact, &contactOut); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"jid", "phone_number", "name"} {
		if _, ok := contactOut[key]; !ok {
			t.Errorf("contact key %q missing", key)
		}
	}
	if len(contactOut) != 3 {
		t.Errorf("contact keys = %v, want 3", contactOut)
	}
}

func TestMessageContextAlwaysHasSequences(t *testing.T) {
	got := MessageContext{Message: Message{ID: "m"}}.Map()
	before, ok := got["before"].([]map[string]any)
	if !ok || before == nil || len(before) != 0 {
		t.Errorf("before = %#v, want empty non-nil slice", got["before"])
	}
	if _, ok := got["after"]; !ok {
		t.Error("after missing")
	}
}

func TestContactDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    string
	}{
		{"nickname wins", Contact{Nickname: "Mom", Name: "Maria", PhoneNumber: "55"}, "Mom"},
		{"name", Contact{Name: "Maria", PhoneNumber: "55"}, "Maria"},
		{"phone fallback", Contact{PhoneNumber: "55"}, "55"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.contact.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
