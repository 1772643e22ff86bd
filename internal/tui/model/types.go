package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Chat is the subset of a list_chats entry the TUI renders.
type Chat struct {
	JID             string `json:"jid"`
	Name            string `json:"name"`
	IsGroup         bool   `json:"is_group"`
	LastMessageTime string `json:"last_message_time"`
	LastMessage     string `json:"last_message"`
	LastSenderName  string `json:"last_sender_name"`
	LastIsFromMe    bool   `json:"last_is_from_me"`
	LastMediaType   string `json:"last_message_media_type"`
}

// DisplayName returns the chat name, falling back to the JID.
func (c Chat) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.JID
}

// Preview is the one-line summary of the last message.
func (c Chat) Preview() string {
	text := c.LastMessage
	if text == "" && c.LastMediaType != "" {
		text = "[" + c.LastMediaType + "]"
	}
	switch {
	case text == "":
		return ""
	case c.LastIsFromMe:
		return "You: " + text
	case c.IsGroup && c.LastSenderName != "":
		return c.LastSenderName + ": " + text
	}
	return text
}

// LastActive parses LastMessageTime; the zero time means never.
func (c Chat) LastActive() time.Time {
	return parseTime(c.LastMessageTime)
}

// Message is the subset of a list_messages entry the TUI renders.
type Message struct {
	ID         string `json:"id"`
	ChatJID    string `json:"chat_jid"`
	ChatName   string `json:"chat_name"`
	Timestamp  string `json:"timestamp"`
	Sender     string `json:"sender"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	IsFromMe   bool   `json:"is_from_me"`
	MediaType  string `json:"media_type"`
	Filename   string `json:"filename"`
}

// Time parses the message timestamp.
func (m Message) Time() time.Time {
	return parseTime(m.Timestamp)
}

// Author is the display name of whoever sent the message.
func (m Message) Author() string {
	switch {
	case m.IsFromMe:
		return "You"
	case m.SenderName != "":
		return m.SenderName
	}
	return m.Sender
}

// Body is the text to show, with a marker for media.
func (m Message) Body() string {
	if m.MediaType == "" {
		return m.Content
	}
	marker := "[" + m.MediaType
	if m.Filename != "" {
		marker += ": " + m.Filename
	}
	marker += "]"
	if m.Content == "" {
		return marker
	}
	return marker + " " + m.Content
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// decodeData re-encodes a tool's structured result into out.
func decodeData(data any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
