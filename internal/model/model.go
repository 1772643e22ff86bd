// Package model holds the entities returned by the tool surface and their
// sparse JSON form: empty, null and default values are dropped except for a
// fixed set of keys per entity.
package model

import (
	"encoding/json"
	"time"
)

// Chat types.
const (
	ChatTypeGroup      = "group"
	ChatTypeIndividual = "individual"
)

// Message is a read-only projection of a stored message.
type Message struct {
	ID        string
	ChatJID   string
	Timestamp time.Time
	Sender    string
	Content   string
	IsFromMe  bool
	IsGroup   bool

	ChatName   string
	SenderName string
	MediaType  string
	Filename   string
	FileLength int64

	CharacterCount *int
	WordCount      *int
	URLList        []string
	Mentions       []string

	// Reply, reaction and read-state fields stay zero until the bridge
	// persists them.
	ReplyToMessageID  string
	QuotedMessageID   string
	QuotedSenderName  string
	QuotedTextPreview string
	ReactionSummary   map[string]int

	IsEdited          bool
	IsForwarded       bool
	ForwardedFrom     string
	IsSystemMessage   bool
	SystemMessageType string
	IsRead            *bool
}

// Map returns the sparse representation.
func (m Message) Map() map[string]any {
	f := fields{
		"id":         m.ID,
		"chat_jid":   m.ChatJID,
		"timestamp":  formatTime(m.Timestamp),
		"sender":     m.Sender,
		"content":    m.Content,
		"is_from_me": m.IsFromMe,
		"is_group":   m.IsGroup,
	}
	f.str("chat_name", m.ChatName)
	f.str("sender_name", m.SenderName)
	f.str("media_type", m.MediaType)
	f.str("filename", m.Filename)
	f.int64("file_length", m.FileLength)
	f.intp("character_count", m.CharacterCount)
	f.intp("word_count", m.WordCount)
	f.strs("url_list", m.URLList)
	f.strs("mentions", m.Mentions)
	f.str("reply_to_message_id", m.ReplyToMessageID)
	f.str("quoted_message_id", m.QuotedMessageID)
	f.str("quoted_sender_name", m.QuotedSenderName)
	f.str("quoted_text_preview", m.QuotedTextPreview)
	f.counts("reaction_summary", m.ReactionSummary)
	f.flag("is_edited", m.IsEdited)
	f.flag("is_forwarded", m.IsForwarded)
	f.str("forwarded_from", m.ForwardedFrom)
	f.flag("is_system_message", m.IsSystemMessage)
	f.str("system_message_type", m.SystemMessageType)
	f.boolp("is_read", m.IsRead)
	return f
}

// MarshalJSON encodes the sparse representation.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}

// Chat is a chat with read-time aggregates.
type Chat struct {
	JID             string
	Name            string
	IsGroup         bool
	ChatType        string
	LastMessageTime *time.Time

	LastMessage       string
	LastMessageID     string
	LastSender        string
	LastSenderName    string
	LastIsFromMe      *bool
	LastMessageMedia  string
	TotalMessageCount *int
	MessageCountToday *int
	MessageCountWeek  *int

	// Group membership and disappearing-message settings are not in the
	// bridge schema yet and stay unset.
	ParticipantCount             *int
	ParticipantNames             []string
	AdminList                    []string
	MostActiveMemberName         string
	MostActiveMemberMessageCount *int
	MediaCountByType             map[string]int
	HasMedia                     bool
	IsDisappearingMessages       bool
	DisappearingTTL              *int
}

// Map returns the sparse representation.
func (c Chat) Map() map[string]any {
	f := fields{
		"jid":      c.JID,
		"name":     c.Name,
		"is_group": c.IsGroup,
	}
	f.str("chat_type", c.ChatType)
	f.timep("last_message_time", c.LastMessageTime)
	f.str("last_message", c.LastMessage)
	f.str("last_message_id", c.LastMessageID)
	f.str("last_sender", c.LastSender)
	f.str("last_sender_name", c.LastSenderName)
	f.boolp("last_is_from_me", c.LastIsFromMe)
	f.str("last_message_media_type", c.LastMessageMedia)
	f.intp("total_message_count", c.TotalMessageCount)
	f.intp("message_count_today", c.MessageCountToday)
	f.intp("message_count_last_7_days", c.MessageCountWeek)
	f.intp("participant_count", c.ParticipantCount)
	f.strs("participant_names", c.ParticipantNames)
	f.strs("admin_list", c.AdminList)
	f.str("most_active_member_name", c.MostActiveMemberName)
	f.intp("most_active_member_message_count", c.MostActiveMemberMessageCount)
	f.counts("media_count_by_type", c.MediaCountByType)
	f.flag("has_media", c.HasMedia)
	f.flag("is_disappearing_messages", c.IsDisappearingMessages)
	f.intp("disappearing_ttl", c.DisappearingTTL)
	return f
}

// MarshalJSON encodes the sparse representation.
func (c Chat) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// DisplayName returns the chat name, falling back to the JID.
func (c Chat) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.JID
}

// Contact mirrors a whatsmeow contact plus the local nickname.
type Contact struct {
	JID          string
	PhoneNumber  string
	Name         string
	FirstName    string
	FullName     string
	PushName     string
	BusinessName string
	Nickname     string

	TotalMessageCount    *int
	MessageCountToday    *int
	MessageCountWeek     *int
	MessageCountMonth    *int
	LastMessageTime      *time.Time
	LatestMessagePreview string
}

// Map returns the sparse representation.
func (c Contact) Map() map[string]any {
	f := fields{
		"jid":          c.JID,
		"phone_number": c.PhoneNumber,
		"name":         c.Name,
	}
	f.str("first_name", c.FirstName)
	f.str("full_name", c.FullName)
	f.str("push_name", c.PushName)
	f.str("business_name", c.BusinessName)
	f.str("nickname", c.Nickname)
	f.intp("total_message_count", c.TotalMessageCount)
	f.intp("message_count_today", c.MessageCountToday)
	f.intp("message_count_last_7_days", c.MessageCountWeek)
	f.intp("message_count_last_30_days", c.MessageCountMonth)
	f.timep("last_message_time", c.LastMessageTime)
	f.str("latest_message_preview", c.LatestMessagePreview)
	return f
}

// MarshalJSON encodes the sparse representation.
func (c Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// DisplayName prefers the nickname over mirrored names.
func (c Contact) DisplayName() string {
	switch {
	case c.Nickname != "":
		return c.Nickname
	case c.Name != "":
		return c.Name
	default:
		return c.PhoneNumber
	}
}

// MessageContext is a message with its neighbours in the same chat.
type MessageContext struct {
	Message Message
	Before  []Message
	After   []Message
}

// Map returns the sparse representation. Before and After are always present.
func (mc MessageContext) Map() map[string]any {
	return map[string]any{
		"message": mc.Message.Map(),
		"before":  messageMaps(mc.Before),
		"after":   messageMaps(mc.After),
	}
}

// MarshalJSON encodes the sparse representation.
func (mc MessageContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(mc.Map())
}

// Nickname is a local display-name override.
type Nickname struct {
	JID       string    `json:"jid" db:"jid"`
	Nickname  string    `json:"nickname" db:"nickname"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Messages converts a slice to sparse maps.
func Messages(msgs []Message) []map[string]any {
	return messageMaps(msgs)
}

// Chats converts a slice to sparse maps.
func Chats(chats []Chat) []map[string]any {
	out := make([]map[string]any, len(chats))
	for i, c := range chats {
		out[i] = c.Map()
	}
	return out
}

func messageMaps(msgs []Message) []map[string]any {
	out := make([]map[string]any, len(msgs))
	for i, m := range msgs {
		out[i] = m.Map()
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
