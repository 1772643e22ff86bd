package enrich

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// ParseJID splits a JID string. Malformed input yields ok=false.
func ParseJID(jid string) (types.JID, bool) {
	parsed, err := types.ParseJID(strings.TrimSpace(jid))
	if err != nil {
		return types.JID{}, false
	}
	return parsed, true
}

// ClassifyJID reports whether jid addresses a group and whether its server
// suffix was recognised at all.
func ClassifyJID(jid string) (isGroup, known bool) {
	parsed, ok := ParseJID(jid)
	if !ok {
		return false, false
	}
	switch parsed.Server {
	case types.GroupServer:
		return true, true
	case types.DefaultUserServer, types.HiddenUserServer, types.LegacyUserServer, types.BroadcastServer:
		return false, true
	default:
		return false, false
	}
}

// PhoneFromJID returns the user part of a JID, which is the phone number for
// direct chats. Input without a server is taken as a phone number and keeps
// only its digits.
func PhoneFromJID(jid string) string {
	jid = strings.TrimSpace(jid)
	if !strings.Contains(jid, "@") {
		if d := digits(jid); d != "" {
			return d
		}
		return jid
	}
	parsed, ok := ParseJID(jid)
	if !ok {
		return jid
	}
	return parsed.User
}

// UserJID turns a phone number into a direct-chat JID. Values that already
// carry a server are returned unchanged.
func UserJID(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.Contains(phone, "@") {
		return phone
	}
	return types.NewJID(digits(phone), types.DefaultUserServer).String()
}

// NormalizeRecipient strips formatting from phone numbers and leaves JIDs as
// they are. The bridge accepts both forms.
func NormalizeRecipient(recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if strings.Contains(recipient, "@") {
		return recipient
	}
	return digits(recipient)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
