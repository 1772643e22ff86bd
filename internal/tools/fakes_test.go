package tools

import (
	"context"
	"strings"

	"github.com/matheus3301/wppmcp/internal/bridge"
	"github.com/matheus3301/wppmcp/internal/model"
	"github.com/matheus3301/wppmcp/internal/store"
)

type fakeReader struct {
	err error

	messages  []model.Message
	lastQuery store.MessageQuery
	chats     []model.Chat
	lastChats store.ChatQuery
	chat      *model.Chat
	context   *model.MessageContext
	stats     store.Stats
	contacts  []model.Contact
	byJID     map[string]model.Contact
	nicknames map[string]string
}

func newFakeReader() *fakeReader {
	return &fakeReader{byJID: map[string]model.Contact{}, nicknames: map[string]string{}}
}

func (f *fakeReader) ListMessages(_ context.Context, q store.MessageQuery) ([]model.Message, error) {
	f.lastQuery = q
	return f.messages, f.err
}

func (f *fakeReader) MessageContext(context.Context, string, int, int) (*model.MessageContext, error) {
	return f.context, f.err
}

func (f *fakeReader) LastInteraction(context.Context, string) (*model.Message, error) {
	if len(f.messages) == 0 {
		return nil, f.err
	}
	return &f.messages[0], f.err
}

func (f *fakeReader) ListChats(_ context.Context, q store.ChatQuery) ([]model.Chat, error) {
	f.lastChats = q
	return f.chats, f.err
}

func (f *fakeReader) GetChat(context.Context, string, bool) (*model.Chat, error) {
	return f.chat, f.err
}

func (f *fakeReader) DirectChatByContact(context.Context, string) (*model.Chat, error) {
	return f.chat, f.err
}

func (f *fakeReader) ContactChats(context.Context, string, int, int) ([]model.Chat, error) {
	return f.chats, f.err
}

func (f *fakeReader) ChatStatistics(context.Context, string) (store.Stats, error) {
	return f.stats, f.err
}

func (f *fakeReader) SearchContacts(context.Context, string) ([]model.Contact, error) {
	return f.contacts, f.err
}

func (f *fakeReader) GetContact(_ context.Context, jid string) (*model.Contact, error) {
	c, ok := f.byJID[jid]
	if !ok {
		return nil, f.err
	}
	return &c, f.err
}

func (f *fakeReader) GetContactByPhone(_ context.Context, phone string) (*model.Contact, error) {
	for _, c := range f.byJID {
		if c.PhoneNumber == strings.TrimPrefix(phone, "+") {
			return &c, nil
		}
	}
	return nil, f.err
}

func (f *fakeReader) ListContacts(context.Context, int) ([]model.Contact, error) {
	return f.contacts, f.err
}

func (f *fakeReader) ContactActivity(_ context.Context, c *model.Contact) error {
	c.TotalMessageCount = model.Int(3)
	c.MessageCountToday = model.Int(1)
	c.MessageCountWeek = model.Int(2)
	c.MessageCountMonth = model.Int(3)
	return f.err
}

func (f *fakeReader) SetNickname(_ context.Context, jid, nickname string) error {
	if f.err != nil {
		return f.err
	}
	if strings.TrimSpace(nickname) == "" {
		return store.ErrEmptyNickname
	}
	f.nicknames[jid] = nickname
	return nil
}

func (f *fakeReader) Nickname(_ context.Context, jid string) (string, bool, error) {
	n, ok := f.nicknames[jid]
	return n, ok, f.err
}

func (f *fakeReader) RemoveNickname(_ context.Context, jid string) (bool, error) {
	_, ok := f.nicknames[jid]
	delete(f.nicknames, jid)
	return ok, f.err
}

func (f *fakeReader) ListNicknames(context.Context) ([]model.Nickname, error) {
	var out []model.Nickname
	for jid, n := range f.nicknames {
		out = append(out, model.Nickname{JID: jid, Nickname: n})
	}
	return out, f.err
}

type sent struct {
	op   string
	args []any
}

type fakeSender struct {
	resp  bridge.Response
	err   error
	calls []sent
}

func (f *fakeSender) record(op string, args ...any) (bridge.Response, error) {
	f.calls = append(f.calls, sent{op: op, args: args})
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return bridge.Response{"success": true, "message": op + " ok"}, nil
	}
	return f.resp, nil
}

func (f *fakeSender) SendMessage(_ context.Context, recipient, message string) (bridge.Response, error) {
	return f.record("send_message", recipient, message)
}

func (f *fakeSender) SendFile(_ context.Context, recipient, mediaPath string) (bridge.Response, error) {
	return f.record("send_file", recipient, mediaPath)
}

func (f *fakeSender) SendReaction(_ context.Context, chatJID, messageID, emoji string) (bridge.Response, error) {
	return f.record("send_reaction", chatJID, messageID, emoji)
}

func (f *fakeSender) EditMessage(_ context.Context, chatJID, messageID, newContent string) (bridge.Response, error) {
	return f.record("edit_message", chatJID, messageID, newContent)
}

func (f *fakeSender) DeleteMessage(_ context.Context, chatJID, messageID, senderJID string) (bridge.Response, error) {
	return f.record("delete_message", chatJID, messageID, senderJID)
}

func (f *fakeSender) MarkRead(_ context.Context, chatJID string, messageIDs []string, senderJID string) (bridge.Response, error) {
	return f.record("mark_read", chatJID, messageIDs, senderJID)
}

func (f *fakeSender) GroupInfo(_ context.Context, groupJID string) (bridge.Response, error) {
	return f.record("get_group_info", groupJID)
}

func (f *fakeSender) CreateGroup(_ context.Context, name string, participants []string) (bridge.Response, error) {
	return f.record("create_group", name, participants)
}

func (f *fakeSender) CreatePoll(_ context.Context, chatJID, question string, options []string, multiSelect bool) (bridge.Response, error) {
	return f.record("create_poll", chatJID, question, options, multiSelect)
}
