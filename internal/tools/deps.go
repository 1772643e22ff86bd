package tools

import (
	"context"

	"github.com/matheus3301/wppmcp/internal/bridge"
	"github.com/matheus3301/wppmcp/internal/model"
	"github.com/matheus3301/wppmcp/internal/store"
)

// Reader is the read side, implemented by *store.Store.
type Reader interface {
	ListMessages(ctx context.Context, q store.MessageQuery) ([]model.Message, error)
	MessageContext(ctx context.Context, messageID string, before, after int) (*model.MessageContext, error)
	LastInteraction(ctx context.Context, jid string) (*model.Message, error)

	ListChats(ctx context.Context, q store.ChatQuery) ([]model.Chat, error)
	GetChat(ctx context.Context, jid string, includeLast bool) (*model.Chat, error)
	DirectChatByContact(ctx context.Context, phone string) (*model.Chat, error)
	ContactChats(ctx context.Context, jid string, limit, page int) ([]model.Chat, error)
	ChatStatistics(ctx context.Context, jid string) (store.Stats, error)

	SearchContacts(ctx context.Context, query string) ([]model.Contact, error)
	GetContact(ctx context.Context, jid string) (*model.Contact, error)
	GetContactByPhone(ctx context.Context, phone string) (*model.Contact, error)
	ListContacts(ctx context.Context, limit int) ([]model.Contact, error)
	ContactActivity(ctx context.Context, c *model.Contact) error

	SetNickname(ctx context.Context, jid, nickname string) error
	Nickname(ctx context.Context, jid string) (string, bool, error)
	RemoveNickname(ctx context.Context, jid string) (bool, error)
	ListNicknames(ctx context.Context) ([]model.Nickname, error)
}

// Sender is the write side, implemented by *bridge.Client.
type Sender interface {
	SendMessage(ctx context.Context, recipient, message string) (bridge.Response, error)
	SendFile(ctx context.Context, recipient, mediaPath string) (bridge.Response, error)
	SendReaction(ctx context.Context, chatJID, messageID, emoji string) (bridge.Response, error)
	EditMessage(ctx context.Context, chatJID, messageID, newContent string) (bridge.Response, error)
	DeleteMessage(ctx context.Context, chatJID, messageID, senderJID string) (bridge.Response, error)
	MarkRead(ctx context.Context, chatJID string, messageIDs []string, senderJID string) (bridge.Response, error)
	GroupInfo(ctx context.Context, groupJID string) (bridge.Response, error)
	CreateGroup(ctx context.Context, name string, participants []string) (bridge.Response, error)
	CreatePoll(ctx context.Context, chatJID, question string, options []string, multiSelect bool) (bridge.Response, error)
}

var (
	_ Reader = (*store.Store)(nil)
	_ Sender = (*bridge.Client)(nil)
)
