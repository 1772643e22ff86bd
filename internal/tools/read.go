package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/wppmcp/internal/model"
	"github.com/matheus3301/wppmcp/internal/store"
)

type handlers struct {
	reader Reader
	sender Sender
}

type searchContactsArgs struct {
	Query string `json:"query"`
}

func (h *handlers) searchContacts(ctx context.Context, in searchContactsArgs) (Result, error) {
	contacts, err := h.reader.SearchContacts(ctx, in.Query)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: formatContacts(contacts, "No contacts found matching your query.")}, nil
}

type listMessagesArgs struct {
	After          string `json:"after" validate:"omitempty,timestamp"`
	Before         string `json:"before" validate:"omitempty,timestamp"`
	Sender         string `json:"sender_phone_number"`
	ChatJID        string `json:"chat_jid"`
	Query          string `json:"query"`
	Limit          int    `json:"limit" validate:"gte=1,lte=500"`
	Page           int    `json:"page" validate:"gte=0"`
	IncludeContext bool   `json:"include_context"`
	ContextBefore  int    `json:"context_before" validate:"gte=0,lte=50"`
	ContextAfter   int    `json:"context_after" validate:"gte=0,lte=50"`
}

func (h *handlers) listMessages(ctx context.Context, in listMessagesArgs) (Result, error) {
	msgs, err := h.reader.ListMessages(ctx, store.MessageQuery{
		After:          optionalTime(in.After),
		Before:         optionalTime(in.Before),
		Sender:         in.Sender,
		ChatJID:        in.ChatJID,
		Query:          in.Query,
		Limit:          in.Limit,
		Page:           in.Page,
		IncludeContext: in.IncludeContext,
		ContextBefore:  in.ContextBefore,
		ContextAfter:   in.ContextAfter,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Data: model.Messages(msgs)}, nil
}

type listChatsArgs struct {
	Query              string `json:"query"`
	Limit              int    `json:"limit" validate:"gte=1,lte=500"`
	Page               int    `json:"page" validate:"gte=0"`
	IncludeLastMessage bool   `json:"include_last_message"`
	SortBy             string `json:"sort_by" validate:"oneof=last_active name"`
}

func (h *handlers) listChats(ctx context.Context, in listChatsArgs) (Result, error) {
	chats, err := h.reader.ListChats(ctx, store.ChatQuery{
		Query:              in.Query,
		Limit:              in.Limit,
		Page:               in.Page,
		IncludeLastMessage: in.IncludeLastMessage,
		SortBy:             in.SortBy,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Data: model.Chats(chats)}, nil
}

type getChatArgs struct {
	ChatJID            string `json:"chat_jid"`
	IncludeLastMessage bool   `json:"include_last_message"`
}

func (h *handlers) getChat(ctx context.Context, in getChatArgs) (Result, error) {
	chat, err := h.reader.GetChat(ctx, in.ChatJID, in.IncludeLastMessage)
	if err != nil {
		return Result{}, err
	}
	if chat == nil {
		return Result{Text: fmt.Sprintf("No chat found with JID %s", in.ChatJID)}, nil
	}
	return Result{Data: chat.Map()}, nil
}

type directChatArgs struct {
	Phone string `json:"sender_phone_number"`
}

func (h *handlers) directChatByContact(ctx context.Context, in directChatArgs) (Result, error) {
	chat, err := h.reader.DirectChatByContact(ctx, in.Phone)
	if err != nil {
		return Result{}, err
	}
	if chat == nil {
		return Result{Text: fmt.Sprintf("No direct chat found for %s", in.Phone)}, nil
	}
	return Result{Data: chat.Map()}, nil
}

type contactChatsArgs struct {
	JID   string `json:"jid"`
	Limit int    `json:"limit" validate:"gte=1,lte=500"`
	Page  int    `json:"page" validate:"gte=0"`
}

func (h *handlers) contactChats(ctx context.Context, in contactChatsArgs) (Result, error) {
	chats, err := h.reader.ContactChats(ctx, in.JID, in.Limit, in.Page)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: model.Chats(chats)}, nil
}

type jidArgs struct {
	JID string `json:"jid"`
}

func (h *handlers) lastInteraction(ctx context.Context, in jidArgs) (Result, error) {
	msg, err := h.reader.LastInteraction(ctx, in.JID)
	if err != nil {
		return Result{}, err
	}
	if msg == nil {
		return Result{Text: fmt.Sprintf("No interactions found for %s", in.JID)}, nil
	}
	return Result{Data: msg.Map()}, nil
}

type messageContextArgs struct {
	MessageID string `json:"message_id"`
	Before    int    `json:"before" validate:"gte=0,lte=50"`
	After     int    `json:"after" validate:"gte=0,lte=50"`
}

func (h *handlers) messageContext(ctx context.Context, in messageContextArgs) (Result, error) {
	mc, err := h.reader.MessageContext(ctx, in.MessageID, in.Before, in.After)
	if err != nil {
		return Result{}, err
	}
	if mc == nil {
		return Result{Text: fmt.Sprintf("No message found with ID %s", in.MessageID)}, nil
	}
	return Result{Data: mc.Map()}, nil
}

type chatJIDArgs struct {
	ChatJID string `json:"chat_jid"`
}

func (h *handlers) chatStatistics(ctx context.Context, in chatJIDArgs) (Result, error) {
	st, err := h.reader.ChatStatistics(ctx, in.ChatJID)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: map[string]any{
		"chat_jid":                  in.ChatJID,
		"total_message_count":       st.Total,
		"message_count_today":       st.Today,
		"message_count_last_7_days": st.Last7Days,
	}}, nil
}

type contactDetailsArgs struct {
	Identifier string `json:"identifier"`
}

func (h *handlers) contactDetails(ctx context.Context, in contactDetailsArgs) (Result, error) {
	id := strings.TrimSpace(in.Identifier)
	contact, err := h.reader.GetContact(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if contact == nil {
		if contact, err = h.reader.GetContactByPhone(ctx, id); err != nil {
			return Result{}, err
		}
	}
	if contact == nil {
		return Result{Text: fmt.Sprintf("No contact found for: %s", in.Identifier)}, nil
	}
	if err := h.reader.ContactActivity(ctx, contact); err != nil {
		return Result{}, err
	}
	return Result{Text: formatContact(*contact)}, nil
}

type listContactsArgs struct {
	Limit int `json:"limit" validate:"gte=1,lte=1000"`
}

func (h *handlers) listContacts(ctx context.Context, in listContactsArgs) (Result, error) {
	contacts, err := h.reader.ListContacts(ctx, in.Limit)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: formatContacts(contacts, "No contacts found.")}, nil
}

func (h *handlers) getNickname(ctx context.Context, in jidArgs) (Result, error) {
	nickname, ok, err := h.reader.Nickname(ctx, in.JID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Text: fmt.Sprintf("No nickname set for %s", in.JID)}, nil
	}
	return Result{Text: fmt.Sprintf("Nickname for %s: %s", in.JID, nickname)}, nil
}

func (h *handlers) listNicknames(ctx context.Context, _ struct{}) (Result, error) {
	nicknames, err := h.reader.ListNicknames(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: formatNicknames(nicknames)}, nil
}
