package model

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/matheus3301/wppmcp/internal/bus"
	"github.com/matheus3301/wppmcp/internal/status"
	"github.com/matheus3301/wppmcp/internal/tui/client"
)

// Daemon is the slice of the tool service the TUI needs.
type Daemon interface {
	ListTools(ctx context.Context) ([]client.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*client.Result, error)
	GetStatus(ctx context.Context) (*client.Status, error)
	WatchEvents(ctx context.Context, fn func(client.Event) error) error
}

// Refresh tells the UI which part of the cache changed.
type Refresh int

const (
	RefreshStatus Refresh = iota
	RefreshChats
	RefreshMessages
)

const (
	chatPageSize    = 50
	messagePageSize = 100
	searchPageSize  = 50
)

// ViewModel caches tool results and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	daemon        Daemon
	status        *client.Status
	tools         []client.Tool
	chats         []Chat
	messages      []Message
	activeChatJID string

	refreshCh chan Refresh
}

// NewViewModel creates a new view model connected to the daemon client.
func NewViewModel(d Daemon) *ViewModel {
	return &ViewModel{
		daemon:    d,
		refreshCh: make(chan Refresh, 8),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan Refresh {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh(r Refresh) {
	select {
	case vm.refreshCh <- r:
	default:
	}
}

// LoadStatus fetches bridge health and daemon uptime.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	st, err := vm.daemon.GetStatus(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = st
	vm.mu.Unlock()
	return nil
}

// Status returns the last fetched status, or nil.
func (vm *ViewModel) Status() *client.Status {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// LoadTools fetches the tool registry.
func (vm *ViewModel) LoadTools(ctx context.Context) error {
	list, err := vm.daemon.ListTools(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.tools = list
	vm.mu.Unlock()
	return nil
}

// Tools returns the cached tool list.
func (vm *ViewModel) Tools() []client.Tool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.tools
}

// LoadChats fetches the most recently active chats.
func (vm *ViewModel) LoadChats(ctx context.Context) error {
	var chats []Chat
	err := vm.callData(ctx, "list_chats", map[string]any{
		"limit":                chatPageSize,
		"include_last_message": true,
		"sort_by":              "last_active",
	}, &chats)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.chats = chats
	vm.mu.Unlock()
	return nil
}

// Chats returns the cached chat list.
func (vm *ViewModel) Chats() []Chat {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.chats
}

// ChatName resolves a JID against the cached chats.
func (vm *ViewModel) ChatName(jid string) string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.chats {
		if c.JID == jid {
			return c.DisplayName()
		}
	}
	return jid
}

// FindChat returns the first cached chat whose name contains needle,
// ignoring case. An exact JID match wins.
func (vm *ViewModel) FindChat(needle string) (Chat, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.chats {
		if c.JID == needle {
			return c, true
		}
	}
	lower := strings.ToLower(needle)
	for _, c := range vm.chats {
		if strings.Contains(strings.ToLower(c.Name), lower) {
			return c, true
		}
	}
	return Chat{}, false
}

// LoadMessages fetches the latest messages of a chat and makes it active.
func (vm *ViewModel) LoadMessages(ctx context.Context, chatJID string) error {
	var msgs []Message
	err := vm.callData(ctx, "list_messages", map[string]any{
		"chat_jid":        chatJID,
		"limit":           messagePageSize,
		"include_context": false,
	}, &msgs)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.messages = msgs
	vm.activeChatJID = chatJID
	vm.mu.Unlock()
	return nil
}

// Messages returns the cached messages of the active chat.
func (vm *ViewModel) Messages() []Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages
}

// ActiveChat returns the JID of the open chat, if any.
func (vm *ViewModel) ActiveChat() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.activeChatJID
}

// CloseChat forgets the active chat.
func (vm *ViewModel) CloseChat() {
	vm.mu.Lock()
	vm.activeChatJID = ""
	vm.messages = nil
	vm.mu.Unlock()
}

// SearchMessages runs a content search across all chats.
func (vm *ViewModel) SearchMessages(ctx context.Context, query string) ([]Message, error) {
	var msgs []Message
	err := vm.callData(ctx, "list_messages", map[string]any{
		"query":           query,
		"limit":           searchPageSize,
		"include_context": false,
	}, &msgs)
	return msgs, err
}

// ChatStatistics returns the statistics object of a chat.
func (vm *ViewModel) ChatStatistics(ctx context.Context, chatJID string) (map[string]any, error) {
	var stats map[string]any
	err := vm.callData(ctx, "get_chat_statistics", map[string]any{"chat_jid": chatJID}, &stats)
	return stats, err
}

// SendText sends a message through the bridge.
func (vm *ViewModel) SendText(ctx context.Context, recipient, text string) error {
	_, err := vm.call(ctx, "send_message", map[string]any{
		"recipient": recipient,
		"message":   text,
	})
	return err
}

// Contacts returns the formatted contact listing.
func (vm *ViewModel) Contacts(ctx context.Context) (string, error) {
	res, err := vm.call(ctx, "list_all_contacts", nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Nicknames returns the formatted nickname listing.
func (vm *ViewModel) Nicknames(ctx context.Context) (string, error) {
	res, err := vm.call(ctx, "list_nicknames", nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// SetNickname stores a local nickname for jid.
func (vm *ViewModel) SetNickname(ctx context.Context, jid, nickname string) error {
	_, err := vm.call(ctx, "set_nickname", map[string]any{"jid": jid, "nickname": nickname})
	return err
}

// RemoveNickname deletes a local nickname.
func (vm *ViewModel) RemoveNickname(ctx context.Context, jid string) error {
	_, err := vm.call(ctx, "remove_nickname", map[string]any{"jid": jid})
	return err
}

// Watch follows daemon events until ctx ends, refreshing the cache when the
// bridge state flips or a message is sent.
func (vm *ViewModel) Watch(ctx context.Context) error {
	return vm.daemon.WatchEvents(ctx, func(evt client.Event) error {
		switch evt.Kind {
		case status.KindBridgeStatus:
			if err := vm.LoadStatus(ctx); err == nil {
				vm.signalRefresh(RefreshStatus)
			}
		case bus.KindToolCalled:
			tool, _ := evt.Payload["tool"].(string)
			if failed, _ := evt.Payload["is_error"].(bool); failed || !strings.HasPrefix(tool, "send_") {
				return nil
			}
			if jid := vm.ActiveChat(); jid != "" {
				if err := vm.LoadMessages(ctx, jid); err == nil {
					vm.signalRefresh(RefreshMessages)
				}
			}
			if err := vm.LoadChats(ctx); err == nil {
				vm.signalRefresh(RefreshChats)
			}
		}
		return nil
	})
}

func (vm *ViewModel) call(ctx context.Context, tool string, args map[string]any) (*client.Result, error) {
	res, err := vm.daemon.CallTool(ctx, tool, args)
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return nil, toolError(res)
	}
	return res, nil
}

func (vm *ViewModel) callData(ctx context.Context, tool string, args map[string]any, out any) error {
	res, err := vm.call(ctx, tool, args)
	if err != nil {
		return err
	}
	if res.Data == nil {
		return errors.New(tool + ": " + res.Text)
	}
	return decodeData(res.Data, out)
}

// toolError extracts the human message from a failed result.
func toolError(res *client.Result) error {
	if res.Text != "" {
		return errors.New(res.Text)
	}
	if m, ok := res.Data.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return errors.New(msg)
		}
	}
	return errors.New("tool call failed")
}
