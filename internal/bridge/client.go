// Package bridge is the HTTP client for the WhatsApp bridge process. Each
// method maps to one bridge endpoint; failures are never retried.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matheus3301/wppmcp/internal/config"
	"go.uber.org/zap"
)

// Per-call deadlines.
const (
	ControlTimeout = 30 * time.Second
	FileTimeout    = 60 * time.Second
)

const maxErrorBody = 512

// Observer is told about the outcome of every bridge call.
type Observer interface {
	ObserveBridge(op string, err error)
}

// Client talks to the bridge's REST API.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registers o for call outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the bridge described by cfg.
func New(cfg config.BridgeConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is the bridge's JSON reply. Its shape varies per endpoint; the
// success and message keys are common to all of them.
type Response map[string]any

// Success reports the bridge's success flag.
func (r Response) Success() bool {
	ok, _ := r["success"].(bool)
	return ok
}

// Message returns the bridge's human-readable status.
func (r Response) Message() string {
	msg, _ := r["message"].(string)
	return msg
}

func (c *Client) post(ctx context.Context, op, path string, timeout time.Duration, body any) (Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}
	return c.do(ctx, op, http.MethodPost, path, timeout, payload)
}

func (c *Client) do(ctx context.Context, op, method, path string, timeout time.Duration, payload []byte) (resp Response, err error) {
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBridge(op, err)
		}
		if err != nil {
			c.logger.Warn("bridge call failed", zap.String("op", op), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Op: op, Status: res.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &Error{Op: op, Status: res.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}

	resp = Response{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &Error{Op: op, Status: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	c.logger.Debug("bridge call",
		zap.String("op", op),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	return resp, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SendMessage sends a text message to a phone number or JID.
func (c *Client) SendMessage(ctx context.Context, recipient, message string) (Response, error) {
	return c.post(ctx, "send_message", "/send", ControlTimeout, sendRequest{
		Recipient: recipient,
		Message:   message,
	})
}

// SendFile sends the file at mediaPath, which must be readable by the bridge.
func (c *Client) SendFile(ctx context.Context, recipient, mediaPath string) (Response, error) {
	return c.post(ctx, "send_file", "/send", FileTimeout, sendRequest{
		Recipient: recipient,
		MediaPath: mediaPath,
	})
}

// SendReaction reacts to a message. An empty emoji removes the reaction.
func (c *Client) SendReaction(ctx context.Context, chatJID, messageID, emoji string) (Response, error) {
	return c.post(ctx, "send_reaction", "/reaction", ControlTimeout, reactionRequest{
		ChatJID:   chatJID,
		MessageID: messageID,
		Emoji:     emoji,
	})
}

// EditMessage replaces the text of one of our messages.
func (c *Client) EditMessage(ctx context.Context, chatJID, messageID, newContent string) (Response, error) {
	return c.post(ctx, "edit_message", "/edit", ControlTimeout, editRequest{
		ChatJID:    chatJID,
		MessageID:  messageID,
		NewContent: newContent,
	})
}

// DeleteMessage revokes a message for everyone. senderJID is needed when an
// admin deletes someone else's message in a group.
func (c *Client) DeleteMessage(ctx context.Context, chatJID, messageID, senderJID string) (Response, error) {
	return c.post(ctx, "delete_message", "/delete", ControlTimeout, deleteRequest{
		ChatJID:   chatJID,
		MessageID: messageID,
		SenderJID: senderJID,
	})
}

// MarkRead sends read receipts for messageIDs.
func (c *Client) MarkRead(ctx context.Context, chatJID string, messageIDs []string, senderJID string) (Response, error) {
	return c.post(ctx, "mark_read", "/read", ControlTimeout, readRequest{
		ChatJID:    chatJID,
		MessageIDs: messageIDs,
		SenderJID:  senderJID,
	})
}

// GroupInfo fetches group metadata as returned by the bridge.
func (c *Client) GroupInfo(ctx context.Context, groupJID string) (Response, error) {
	return c.do(ctx, "get_group_info", http.MethodGet, "/group/"+url.PathEscape(groupJID), ControlTimeout, nil)
}

// CreateGroup creates a group with the given participants.
func (c *Client) CreateGroup(ctx context.Context, name string, participants []string) (Response, error) {
	return c.post(ctx, "create_group", "/group/create", ControlTimeout, createGroupRequest{
		Name:         name,
		Participants: participants,
	})
}

// CreatePoll posts a poll to a chat.
func (c *Client) CreatePoll(ctx context.Context, chatJID, question string, options []string, multiSelect bool) (Response, error) {
	return c.post(ctx, "create_poll", "/poll/create", ControlTimeout, pollRequest{
		ChatJID:     chatJID,
		Question:    question,
		Options:     options,
		MultiSelect: multiSelect,
	})
}
