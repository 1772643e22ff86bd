package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/matheus3301/wppmcp/internal/bridge"
	"github.com/matheus3301/wppmcp/internal/enrich"
)

// bridgeStatus converts a bridge reply into a Status, passing extra keys
// such as message_id or group details through.
func bridgeStatus(resp bridge.Response) Status {
	extra := make(map[string]any, len(resp))
	for k, v := range resp {
		if k != "success" && k != "message" {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}
	return Status{Success: resp.Success(), Message: resp.Message(), Extra: extra}
}

func statusResult(resp bridge.Response, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Data: bridgeStatus(resp)}, nil
}

type sendMessageArgs struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

func (h *handlers) sendMessage(ctx context.Context, in sendMessageArgs) (Result, error) {
	return statusResult(h.sender.SendMessage(ctx, enrich.NormalizeRecipient(in.Recipient), in.Message))
}

type sendFileArgs struct {
	Recipient string `json:"recipient"`
	MediaPath string `json:"media_path"`
}

func (h *handlers) sendFile(ctx context.Context, in sendFileArgs) (Result, error) {
	if _, err := os.Stat(in.MediaPath); err != nil {
		return Result{Data: Fail(fmt.Sprintf("Media file not found: %s", in.MediaPath))}, nil
	}
	return statusResult(h.sender.SendFile(ctx, enrich.NormalizeRecipient(in.Recipient), in.MediaPath))
}

type sendAudioArgs struct {
	Recipient string `json:"recipient"`
	MediaPath string `json:"media_path" validate:"endswith=.ogg"`
}

// sendAudio sends an Opus .ogg file, which WhatsApp plays as a voice note.
// Other formats are rejected rather than transcoded.
func (h *handlers) sendAudio(ctx context.Context, in sendAudioArgs) (Result, error) {
	return h.sendFile(ctx, sendFileArgs(in))
}

type reactionArgs struct {
	ChatJID   string `json:"chat_jid"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji" validate:"reaction"`
}

func (h *handlers) sendReaction(ctx context.Context, in reactionArgs) (Result, error) {
	return statusResult(h.sender.SendReaction(ctx, in.ChatJID, in.MessageID, in.Emoji))
}

type editArgs struct {
	ChatJID    string `json:"chat_jid"`
	MessageID  string `json:"message_id"`
	NewContent string `json:"new_content"`
}

func (h *handlers) editMessage(ctx context.Context, in editArgs) (Result, error) {
	return statusResult(h.sender.EditMessage(ctx, in.ChatJID, in.MessageID, in.NewContent))
}

type deleteArgs struct {
	ChatJID   string `json:"chat_jid"`
	MessageID string `json:"message_id"`
	SenderJID string `json:"sender_jid"`
}

func (h *handlers) deleteMessage(ctx context.Context, in deleteArgs) (Result, error) {
	return statusResult(h.sender.DeleteMessage(ctx, in.ChatJID, in.MessageID, in.SenderJID))
}

type markReadArgs struct {
	ChatJID    string   `json:"chat_jid"`
	MessageIDs []string `json:"message_ids" validate:"min=1,dive,required"`
	SenderJID  string   `json:"sender_jid"`
}

func (h *handlers) markRead(ctx context.Context, in markReadArgs) (Result, error) {
	return statusResult(h.sender.MarkRead(ctx, in.ChatJID, in.MessageIDs, in.SenderJID))
}

type groupInfoArgs struct {
	GroupJID string `json:"group_jid"`
}

func (h *handlers) groupInfo(ctx context.Context, in groupInfoArgs) (Result, error) {
	info, err := h.sender.GroupInfo(ctx, in.GroupJID)
	if err != nil {
		return Result{Data: Fail(fmt.Sprintf("Failed to get group info: %v", err))}, nil
	}
	if len(info) == 0 {
		return Result{Data: Fail("Failed to get group info")}, nil
	}
	return Result{Data: Status{Success: true, Data: map[string]any(info)}}, nil
}

type createGroupArgs struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants" validate:"min=1,dive,required"`
}

func (h *handlers) createGroup(ctx context.Context, in createGroupArgs) (Result, error) {
	participants := make([]string, len(in.Participants))
	for i, p := range in.Participants {
		participants[i] = enrich.UserJID(enrich.NormalizeRecipient(p))
	}
	return statusResult(h.sender.CreateGroup(ctx, in.Name, participants))
}

type pollArgs struct {
	ChatJID     string   `json:"chat_jid"`
	Question    string   `json:"question"`
	Options     []string `json:"options" validate:"min=2,max=12,dive,required"`
	MultiSelect bool     `json:"multi_select"`
}

func (h *handlers) createPoll(ctx context.Context, in pollArgs) (Result, error) {
	return statusResult(h.sender.CreatePoll(ctx, in.ChatJID, in.Question, in.Options, in.MultiSelect))
}

type setNicknameArgs struct {
	JID      string `json:"jid"`
	Nickname string `json:"nickname"`
}

func (h *handlers) setNickname(ctx context.Context, in setNicknameArgs) (Result, error) {
	if err := h.reader.SetNickname(ctx, in.JID, in.Nickname); err != nil {
		return Result{}, err
	}
	return Result{Data: OK(fmt.Sprintf("Nickname for %s set to %s", in.JID, in.Nickname))}, nil
}

func (h *handlers) removeNickname(ctx context.Context, in jidArgs) (Result, error) {
	removed, err := h.reader.RemoveNickname(ctx, in.JID)
	if err != nil {
		return Result{}, err
	}
	if !removed {
		return Result{Data: Fail(fmt.Sprintf("No nickname set for %s", in.JID))}, nil
	}
	return Result{Data: OK(fmt.Sprintf("Nickname removed for %s", in.JID))}, nil
}
