package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matheus3301/wppmcp/internal/enrich"
	"github.com/matheus3301/wppmcp/internal/model"
)

const (
	defaultMessageLimit = 20
	maxContextWindow    = 50
)

const messageSelect = `
	SELECT m.id, m.chat_jid, m.sender, m.content, m.timestamp, m.is_from_me,
	       m.media_type, m.filename, m.file_length, c.name AS chat_name
	FROM messages m
	LEFT JOIN chats c ON c.jid = m.chat_jid`

type messageRow struct {
	ID         string         `db:"id"`
	ChatJID    string         `db:"chat_jid"`
	Sender     sql.NullString `db:"sender"`
	Content    sql.NullString `db:"content"`
	Timestamp  sql.NullTime   `db:"timestamp"`
	IsFromMe   sql.NullBool   `db:"is_from_me"`
	MediaType  sql.NullString `db:"media_type"`
	Filename   sql.NullString `db:"filename"`
	FileLength sql.NullInt64  `db:"file_length"`
	ChatName   sql.NullString `db:"chat_name"`
}

// MessageQuery filters ListMessages. Zero values mean "no filter".
type MessageQuery struct {
	After          *time.Time // inclusive
	Before         *time.Time // exclusive
	Sender         string
	ChatJID        string
	Query          string
	Limit          int
	Page           int
	IncludeContext bool
	ContextBefore  int
	ContextAfter   int
}

// ListMessages returns messages matching every set filter, newest first.
// With IncludeContext each match is surrounded by its neighbours from the
// same chat in chronological order; a message is emitted at most once per
// call. Pages never share a match, but a neighbour that sits next to matches
// on two pages shows up on both.
func (s *Store) ListMessages(ctx context.Context, q MessageQuery) ([]model.Message, error) {
	var (
		where []string
		args  []any
	)
	if q.After != nil {
		where = append(where, "julianday(m.timestamp) >= julianday(?)")
		args = append(args, *q.After)
	}
	if q.Before != nil {
		where = append(where, "julianday(m.timestamp) < julianday(?)")
		args = append(args, *q.Before)
	}
	if q.Sender != "" {
		where = append(where, "m.sender = ?")
		args = append(args, enrich.PhoneFromJID(q.Sender))
	}
	if q.ChatJID != "" {
		where = append(where, "m.chat_jid = ?")
		args = append(args, q.ChatJID)
	}
	if q.Query != "" {
		where = append(where, `LOWER(m.content) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Query))
	}

	query := messageSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := paginate(q.Limit, q.Page, defaultMessageLimit)
	query += " ORDER BY julianday(m.timestamp) DESC, m.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []messageRow
	if err := sqlx.SelectContext(ctx, s.messages, &rows, query, args...); err != nil {
		return nil, unavailable("list messages", err)
	}

	if q.IncludeContext && len(rows) > 0 {
		expanded, err := s.expandContext(ctx, rows, q.ContextBefore, q.ContextAfter)
		if err != nil {
			return nil, err
		}
		rows = expanded
	}
	return s.toMessages(ctx, rows)
}

func (s *Store) expandContext(ctx context.Context, matches []messageRow, before, after int) ([]messageRow, error) {
	seen := make(map[string]bool)
	out := make([]messageRow, 0, len(matches)*(1+before+after))
	for _, match := range matches {
		prev, err := s.neighbours(ctx, match, before, true)
		if err != nil {
			return nil, err
		}
		next, err := s.neighbours(ctx, match, after, false)
		if err != nil {
			return nil, err
		}
		group := append(append(prev, match), next...)
		for _, r := range group {
			key := r.ChatJID + "\x00" + r.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out, nil
}

// neighbours returns up to n messages of the same chat strictly before (or
// after) anchor, in chronological order.
func (s *Store) neighbours(ctx context.Context, anchor messageRow, n int, earlier bool) ([]messageRow, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > maxContextWindow {
		n = maxContextWindow
	}
	cmp, order := ">", "ASC"
	if earlier {
		cmp, order = "<", "DESC"
	}
	query := messageSelect + `
		WHERE m.chat_jid = ?
		  AND (julianday(m.timestamp) ` + cmp + ` julianday(?)
		       OR (julianday(m.timestamp) = julianday(?) AND m.id ` + cmp + ` ?))
		ORDER BY julianday(m.timestamp) ` + order + `, m.id ` + order + `
		LIMIT ?`

	var rows []messageRow
	ts := anchor.Timestamp.Time
	if err := sqlx.SelectContext(ctx, s.messages, &rows, query, anchor.ChatJID, ts, ts, anchor.ID, n); err != nil {
		return nil, unavailable("message context", err)
	}
	if earlier {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows, nil
}

// MessageContext returns the message with the given id and its neighbours.
// An unknown id yields nil without error.
func (s *Store) MessageContext(ctx context.Context, messageID string, before, after int) (*model.MessageContext, error) {
	var target messageRow
	err := sqlx.GetContext(ctx, s.messages, &target, messageSelect+" WHERE m.id = ? LIMIT 1", messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("message context", err)
	}

	prev, err := s.neighbours(ctx, target, before, true)
	if err != nil {
		return nil, err
	}
	next, err := s.neighbours(ctx, target, after, false)
	if err != nil {
		return nil, err
	}

	all := append(append(append([]messageRow{}, prev...), target), next...)
	msgs, err := s.toMessages(ctx, all)
	if err != nil {
		return nil, err
	}
	return &model.MessageContext{
		Before:  msgs[:len(prev)],
		Message: msgs[len(prev)],
		After:   msgs[len(prev)+1:],
	}, nil
}

// LastInteraction returns the newest message exchanged with jid, either in
// its chat or sent by it elsewhere. Nil when there is none.
func (s *Store) LastInteraction(ctx context.Context, jid string) (*model.Message, error) {
	var row messageRow
	err := sqlx.GetContext(ctx, s.messages, &row, messageSelect+`
		WHERE m.chat_jid = ? OR m.sender = ?
		ORDER BY julianday(m.timestamp) DESC, m.id DESC
		LIMIT 1`, jid, enrich.PhoneFromJID(jid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("last interaction", err)
	}
	msgs, err := s.toMessages(ctx, []messageRow{row})
	if err != nil {
		return nil, err
	}
	return &msgs[0], nil
}

// toMessages converts rows and resolves sender names in one bulk lookup.
func (s *Store) toMessages(ctx context.Context, rows []messageRow) ([]model.Message, error) {
	jids := make([]string, 0, len(rows))
	for _, r := range rows {
		if !r.IsFromMe.Bool && r.Sender.String != "" {
			jids = append(jids, enrich.UserJID(r.Sender.String))
		}
	}
	names, err := s.displayNames(ctx, jids)
	if err != nil {
		return nil, err
	}

	out := make([]model.Message, len(rows))
	for i, r := range rows {
		m := model.Message{
			ID:         r.ID,
			ChatJID:    r.ChatJID,
			Timestamp:  r.Timestamp.Time,
			Sender:     r.Sender.String,
			Content:    r.Content.String,
			IsFromMe:   r.IsFromMe.Bool,
			ChatName:   r.ChatName.String,
			MediaType:  r.MediaType.String,
			Filename:   r.Filename.String,
			FileLength: r.FileLength.Int64,
		}
		switch {
		case m.IsFromMe:
			m.SenderName = "Me"
		case m.Sender != "":
			m.SenderName = names[enrich.UserJID(m.Sender)]
		}
		s.enrich.Message(&m)
		out[i] = m
	}
	return out, nil
}
