package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/matheus3301/wppmcp/internal/enrich"
	"github.com/matheus3301/wppmcp/internal/model"
)

// Chat sort orders.
const (
	SortLastActive = "last_active"
	SortName       = "name"
)

const defaultChatLimit = 20

const (
	chatWithLast = `
	SELECT c.jid, c.name, c.last_message_time,
	       lm.id AS last_message_id, lm.content AS last_message, lm.sender AS last_sender,
	       lm.is_from_me AS last_is_from_me, lm.media_type AS last_media_type
	FROM chats c
	LEFT JOIN messages lm ON lm.rowid = (
	    SELECT m2.rowid FROM messages m2
	    WHERE m2.chat_jid = c.jid
	    ORDER BY julianday(m2.timestamp) DESC, m2.id DESC
	    LIMIT 1)`

	chatWithoutLast = `
	SELECT c.jid, c.name, c.last_message_time,
	       NULL AS last_message_id, NULL AS last_message, NULL AS last_sender,
	       NULL AS last_is_from_me, NULL AS last_media_type
	FROM chats c`

	latestMessage   = `(SELECT MAX(julianday(m.timestamp)) FROM messages m WHERE m.chat_jid = c.jid)`
	orderLastActive = ` ORDER BY ` + latestMessage + ` IS NULL, ` + latestMessage + ` DESC, c.jid`
)

type chatRow struct {
	JID             string         `db:"jid"`
	Name            sql.NullString `db:"name"`
	LastMessageTime sql.NullTime   `db:"last_message_time"`
	LastMessageID   sql.NullString `db:"last_message_id"`
	LastMessage     sql.NullString `db:"last_message"`
	LastSender      sql.NullString `db:"last_sender"`
	LastIsFromMe    sql.NullBool   `db:"last_is_from_me"`
	LastMediaType   sql.NullString `db:"last_media_type"`
}

// Stats are the rolling message counters of a chat.
type Stats struct {
	Total     int `db:"total"`
	Today     int `db:"today"`
	Last7Days int `db:"week"`
}

type chatStats struct {
	ChatJID string `db:"chat_jid"`
	Stats
}

// ChatQuery filters ListChats.
type ChatQuery struct {
	Query              string
	Limit              int
	Page               int
	IncludeLastMessage bool
	SortBy             string
}

// ListChats returns a page of chats whose name or JID contains Query.
// SortLastActive puts the chat with the newest message first and chats
// without messages last; SortName orders case-insensitively by the name the
// chat is shown with, falling back to the JID.
func (s *Store) ListChats(ctx context.Context, q ChatQuery) ([]model.Chat, error) {
	if q.SortBy == SortName {
		return s.listChatsByName(ctx, q)
	}
	where, args := chatFilter(q.Query)
	query := chatBase(q.IncludeLastMessage) + where + orderLastActive
	limit, offset := paginate(q.Limit, q.Page, defaultChatLimit)
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []chatRow
	if err := sqlx.SelectContext(ctx, s.messages, &rows, query, args...); err != nil {
		return nil, unavailable("list chats", err)
	}
	return s.toChats(ctx, rows)
}

// listChatsByName sorts on resolved display names, which live partly in the
// contacts database, so ordering and paging happen here rather than in SQL.
func (s *Store) listChatsByName(ctx context.Context, q ChatQuery) ([]model.Chat, error) {
	where, args := chatFilter(q.Query)
	var all []struct {
		JID  string         `db:"jid"`
		Name sql.NullString `db:"name"`
	}
	if err := sqlx.SelectContext(ctx, s.messages, &all, "SELECT c.jid, c.name FROM chats c"+where, args...); err != nil {
		return nil, unavailable("list chats", err)
	}

	var unnamed []string
	for _, c := range all {
		if c.Name.String == "" || c.Name.String == c.JID {
			unnamed = append(unnamed, c.JID)
		}
	}
	names, err := s.displayNames(ctx, unnamed)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]string, len(all))
	jids := make([]string, len(all))
	for i, c := range all {
		jids[i] = c.JID
		keys[c.JID] = strings.ToLower(chatName(c.JID, c.Name.String, names))
	}
	sort.Slice(jids, func(i, j int) bool {
		ki, kj := keys[jids[i]], keys[jids[j]]
		if ki != kj {
			return ki < kj
		}
		return jids[i] < jids[j]
	})

	limit, offset := paginate(q.Limit, q.Page, defaultChatLimit)
	if offset >= len(jids) {
		return []model.Chat{}, nil
	}
	page := jids[offset:min(offset+limit, len(jids))]

	query, inArgs, err := inQuery("list chats", chatBase(q.IncludeLastMessage)+" WHERE c.jid IN (?)", page)
	if err != nil {
		return nil, err
	}
	var rows []chatRow
	if err := sqlx.SelectContext(ctx, s.messages, &rows, s.messages.Rebind(query), inArgs...); err != nil {
		return nil, unavailable("list chats", err)
	}
	pos := make(map[string]int, len(page))
	for i, jid := range page {
		pos[jid] = i
	}
	sort.Slice(rows, func(i, j int) bool { return pos[rows[i].JID] < pos[rows[j].JID] })
	return s.toChats(ctx, rows)
}

func chatFilter(text string) (string, []any) {
	if text == "" {
		return "", nil
	}
	p := likePattern(text)
	return ` WHERE (LOWER(c.name) LIKE ? ESCAPE '\' OR LOWER(c.jid) LIKE ? ESCAPE '\')`, []any{p, p}
}

// chatName is the name a chat is shown with: its stored name unless that is
// empty or just the JID, then the nickname or contact name.
func chatName(jid, stored string, names map[string]string) string {
	if stored != "" && stored != jid {
		return stored
	}
	if n, ok := names[jid]; ok {
		return n
	}
	if stored != "" {
		return stored
	}
	return jid
}

// GetChat returns a single chat with statistics, media counts and, for
// groups, the most active member. Nil when the chat is unknown.
func (s *Store) GetChat(ctx context.Context, jid string, includeLast bool) (*model.Chat, error) {
	var row chatRow
	err := sqlx.GetContext(ctx, s.messages, &row, chatBase(includeLast)+" WHERE c.jid = ?", jid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get chat", err)
	}
	chats, err := s.toChats(ctx, []chatRow{row})
	if err != nil {
		return nil, err
	}
	chat := &chats[0]

	media, err := s.mediaCounts(ctx, jid)
	if err != nil {
		return nil, err
	}
	if len(media) > 0 {
		chat.MediaCountByType = media
		chat.HasMedia = true
	}

	if chat.IsGroup {
		if err := s.fillMostActive(ctx, chat); err != nil {
			return nil, err
		}
	}
	return chat, nil
}

// DirectChatByContact finds the individual chat whose JID carries phone.
func (s *Store) DirectChatByContact(ctx context.Context, phone string) (*model.Chat, error) {
	number := enrich.PhoneFromJID(enrich.NormalizeRecipient(phone))
	if number == "" {
		return nil, nil
	}
	var row chatRow
	err := sqlx.GetContext(ctx, s.messages, &row, chatWithLast+`
		WHERE c.jid LIKE ? ESCAPE '\' AND c.jid NOT LIKE '%@g.us'`+orderLastActive+` LIMIT 1`,
		likePattern(number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("direct chat", err)
	}
	chats, err := s.toChats(ctx, []chatRow{row})
	if err != nil {
		return nil, err
	}
	return &chats[0], nil
}

// ContactChats returns chats with jid: its direct chat and every chat where
// it has sent a message.
func (s *Store) ContactChats(ctx context.Context, jid string, limit, page int) ([]model.Chat, error) {
	limit, offset := paginate(limit, page, defaultChatLimit)
	var rows []chatRow
	err := sqlx.SelectContext(ctx, s.messages, &rows, chatWithLast+`
		WHERE c.jid = ? OR EXISTS (
		    SELECT 1 FROM messages m WHERE m.chat_jid = c.jid AND m.sender = ?)`+
		orderLastActive+` LIMIT ? OFFSET ?`,
		jid, enrich.PhoneFromJID(jid), limit, offset)
	if err != nil {
		return nil, unavailable("contact chats", err)
	}
	return s.toChats(ctx, rows)
}

// ChatStatistics counts all, today's and the last seven days' messages of a
// chat. Unknown chats report zeros.
func (s *Store) ChatStatistics(ctx context.Context, jid string) (Stats, error) {
	w := s.window()
	var st Stats
	err := sqlx.GetContext(ctx, s.messages, &st, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) AND julianday(timestamp) < julianday(?) THEN 1 ELSE 0 END), 0) AS today,
		       COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) THEN 1 ELSE 0 END), 0) AS week
		FROM messages
		WHERE chat_jid = ?`, w.dayStart, w.dayEnd, w.weekStart, jid)
	if err != nil {
		return Stats{}, unavailable("chat statistics", err)
	}
	return st, nil
}

// statsFor computes Stats for many chats in one grouped query.
func (s *Store) statsFor(ctx context.Context, jids []string) (map[string]Stats, error) {
	out := make(map[string]Stats, len(jids))
	jids = uniq(jids)
	if len(jids) == 0 {
		return out, nil
	}
	w := s.window()
	query, args, err := inQuery("chat statistics", `
		SELECT chat_jid, COUNT(*) AS total,
		       SUM(CASE WHEN julianday(timestamp) >= julianday(?) AND julianday(timestamp) < julianday(?) THEN 1 ELSE 0 END) AS today,
		       SUM(CASE WHEN julianday(timestamp) >= julianday(?) THEN 1 ELSE 0 END) AS week
		FROM messages
		WHERE chat_jid IN (?)
		GROUP BY chat_jid`, w.dayStart, w.dayEnd, w.weekStart, jids)
	if err != nil {
		return nil, err
	}
	var rows []chatStats
	if err := sqlx.SelectContext(ctx, s.messages, &rows, s.messages.Rebind(query), args...); err != nil {
		return nil, unavailable("chat statistics", err)
	}
	for _, r := range rows {
		out[r.ChatJID] = r.Stats
	}
	return out, nil
}

func (s *Store) mediaCounts(ctx context.Context, jid string) (map[string]int, error) {
	var rows []struct {
		MediaType string `db:"media_type"`
		N         int    `db:"n"`
	}
	err := sqlx.SelectContext(ctx, s.messages, &rows, `
		SELECT media_type, COUNT(*) AS n
		FROM messages
		WHERE chat_jid = ? AND media_type IS NOT NULL AND media_type != ''
		GROUP BY media_type`, jid)
	if err != nil {
		return nil, unavailable("media counts", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.MediaType] = r.N
	}
	return out, nil
}

func (s *Store) fillMostActive(ctx context.Context, chat *model.Chat) error {
	var top struct {
		Sender string `db:"sender"`
		N      int    `db:"n"`
	}
	err := sqlx.GetContext(ctx, s.messages, &top, `
		SELECT sender, COUNT(*) AS n
		FROM messages
		WHERE chat_jid = ? AND NOT is_from_me AND sender IS NOT NULL AND sender != ''
		GROUP BY sender
		ORDER BY n DESC, sender
		LIMIT 1`, chat.JID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return unavailable("most active member", err)
	}
	jid := enrich.UserJID(top.Sender)
	names, err := s.displayNames(ctx, []string{jid})
	if err != nil {
		return err
	}
	chat.MostActiveMemberName = names[jid]
	if chat.MostActiveMemberName == "" {
		chat.MostActiveMemberName = top.Sender
	}
	chat.MostActiveMemberMessageCount = model.Int(top.N)
	return nil
}

// toChats converts rows, attaching statistics and display names in bulk.
func (s *Store) toChats(ctx context.Context, rows []chatRow) ([]model.Chat, error) {
	jids := make([]string, 0, len(rows))
	var people []string
	for _, r := range rows {
		jids = append(jids, r.JID)
		if r.Name.String == "" || r.Name.String == r.JID {
			people = append(people, r.JID)
		}
		if r.LastSender.String != "" && !r.LastIsFromMe.Bool {
			people = append(people, enrich.UserJID(r.LastSender.String))
		}
	}
	stats, err := s.statsFor(ctx, jids)
	if err != nil {
		return nil, err
	}
	names, err := s.displayNames(ctx, people)
	if err != nil {
		return nil, err
	}

	out := make([]model.Chat, len(rows))
	for i, r := range rows {
		c := model.Chat{
			JID:              r.JID,
			Name:             r.Name.String,
			LastMessage:      r.LastMessage.String,
			LastMessageID:    r.LastMessageID.String,
			LastSender:       r.LastSender.String,
			LastMessageMedia: r.LastMediaType.String,
		}
		if n, ok := names[c.JID]; ok && (c.Name == "" || c.Name == c.JID) {
			c.Name = n
		}
		if r.LastMessageTime.Valid {
			t := r.LastMessageTime.Time
			c.LastMessageTime = &t
		}
		if r.LastIsFromMe.Valid {
			c.LastIsFromMe = model.Bool(r.LastIsFromMe.Bool)
			if r.LastIsFromMe.Bool {
				c.LastSenderName = "Me"
			} else {
				c.LastSenderName = names[enrich.UserJID(c.LastSender)]
			}
		}
		st := stats[r.JID]
		c.TotalMessageCount = model.Int(st.Total)
		c.MessageCountToday = model.Int(st.Today)
		c.MessageCountWeek = model.Int(st.Last7Days)
		s.enrich.Chat(&c)
		out[i] = c
	}
	return out, nil
}

func chatBase(includeLast bool) string {
	if includeLast {
		return chatWithLast
	}
	return chatWithoutLast
}
