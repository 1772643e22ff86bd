package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/matheus3301/wppmcp/internal/enrich"
	"github.com/matheus3301/wppmcp/internal/model"
)

const (
	searchContactsLimit = 100
	defaultContactLimit = 100
)

// SearchContacts matches query, case-insensitively, against every name
// variant, the phone number and the nickname override. Nicknames for the
// matched contacts are resolved in a single bulk lookup, so the number of
// queries does not grow with the number of results.
func (s *Store) SearchContacts(ctx context.Context, query string) ([]model.Contact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := likePattern(query)

	var byNickname []string
	err := sqlx.SelectContext(ctx, s.messages, &byNickname,
		`SELECT jid FROM contact_nicknames WHERE LOWER(nickname) LIKE ? ESCAPE '\'`, pattern)
	if err != nil {
		return nil, unavailable("search nicknames", err)
	}

	where := `their_jid NOT LIKE '%@g.us' AND (
		LOWER(COALESCE(full_name, '')) LIKE ? ESCAPE '\' OR
		LOWER(COALESCE(first_name, '')) LIKE ? ESCAPE '\' OR
		LOWER(COALESCE(push_name, '')) LIKE ? ESCAPE '\' OR
		LOWER(COALESCE(business_name, '')) LIKE ? ESCAPE '\' OR
		LOWER(their_jid) LIKE ? ESCAPE '\'`
	args := []any{pattern, pattern, pattern, pattern, pattern}
	if len(byNickname) > 0 {
		where += ` OR their_jid IN (?)`
		args = append(args, byNickname)
	}
	where += `)`

	q, args, err := inQuery("search contacts", contactSelect+" WHERE "+where+" GROUP BY their_jid"+contactOrder+" LIMIT ?", append(args, searchContactsLimit)...)
	if err != nil {
		return nil, err
	}
	var rows []contactRow
	if err := sqlx.SelectContext(ctx, s.contacts, &rows, s.contacts.Rebind(q), args...); err != nil {
		return nil, unavailable("search contacts", err)
	}
	return s.withNicknames(ctx, rows)
}

// GetContact returns the contact with the given JID, or nil.
func (s *Store) GetContact(ctx context.Context, jid string) (*model.Contact, error) {
	rows, err := s.contactsByJID(ctx, []string{strings.TrimSpace(jid)})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	contacts, err := s.withNicknames(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &contacts[0], nil
}

// GetContactByPhone looks a contact up by phone number in any formatting.
func (s *Store) GetContactByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	number := enrich.NormalizeRecipient(phone)
	if number == "" || strings.Contains(number, "@") {
		return nil, nil
	}
	return s.GetContact(ctx, enrich.UserJID(number))
}

// ListContacts returns individual contacts ordered by name.
func (s *Store) ListContacts(ctx context.Context, limit int) ([]model.Contact, error) {
	if limit <= 0 {
		limit = defaultContactLimit
	}
	var rows []contactRow
	err := sqlx.SelectContext(ctx, s.contacts, &rows,
		contactSelect+" WHERE their_jid NOT LIKE '%@g.us' GROUP BY their_jid"+contactOrder+" LIMIT ?", limit)
	if err != nil {
		return nil, unavailable("list contacts", err)
	}
	return s.withNicknames(ctx, rows)
}

// ContactActivity fills the message counters and the latest message of c.
func (s *Store) ContactActivity(ctx context.Context, c *model.Contact) error {
	w := s.window()
	var counts struct {
		Total int `db:"total"`
		Today int `db:"today"`
		Week  int `db:"week"`
		Month int `db:"month"`
	}
	err := sqlx.GetContext(ctx, s.messages, &counts, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) AND julianday(timestamp) < julianday(?) THEN 1 ELSE 0 END), 0) AS today,
		       COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) THEN 1 ELSE 0 END), 0) AS week,
		       COALESCE(SUM(CASE WHEN julianday(timestamp) >= julianday(?) THEN 1 ELSE 0 END), 0) AS month
		FROM messages
		WHERE chat_jid = ? OR sender = ?`,
		w.dayStart, w.dayEnd, w.weekStart, w.monthStart, c.JID, c.PhoneNumber)
	if err != nil {
		return unavailable("contact activity", err)
	}
	c.TotalMessageCount = model.Int(counts.Total)
	c.MessageCountToday = model.Int(counts.Today)
	c.MessageCountWeek = model.Int(counts.Week)
	c.MessageCountMonth = model.Int(counts.Month)

	last, err := s.LastInteraction(ctx, c.JID)
	if err != nil {
		return err
	}
	if last != nil {
		t := last.Timestamp
		c.LastMessageTime = &t
		c.LatestMessagePreview = enrich.Preview(last.Content, 80)
	}
	return nil
}

func (s *Store) withNicknames(ctx context.Context, rows []contactRow) ([]model.Contact, error) {
	jids := make([]string, len(rows))
	for i, r := range rows {
		jids[i] = r.JID
	}
	nicknames, err := s.nicknamesFor(ctx, jids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Contact, len(rows))
	for i, r := range rows {
		out[i] = r.toContact(nicknames[r.JID])
	}
	return out, nil
}
