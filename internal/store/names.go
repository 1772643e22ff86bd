package store

import (
	"context"
	"database/sql"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/matheus3301/wppmcp/internal/enrich"
	"github.com/matheus3301/wppmcp/internal/model"
)

const contactSelect = `
	SELECT their_jid AS jid,
	       MAX(first_name) AS first_name,
	       MAX(full_name) AS full_name,
	       MAX(push_name) AS push_name,
	       MAX(business_name) AS business_name
	FROM whatsmeow_contacts`

const contactOrder = ` ORDER BY LOWER(COALESCE(NULLIF(MAX(full_name), ''), NULLIF(MAX(push_name), ''), their_jid)), their_jid`

type contactRow struct {
	JID          string         `db:"jid"`
	FirstName    sql.NullString `db:"first_name"`
	FullName     sql.NullString `db:"full_name"`
	PushName     sql.NullString `db:"push_name"`
	BusinessName sql.NullString `db:"business_name"`
}

func (r contactRow) name() string {
	for _, v := range []sql.NullString{r.FullName, r.PushName, r.FirstName, r.BusinessName} {
		if v.String != "" {
			return v.String
		}
	}
	return ""
}

func (r contactRow) toContact(nickname string) model.Contact {
	phone := enrich.PhoneFromJID(r.JID)
	name := r.name()
	if name == "" {
		name = phone
	}
	return model.Contact{
		JID:          r.JID,
		PhoneNumber:  phone,
		Name:         name,
		FirstName:    r.FirstName.String,
		FullName:     r.FullName.String,
		PushName:     r.PushName.String,
		BusinessName: r.BusinessName.String,
		Nickname:     nickname,
	}
}

// contactsByJID fetches contacts for the given JIDs in one query.
func (s *Store) contactsByJID(ctx context.Context, jids []string) ([]contactRow, error) {
	jids = uniq(jids)
	if len(jids) == 0 {
		return nil, nil
	}
	query, args, err := inQuery("lookup contacts", contactSelect+" WHERE their_jid IN (?) GROUP BY their_jid"+contactOrder, jids)
	if err != nil {
		return nil, err
	}
	var rows []contactRow
	if err := sqlx.SelectContext(ctx, s.contacts, &rows, s.contacts.Rebind(query), args...); err != nil {
		return nil, unavailable("lookup contacts", err)
	}
	return rows, nil
}

// nicknamesFor resolves overrides for the given JIDs in one query.
func (s *Store) nicknamesFor(ctx context.Context, jids []string) (map[string]string, error) {
	out := make(map[string]string)
	jids = uniq(jids)
	if len(jids) == 0 {
		return out, nil
	}
	query, args, err := inQuery("lookup nicknames", "SELECT jid, nickname FROM contact_nicknames WHERE jid IN (?)", jids)
	if err != nil {
		return nil, err
	}
	var rows []model.Nickname
	if err := sqlx.SelectContext(ctx, s.messages, &rows, s.messages.Rebind(query), args...); err != nil {
		return nil, unavailable("lookup nicknames", err)
	}
	for _, r := range rows {
		out[r.JID] = r.Nickname
	}
	return out, nil
}

// displayNames maps each JID to the best known name, nickname first. Two
// queries regardless of how many JIDs are asked for.
func (s *Store) displayNames(ctx context.Context, jids []string) (map[string]string, error) {
	names := make(map[string]string)
	if len(jids) == 0 {
		return names, nil
	}
	contacts, err := s.contactsByJID(ctx, jids)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if n := c.name(); n != "" {
			names[c.JID] = n
		}
	}
	nicknames, err := s.nicknamesFor(ctx, jids)
	if err != nil {
		return nil, err
	}
	for jid, nick := range nicknames {
		names[jid] = nick
	}
	return names, nil
}

func uniq(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := set[v]; ok || v == "" {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
