package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/matheus3301/wppmcp/internal/model"
)

// ErrEmptyNickname is returned when the JID or nickname is blank.
var ErrEmptyNickname = errors.New("jid and nickname must not be empty")

// SetNickname creates or replaces the override for jid.
func (s *Store) SetNickname(ctx context.Context, jid, nickname string) error {
	jid, nickname = strings.TrimSpace(jid), strings.TrimSpace(nickname)
	if jid == "" || nickname == "" {
		return ErrEmptyNickname
	}
	_, err := s.messages.ExecContext(ctx, `
		INSERT INTO contact_nicknames (jid, nickname, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(jid) DO UPDATE SET
			nickname = excluded.nickname,
			updated_at = excluded.updated_at`,
		jid, nickname, s.now())
	if err != nil {
		return unavailable("set nickname", err)
	}
	return nil
}

// Nickname returns the override for jid and whether one exists.
func (s *Store) Nickname(ctx context.Context, jid string) (string, bool, error) {
	var nickname string
	err := sqlx.GetContext(ctx, s.messages, &nickname,
		"SELECT nickname FROM contact_nicknames WHERE jid = ?", strings.TrimSpace(jid))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get nickname", err)
	}
	return nickname, true, nil
}

// RemoveNickname deletes the override for jid and reports whether one existed.
func (s *Store) RemoveNickname(ctx context.Context, jid string) (bool, error) {
	res, err := s.messages.ExecContext(ctx,
		"DELETE FROM contact_nicknames WHERE jid = ?", strings.TrimSpace(jid))
	if err != nil {
		return false, unavailable("remove nickname", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("remove nickname", err)
	}
	return n > 0, nil
}

// ListNicknames returns every override ordered by nickname.
func (s *Store) ListNicknames(ctx context.Context) ([]model.Nickname, error) {
	var out []model.Nickname
	err := sqlx.SelectContext(ctx, s.messages, &out, `
		SELECT jid, nickname, updated_at
		FROM contact_nicknames
		ORDER BY LOWER(nickname), jid`)
	if err != nil {
		return nil, unavailable("list nicknames", err)
	}
	return out, nil
}
