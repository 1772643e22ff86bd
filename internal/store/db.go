package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB holds connections to the two SQLite files written by the bridge: the
// whatsmeow device store (contacts) and the message history store, which also
// carries the nickname overrides owned by this server.
type DB struct {
	Contacts *sqlx.DB
	Messages *sqlx.DB
}

// Open connects to both files. The contacts file is opened read-only; the
// messages file must already exist.
func Open(contactsPath, messagesPath string) (*DB, error) {
	contacts, err := openFile(contactsPath, "ro")
	if err != nil {
		return nil, err
	}
	messages, err := openFile(messagesPath, "rw")
	if err != nil {
		_ = contacts.Close()
		return nil, err
	}
	return &DB{Contacts: contacts, Messages: messages}, nil
}

func openFile(path, mode string) (*sqlx.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, unavailable("open "+path, err)
	}
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=%s&_busy_timeout=5000", path, mode))
	if err != nil {
		return nil, unavailable("open "+path, err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, unavailable("ping "+path, err)
	}
	return db, nil
}

// Close closes both connections.
func (db *DB) Close() error {
	return errors.Join(db.Contacts.Close(), db.Messages.Close())
}
