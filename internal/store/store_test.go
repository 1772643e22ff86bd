package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

// Schema written by the bridge (messages.db) and by whatsmeow (whatsapp.db).
const (
	bridgeSchema = `
		CREATE TABLE chats (
			jid TEXT PRIMARY KEY,
			name TEXT,
			last_message_time TIMESTAMP
		);
		CREATE TABLE messages (
			id TEXT,
			chat_jid TEXT,
			sender TEXT,
			content TEXT,
			timestamp TIMESTAMP,
			is_from_me BOOLEAN,
			media_type TEXT,
			filename TEXT,
			url TEXT,
			media_key BLOB,
			file_sha256 BLOB,
			file_enc_sha256 BLOB,
			file_length INTEGER,
			PRIMARY KEY (id, chat_jid),
			FOREIGN KEY (chat_jid) REFERENCES chats(jid)
		);`

	contactsSchema = `
		CREATE TABLE whatsmeow_contacts (
			our_jid TEXT,
			their_jid TEXT,
			first_name TEXT,
			full_name TEXT,
			push_name TEXT,
			business_name TEXT,
			PRIMARY KEY (our_jid, their_jid)
		);`
)

const me = "5500000000000@s.whatsapp.net"

// fixedNow is a Sunday afternoon in UTC.
var fixedNow = time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)

type fixture struct {
	db           *DB
	store        *Store
	contactsPath string
	writer       *sqlx.DB
}

func createFile(t *testing.T, path, schema string) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
}

func testStore(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	contactsPath := filepath.Join(dir, "whatsapp.db")
	messagesPath := filepath.Join(dir, "messages.db")
	createFile(t, contactsPath, contactsSchema)
	createFile(t, messagesPath, bridgeSchema)

	db, err := Open(contactsPath, messagesPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &fixture{
		db:           db,
		store:        New(db.Contacts, db.Messages, WithClock(func() time.Time { return fixedNow })),
		contactsPath: contactsPath,
	}
}

// contactsWriter returns a writable handle; the store opens the file read-only.
func (f *fixture) contactsWriter(t *testing.T) *sqlx.DB {
	t.Helper()
	if f.writer != nil {
		return f.writer
	}
	w, err := sqlx.Open("sqlite3", f.contactsPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })
	f.writer = w
	return w
}

func (f *fixture) addContact(t *testing.T, jid, fullName, pushName string) {
	t.Helper()
	w := f.contactsWriter(t)
	_, err := w.Exec(`INSERT INTO whatsmeow_contacts (our_jid, their_jid, full_name, push_name) VALUES (?, ?, ?, ?)`,
		me, jid, nullIfEmpty(fullName), nullIfEmpty(pushName))
	if err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) addChat(t *testing.T, jid, name string, last *time.Time) {
	t.Helper()
	var lastArg any
	if last != nil {
		lastArg = *last
	}
	_, err := f.db.Messages.Exec(`INSERT INTO chats (jid, name, last_message_time) VALUES (?, ?, ?)`,
		jid, nullIfEmpty(name), lastArg)
	if err != nil {
		t.Fatal(err)
	}
}

type msg struct {
	id, chat, sender, content, media string
	ts                               time.Time
	fromMe                           bool
}

func (f *fixture) addMessages(t *testing.T, msgs ...msg) {
	t.Helper()
	for _, m := range msgs {
		_, err := f.db.Messages.Exec(`
			INSERT INTO messages (id, chat_jid, sender, content, timestamp, is_from_me, media_type)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.id, m.chat, m.sender, m.content, m.ts, m.fromMe, nullIfEmpty(m.media))
		if err != nil {
			t.Fatal(err)
		}
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	f := testStore(t)

	result, err := f.db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}

	var table string
	err = f.db.Messages.Get(&table, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", MigrationsTable)
	if err != nil {
		t.Fatalf("migrations table %q missing: %v", MigrationsTable, err)
	}
}

func TestOpenMissingFileIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "nope.db"), filepath.Join(dir, "nope2.db"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open() error = %v, want ErrUnavailable", err)
	}
}

func TestQueryFailureIsUnavailable(t *testing.T) {
	f := testStore(t)
	if _, err := f.db.Messages.Exec("DROP TABLE messages"); err != nil {
		t.Fatal(err)
	}

	_, err := f.store.ListMessages(context.Background(), MessageQuery{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("ListMessages() error = %v, want ErrUnavailable", err)
	}
	var ue *UnavailableError
	if !errors.As(err, &ue) || ue.Op != "list messages" {
		t.Errorf("error = %#v, want UnavailableError for list messages", err)
	}
}

func TestListMessagesFilters(t *testing.T) {
	f := testStore(t)
	base := fixedNow.Add(-48 * time.Hour)
	f.addChat(t, "111@s.whatsapp.net", "Ana", nil)
	f.addChat(t, "g1@g.us", "Team", nil)
	f.addMessages(t,
		msg{id: "a1", chat: "111@s.whatsapp.net", sender: "111", content: "Hello there", ts: base},
		msg{id: "a2", chat: "111@s.whatsapp.net", sender: "5500000000000", content: "hi ANA", ts: base.Add(time.Hour), fromMe: true},
		msg{id: "g1", chat: "g1@g.us", sender: "111", content: "hello team", ts: base.Add(2 * time.Hour)},
		msg{id: "g2", chat: "g1@g.us", sender: "222", content: "lunch?", ts: base.Add(3 * time.Hour)},
	)
	after := base.Add(time.Hour)
	before := base.Add(3 * time.Hour)

	tests := []struct {
		name  string
		query MessageQuery
		want  []string
	}{
		{"all newest first", MessageQuery{}, []string{"g2", "g1", "a2", "a1"}},
		{"chat", MessageQuery{ChatJID: "g1@g.us"}, []string{"g2", "g1"}},
		{"sender phone", MessageQuery{Sender: "111"}, []string{"g1", "a1"}},
		{"sender jid", MessageQuery{Sender: "111@s.whatsapp.net"}, []string{"g1", "a1"}},
		{"query case-insensitive", MessageQuery{Query: "HELLO"}, []string{"g1", "a1"}},
		{"after inclusive", MessageQuery{After: &after}, []string{"g2", "g1", "a2"}},
		{"before exclusive", MessageQuery{Before: &before}, []string{"g1", "a2", "a1"}},
		{"conjunctive", MessageQuery{Query: "hello", ChatJID: "111@s.whatsapp.net"}, []string{"a1"}},
		{"wildcards are literal", MessageQuery{Query: "%"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.store.ListMessages(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			var gotIDs []string
			for _, m := range got {
				gotIDs = append(gotIDs, m.ID)
			}
			if fmt.Sprint(gotIDs) != fmt.Sprint(tt.want) {
				t.Errorf("ids = %v, want %v", gotIDs, tt.want)
			}
		})
	}
}

func TestListMessagesEnrichesAndNamesSenders(t *testing.T) {
	f := testStore(t)
	f.addContact(t, "111@s.whatsapp.net", "Ana Souza", "")
	f.addChat(t, "g1@g.us", "Team", nil)
	f.addMessages(t,
		msg{id: "m1", chat: "g1@g.us", sender: "111", content: "see https://go.dev  now", ts: fixedNow.Add(-time.Hour)},
		msg{id: "m2", chat: "g1@g.us", sender: "5500000000000", content: "ok", ts: fixedNow.Add(-time.Minute), fromMe: true},
	)

	got, err := f.store.ListMessages(context.Background(), MessageQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	m1 := got[1]
	if m1.SenderName != "Ana Souza" {
		t.Errorf("SenderName = %q, want %q", m1.SenderName, "Ana Souza")
	}
	if !m1.IsGroup || m1.ChatName != "Team" {
		t.Errorf("IsGroup = %v, ChatName = %q", m1.IsGroup, m1.ChatName)
	}
	if *m1.WordCount != 3 || len(m1.URLList) != 1 {
		t.Errorf("WordCount = %d, URLList = %v", *m1.WordCount, m1.URLList)
	}
	if !m1.Timestamp.Equal(fixedNow.Add(-time.Hour)) {
		t.Errorf("Timestamp = %v, want %v", m1.Timestamp, fixedNow.Add(-time.Hour))
	}
	if got[0].SenderName != "Me" {
		t.Errorf("own message SenderName = %q, want Me", got[0].SenderName)
	}
}

func TestListMessagesPagesDoNotOverlap(t *testing.T) {
	f := testStore(t)
	f.addChat(t, "111@s.whatsapp.net", "Ana", nil)
	// Pairs share a timestamp so the id tiebreak is exercised.
	for i := 0; i < 45; i++ {
		f.addMessages(t, msg{
			id:      fmt.Sprintf("m%02d", i),
			chat:    "111@s.whatsapp.net",
			sender:  "111",
			content: "x",
			ts:      fixedNow.Add(-time.Duration(i/2) * time.Minute),
		})
	}

	seen := make(map[string]int)
	sizes := []int{20, 20, 5}
	for page, want := range sizes {
		got, err := f.store.ListMessages(context.Background(), MessageQuery{Limit: 20, Page: page})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != want {
			t.Errorf("page %d size = %d, want %d", page, len(got), want)
		}
		for _, m := range got {
			if prev, dup := seen[m.ID]; dup {
				t.Errorf("message %s on page %d and %d", m.ID, prev, page)
			}
			seen[m.ID] = page
		}
	}
	if len(seen) != 45 {
		t.Errorf("saw %d distinct messages, want 45", len(seen))
	}
}

func TestListMessagesContextPagesKeepMatchesDisjoint(t *testing.T) {
	f := testStore(t)
	f.addChat(t, "111@s.whatsapp.net", "Ana", nil)
	for i := 0; i < 8; i++ {
		content := "filler"
		if i%2 == 0 {
			content = fmt.Sprintf("hit %d", i)
		}
		f.addMessages(t, msg{
			id: fmt.Sprintf("m%d", i), chat: "111@s.whatsapp.net", sender: "111",
			content: content, ts: fixedNow.Add(time.Duration(i-10) * time.Minute),
		})
	}

	seen := make(map[string]int)
	for page := 0; page < 2; page++ {
		got, err := f.store.ListMessages(context.Background(), MessageQuery{
			Query: "hit", Limit: 2, Page: page,
			IncludeContext: true, ContextBefore: 1, ContextAfter: 1,
		})
		if err != nil {
			t.Fatal(err)
		}
		hits := 0
		for _, m := range got {
			if !strings.HasPrefix(m.Content, "hit") {
				continue
			}
			hits++
			if prev, dup := seen[m.ID]; dup {
				t.Errorf("match %s on page %d and %d", m.ID, prev, page)
			}
			seen[m.ID] = page
		}
		if hits != 2 {
			t.Errorf("page %d has %d matches, want 2", page, hits)
		}
	}
}

func TestInQueryTagsOperation(t *testing.T) {
	_, _, err := inQuery("lookup contacts", "SELECT 1 WHERE x IN (?)", []string{})
	if err == nil || !strings.HasPrefix(err.Error(), "lookup contacts: ") {
		t.Errorf("inQuery(empty) error = %v, want it prefixed with the operation", err)
	}
	q, args, err := inQuery("lookup contacts", "SELECT 1 WHERE x IN (?)", []string{"a", "b"})
	if err != nil || q != "SELECT 1 WHERE x IN (?, ?)" || len(args) != 2 {
		t.Errorf("inQuery() = %q, %v, %v", q, args, err)
	}
}

func TestListMessagesContextExpansion(t *testing.T) {
	f := testStore(t)
	f.addChat(t, "111@s.whatsapp.net", "Ana", nil)
	f.addChat(t, "222@s.whatsapp.net", "Bia", nil)
	for i := 1; i <= 6; i++ {
		content := "filler"
		if i == 3 || i == 4 {
			content = "match"
		}
		f.addMessages(t, msg{
			id: fmt.Sprintf("m%d", i), chat: "111@s.whatsapp.net", sender: "111",
			content: content, ts: fixedNow.Add(time.Duration(i-10) * time.Minute),
		})
	}
	// Same instant in another chat must never leak into the context.
	f.addMessages(t, msg{id: "other", chat: "222@s.whatsapp.net", sender: "222", content: "filler", ts: fixedNow.Add(-7 * time.Minute)})

	got, err := f.store.ListMessages(context.Background(), MessageQuery{
		Query:          "match",
		IncludeContext: true,
		ContextBefore:  1,
		ContextAfter:   1,
	})
	if err != nil {
		t.Fatal(err)
	}
	var gotIDs []string
	for _, m := range got {
		gotIDs = append(gotIDs, m.ID)
	}
	// m4 matches first (newest) with [m3 m4 m5]; m3's window adds only m2.
	want := []string{"m3", "m4", "m5", "m2"}
	if fmt.Sprint(gotIDs) != fmt.Sprint(want) {
		t.Errorf("ids = %v, want %v", gotIDs, want)
	}
}

func TestMessageContext(t *testing.T) {
	f := testStore(t)
	f.addChat(t, "111@s.whatsapp.net", "Ana", nil)
	for i := 1; i <= 5; i++ {
		f.addMessages(t, msg{
			id: fmt.Sprintf("m%d", i), chat: "111@s.whatsapp.net", sender: "111",
			content: "x", ts: fixedNow.Add(time.Duration(i) * time.Minute),
		})
	}

	mc, err := f.store.MessageContext(context.Background(), "m3", 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if mc == nil {
		t.Fatal("MessageContext() = nil")
	}
	if mc.Message.ID != "m3" {
		t.Errorf("message = %s, want m3", mc.Message.ID)
	}
	if len(mc.Before) != 2 || mc.Before[0].ID != "m1" || mc.Before[1].ID != "m2" {
		t.Errorf("before = %v, want [m1 m2]", mc.Before)
	}
	if len(mc.After) != 1 || mc.After[0].ID != "m4" {
		t.Errorf("after = %v, want [m4]", mc.After)
	}

	missing, err := f.store.MessageContext(context.Background(), "nope", 1, 1)
	if err != nil || missing != nil {
		t.Errorf("MessageContext(unknown) = %v, %v; want nil, nil", missing, err)
	}
}

func TestLastInteraction(t *testing.T) {
	f := testStore(t)
	f.addChat(t, "111@s.whatsapp.net", "Ana", nil)
	f.addChat(t, "g1@g.us", "Team", nil)
	f.addMessages(t,
		msg{id: "d1", chat: "111@s.whatsapp.net", sender: "111", content: "direct", ts: fixedNow.Add(-2 * time.Hour)},
		msg{id: "g1", chat: "g1@g.us", sender: "111", content: "in group", ts: fixedNow.Add(-time.Hour)},
		msg{id: "g2", chat: "g1@g.us", sender: "222", content: "someone else", ts: fixedNow},
	)

	got, err := f.store.LastInteraction(context.Background(), "111@s.whatsapp.net")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "g1" {
		t.Errorf("LastInteraction() = %v, want g1", got)
	}

	none, err := f.store.LastInteraction(context.Background(), "999@s.whatsapp.net")
	if err != nil || none != nil {
		t.Errorf("LastInteraction(unknown) = %v, %v; want nil, nil", none, err)
	}
}

func TestListChatsSortByName(t *testing.T) {
	f := testStore(t)
	ctx := context.Background()
	f.addChat(t, "3@s.whatsapp.net", "charlie", nil)
	f.addChat(t, "1@s.whatsapp.net", "Bravo", nil)
	f.addChat(t, "2@s.whatsapp.net", "alpha", nil)
	f.addChat(t, "4@g.us", "Delta", nil)
	// Unnamed chats sort by the name they are shown with.
	f.addContact(t, "111@s.whatsapp.net", "Zoe", "")
	f.addChat(t, "111@s.whatsapp.net", "", nil)
	f.addChat(t, "222@s.whatsapp.net", "222@s.whatsapp.net", nil)
	if err := f.store.SetNickname(ctx, "222@s.whatsapp.net", "bob"); err != nil {
		t.Fatal(err)
	}

	names := func(q ChatQuery) []string {
		t.Helper()
		q.SortBy = SortName
		got, err := f.store.ListChats(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		var out []string
		for _, c := range got {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		name  string
		query ChatQuery
		want  []string
	}{
		{"all", ChatQuery{}, []string{"alpha", "bob", "Bravo", "charlie", "Delta", "Zoe"}},
		{"second page", ChatQuery{Limit: 2, Page: 1}, []string{"Bravo", "charlie"}},
		{"past the end", ChatQuery{Limit: 4, Page: 2}, nil},
		{"filtered", ChatQuery{Query: "@s.whatsapp"}, []string{"alpha", "bob", "Bravo", "charlie", "Zoe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(tt.query); fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("names = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListChatsSortByLastActive(t *testing.T) {
	f := testStore(t)
	stale := fixedNow.Add(-time.Hour)
	f.addChat(t, "silent@s.whatsapp.net", "Silent", nil)
	// A recorded last_message_time without messages does not count as activity.
	f.addChat(t, "empty@s.whatsapp.net", "Empty", &stale)
	f.addChat(t, "old@s.whatsapp.net", "Old", nil)
	f.addChat(t, "new@g.us", "New", nil)
	f.addMessages(t,
		msg{id: "o1", chat: "old@s.whatsapp.net", sender: "111", content: "old", ts: fixedNow.Add(-48 * time.Hour)},
		msg{id: "n1", chat: "new@g.us", sender: "111", content: "new", ts: fixedNow.Add(-time.Minute)},
	)

	got, err := f.store.ListChats(context.Background(), ChatQuery{SortBy: SortLastActive})
	if err != nil {
		t.Fatal(err)
	}
	var jids []string
	for _, c := range got {
		jids = append(jids, c.JID)
	}
	want := []string{"new@g.us", "old@s.whatsapp.net", "empty@s.whatsapp.net", "silent@s.whatsapp.net"}
	if fmt.Sprint(jids) != fmt.Sprint(want) {
		t.Errorf("jids = %v, want %v", jids, want)
	}
	if got[0].ChatType != "group" || got[1].ChatType != "individual" {
		t.Errorf("chat types = %q, %q", got[0].ChatType, got[1].ChatType)
	}
}

func TestListChatsQueryStatsAndLastMessage(t *testing.T) {
	f := testStore(t)
	last := fixedNow.Add(-time.Minute)
	f.addContact(t, "111@s.whatsapp.net", "Ana Souza", "")
	f.addChat(t, "111@s.whatsapp.net", "", &last)
	f.addChat(t, "g1@g.us", "Weekend trip", &last)
	f.addMessages(t,
		msg{id: "t1", chat: "g1@g.us", sender: "111", content: "today", ts: fixedNow.Add(-time.Hour)},
		msg{id: "w1", chat: "g1@g.us", sender: "111", content: "this week", ts: fixedNow.Add(-3 * 24 * time.Hour)},
		msg{id: "o1", chat: "g1@g.us", sender: "111", content: "long ago", ts: fixedNow.Add(-30 * 24 * time.Hour)},
		msg{id: "t2", chat: "g1@g.us", sender: "111", content: "latest", ts: last},
	)

	got, err := f.store.ListChats(context.Background(), ChatQuery{Query: "TRIP", IncludeLastMessage: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d chats, want 1", len(got))
	}
	c := got[0]
	if *c.TotalMessageCount != 4 || *c.MessageCountToday != 2 || *c.MessageCountWeek != 3 {
		t.Errorf("counts = %d/%d/%d, want 4/2/3", *c.TotalMessageCount, *c.MessageCountToday, *c.MessageCountWeek)
	}
	if c.LastMessage != "latest" || c.LastSenderName != "Ana Souza" {
		t.Errorf("last message = %q from %q", c.LastMessage, c.LastSenderName)
	}

	byJID, err := f.store.ListChats(context.Background(), ChatQuery{Query: "111@"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byJID) != 1 || byJID[0].Name != "Ana Souza" {
		t.Errorf("chat by jid = %+v, want name resolved from contacts", byJID)
	}
	if byJID[0].LastMessage != "" {
		t.Errorf("LastMessage = %q without IncludeLastMessage", byJID[0].LastMessage)
	}
}

func TestChatStatistics(t *testing.T) {
	f := testStore(t)
	f.addChat(t, "g1@g.us", "Team", nil)
	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f.addMessages(t,
		msg{id: "1", chat: "g1@g.us", sender: "1", content: "x", ts: midnight},
		msg{id: "2", chat: "g1@g.us", sender: "1", content: "x", ts: midnight.Add(-time.Second)},
		msg{id: "3", chat: "g1@g.us", sender: "1", content: "x", ts: fixedNow.Add(-7 * 24 * time.Hour)},
		msg{id: "4", chat: "g1@g.us", sender: "1", content: "x", ts: fixedNow.Add(-7*24*time.Hour - time.Second)},
	)

	tests := []struct {
		name string
		jid  string
		want Stats
	}{
		{"counts", "g1@g.us", Stats{Total: 4, Today: 1, Last7Days: 3}},
		{"unknown chat", "nobody@s.whatsapp.net", Stats{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.store.ChatStatistics(context.Background(), tt.jid)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ChatStatistics() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetChatAggregates(t *testing.T) {
	f := testStore(t)
	f.addContact(t, "222@s.whatsapp.net", "Bia", "")
	f.addChat(t, "g1@g.us", "Team", nil)
	f.addMessages(t,
		msg{id: "1", chat: "g1@g.us", sender: "111", content: "a", ts: fixedNow.Add(-3 * time.Hour)},
		msg{id: "2", chat: "g1@g.us", sender: "222", content: "b", ts: fixedNow.Add(-2 * time.Hour), media: "image"},
		msg{id: "3", chat: "g1@g.us", sender: "222", content: "c", ts: fixedNow.Add(-time.Hour), media: "image"},
		msg{id: "4", chat: "g1@g.us", sender: "5500000000000", content: "d", ts: fixedNow, fromMe: true, media: "video"},
	)

	c, err := f.store.GetChat(context.Background(), "g1@g.us", true)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("GetChat() = nil")
	}
	if c.MediaCountByType["image"] != 2 || c.MediaCountByType["video"] != 1 || !c.HasMedia {
		t.Errorf("media = %v, has_media = %v", c.MediaCountByType, c.HasMedia)
	}
	if c.MostActiveMemberName != "Bia" || *c.MostActiveMemberMessageCount != 2 {
		t.Errorf("most active = %q (%d), want Bia (2)", c.MostActiveMemberName, *c.MostActiveMemberMessageCount)
	}
	if c.LastMessageID != "4" || c.LastSenderName != "Me" {
		t.Errorf("last = %s by %q", c.LastMessageID, c.LastSenderName)
	}

	missing, err := f.store.GetChat(context.Background(), "nope@g.us", true)
	if err != nil || missing != nil {
		t.Errorf("GetChat(unknown) = %v, %v; want nil, nil", missing, err)
	}
}

func TestDirectAndContactChats(t *testing.T) {
	f := testStore(t)
	recent := fixedNow.Add(-time.Minute)
	f.addChat(t, "5511999990000@s.whatsapp.net", "Ana", nil)
	f.addChat(t, "g1@g.us", "Team", &recent)
	f.addChat(t, "g2@g.us", "Other", &recent)
	f.addMessages(t, msg{id: "1", chat: "g1@g.us", sender: "5511999990000", content: "hi", ts: fixedNow})

	direct, err := f.store.DirectChatByContact(context.Background(), "+55 11 99999-0000")
	if err != nil {
		t.Fatal(err)
	}
	if direct == nil || direct.JID != "5511999990000@s.whatsapp.net" {
		t.Errorf("DirectChatByContact() = %v", direct)
	}

	chats, err := f.store.ContactChats(context.Background(), "5511999990000@s.whatsapp.net", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 {
		t.Fatalf("ContactChats() returned %d chats, want 2", len(chats))
	}
	if chats[0].JID != "g1@g.us" {
		t.Errorf("first chat = %s, want g1@g.us", chats[0].JID)
	}
}

// countingQueryer counts round trips to one database.
type countingQueryer struct {
	*sqlx.DB
	n int
}

func (c *countingQueryer) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c.n++
	return c.DB.QueryContext(ctx, query, args...)
}

func (c *countingQueryer) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	c.n++
	return c.DB.QueryxContext(ctx, query, args...)
}

func (c *countingQueryer) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	c.n++
	return c.DB.QueryRowxContext(ctx, query, args...)
}

func TestSearchContactsBoundedQueries(t *testing.T) {
	count := func(n int) int {
		f := testStore(t)
		for i := 0; i < n; i++ {
			jid := fmt.Sprintf("55%011d@s.whatsapp.net", i)
			f.addContact(t, jid, fmt.Sprintf("Ana %d", i), "")
			if err := f.store.SetNickname(context.Background(), jid, fmt.Sprintf("nick %d", i)); err != nil {
				t.Fatal(err)
			}
		}
		contacts := &countingQueryer{DB: f.db.Contacts}
		messages := &countingQueryer{DB: f.db.Messages}
		s := New(contacts, messages)

		got, err := s.SearchContacts(context.Background(), "ana")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != n {
			t.Fatalf("SearchContacts() returned %d contacts, want %d", len(got), n)
		}
		for _, c := range got {
			if c.Nickname == "" {
				t.Fatalf("contact %s missing nickname", c.JID)
			}
		}
		return contacts.n + messages.n
	}

	one := count(1)
	fifty := count(50)
	if one != fifty {
		t.Errorf("queries for 1 match = %d, for 50 matches = %d; want equal", one, fifty)
	}
	if fifty > 3 {
		t.Errorf("queries = %d, want at most 3", fifty)
	}
}

func TestSearchContacts(t *testing.T) {
	f := testStore(t)
	f.addContact(t, "5511999990000@s.whatsapp.net", "Ana Souza", "ana")
	f.addContact(t, "5521888880000@s.whatsapp.net", "", "Bruno")
	f.addContact(t, "g1@g.us", "Group Ana", "")
	if err := f.store.SetNickname(context.Background(), "5521888880000@s.whatsapp.net", "Brother"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"name case-insensitive", "SOUZA", []string{"5511999990000@s.whatsapp.net"}},
		{"phone", "2188888", []string{"5521888880000@s.whatsapp.net"}},
		{"push name", "bru", []string{"5521888880000@s.whatsapp.net"}},
		{"nickname", "brother", []string{"5521888880000@s.whatsapp.net"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.store.SearchContacts(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			var jids []string
			for _, c := range got {
				jids = append(jids, c.JID)
			}
			if fmt.Sprint(jids) != fmt.Sprint(tt.want) {
				t.Errorf("jids = %v, want %v", jids, tt.want)
			}
		})
	}
}

func TestContactLookupsAndActivity(t *testing.T) {
	f := testStore(t)
	f.addContact(t, "5511999990000@s.whatsapp.net", "Ana Souza", "")
	f.addChat(t, "5511999990000@s.whatsapp.net", "Ana", nil)
	f.addMessages(t,
		msg{id: "1", chat: "5511999990000@s.whatsapp.net", sender: "5511999990000", content: "old", ts: fixedNow.Add(-20 * 24 * time.Hour)},
		msg{id: "2", chat: "5511999990000@s.whatsapp.net", sender: "5511999990000", content: "recent news", ts: fixedNow.Add(-time.Hour)},
	)

	c, err := f.store.GetContactByPhone(context.Background(), "+55 (11) 99999-0000")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Name != "Ana Souza" || c.PhoneNumber != "5511999990000" {
		t.Fatalf("GetContactByPhone() = %+v", c)
	}
	if err := f.store.ContactActivity(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	if *c.TotalMessageCount != 2 || *c.MessageCountToday != 1 || *c.MessageCountWeek != 1 || *c.MessageCountMonth != 2 {
		t.Errorf("activity = %d/%d/%d/%d", *c.TotalMessageCount, *c.MessageCountToday, *c.MessageCountWeek, *c.MessageCountMonth)
	}
	if c.LatestMessagePreview != "recent news" {
		t.Errorf("preview = %q", c.LatestMessagePreview)
	}

	all, err := f.store.ListContacts(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("ListContacts() = %d contacts, want 1", len(all))
	}

	unknown, err := f.store.GetContact(context.Background(), "nobody@s.whatsapp.net")
	if err != nil || unknown != nil {
		t.Errorf("GetContact(unknown) = %v, %v", unknown, err)
	}
}

func TestNicknameRoundTrip(t *testing.T) {
	f := testStore(t)
	ctx := context.Background()
	jid := "5511999990000@s.whatsapp.net"

	if err := f.store.SetNickname(ctx, jid, "Mom"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := f.store.Nickname(ctx, jid)
	if err != nil || !ok || got != "Mom" {
		t.Fatalf("Nickname() = %q, %v, %v; want Mom", got, ok, err)
	}

	if err := f.store.SetNickname(ctx, jid, "Mother"); err != nil {
		t.Fatal(err)
	}
	var rows int
	if err := f.db.Messages.Get(&rows, "SELECT COUNT(*) FROM contact_nicknames WHERE jid = ?", jid); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("rows after upsert = %d, want 1", rows)
	}
	got, _, _ = f.store.Nickname(ctx, jid)
	if got != "Mother" {
		t.Errorf("Nickname() after upsert = %q, want Mother", got)
	}

	list, err := f.store.ListNicknames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || !list[0].UpdatedAt.Equal(fixedNow) {
		t.Errorf("ListNicknames() = %+v", list)
	}

	removed, err := f.store.RemoveNickname(ctx, jid)
	if err != nil || !removed {
		t.Fatalf("RemoveNickname() = %v, %v", removed, err)
	}
	_, ok, err = f.store.Nickname(ctx, jid)
	if err != nil || ok {
		t.Errorf("Nickname() after remove ok = %v, err = %v", ok, err)
	}
	removed, err = f.store.RemoveNickname(ctx, jid)
	if err != nil || removed {
		t.Errorf("second RemoveNickname() = %v, %v; want false", removed, err)
	}
}

func TestSetNicknameRejectsBlank(t *testing.T) {
	f := testStore(t)
	if err := f.store.SetNickname(context.Background(), "x@s.whatsapp.net", "  "); !errors.Is(err, ErrEmptyNickname) {
		t.Errorf("SetNickname(blank) error = %v, want ErrEmptyNickname", err)
	}
}
