package ui

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"chats", "chat", "details"} {
		p.AddPage(name, NewMenu(DefaultTheme()), true, false)
	}
	var changes [][]string
	p.SetOnChange(func(stack []string) { changes = append(changes, stack) })

	p.Reset("chats")
	p.Push("chat")
	p.Push("details")
	if got := p.Stack(); !reflect.DeepEqual(got, []string{"chats", "chat", "details"}) {
		t.Fatalf("Stack() = %v", got)
	}
	if !p.Contains("chat") || p.Contains("help") {
		t.Error("Contains() mismatch")
	}

	if got := p.Pop(); got != "details" {
		t.Errorf("Pop() = %q, want details", got)
	}
	p.Replace("details")
	if got := p.Stack(); !reflect.DeepEqual(got, []string{"chats", "details"}) {
		t.Errorf("Stack() after Replace = %v", got)
	}
	if p.Current() != "details" || p.Depth() != 2 {
		t.Errorf("Current() = %q, Depth() = %d", p.Current(), p.Depth())
	}
	if len(changes) != 5 {
		t.Errorf("onChange fired %d times, want 5", len(changes))
	}

	p.Pop()
	p.Pop()
	if got := p.Pop(); got != "" {
		t.Errorf("Pop() on empty stack = %q", got)
	}
}

func TestFlashExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f := NewFlashModel()
	f.now = func() time.Time { return now }

	if f.GetMessage() != nil {
		t.Fatal("GetMessage() before any flash is not nil")
	}
	f.Err(errors.New("boom"))
	msg := f.GetMessage()
	if msg == nil || msg.Text != "boom" || msg.Level != FlashErr {
		t.Fatalf("GetMessage() = %+v", msg)
	}
	if got := <-f.Watch(); got.Text != "boom" {
		t.Errorf("Watch() = %+v", got)
	}

	now = now.Add(11 * time.Second)
	if f.GetMessage() != nil {
		t.Error("error flash still visible after 11s")
	}
}

func TestPromptHistory(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	p.Activate(PromptCommand)
	p.remember("chats")
	p.remember("search hi")
	p.remember("search hi")

	steps := []struct {
		delta int
		want  string
	}{
		{-1, "search hi"},
		{-1, "chats"},
		{-1, "chats"},
		{1, "search hi"},
		{1, ""},
		{1, ""},
	}
	for i, s := range steps {
		if got := p.step(s.delta); got != s.want {
			t.Errorf("step %d = %q, want %q", i, got, s.want)
		}
	}
	if len(p.history) != 2 {
		t.Errorf("history = %v, want duplicates collapsed", p.history)
	}
}

func TestMenuLayout(t *testing.T) {
	m := NewMenu(DefaultTheme())
	var hints []MenuHint
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		hints = append(hints, MenuHint{Key: k, Description: "Do " + k})
	}
	lines := strings.Split(m.layout(hints), "\n")
	if len(lines) != menuRows {
		t.Fatalf("lines = %d, want %d", len(lines), menuRows)
	}
	if !strings.Contains(lines[0], "<a>") || !strings.Contains(lines[0], "<f>") {
		t.Errorf("first row = %q, want a and f", lines[0])
	}
	if strings.Contains(lines[2], "<h>") || !strings.Contains(lines[2], "<c>") {
		t.Errorf("third row = %q", lines[2])
	}
	if m.layout(nil) != "" {
		t.Error("layout(nil) not empty")
	}
}

func TestDaemonInfoRender(t *testing.T) {
	di := NewDaemonInfo(DefaultTheme())
	out := di.render(&DaemonData{
		Socket:    "/tmp/wppd.sock",
		Bridge:    "UNREACHABLE",
		LastError: "dial tcp: refused",
		Uptime:    90 * time.Minute,
		Tools:     25,
		Chats:     3,
	})
	for _, want := range []string{"/tmp/wppd.sock", "UNREACHABLE", "25", "1h30m", "dial tcp: refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("render() missing %q in %q", want, out)
		}
	}

	if got := di.render(&DaemonData{}); !strings.Contains(got, "UNKNOWN") {
		t.Errorf("render(empty) = %q, want UNKNOWN bridge", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m"},
		{26*time.Hour + 3*time.Minute, "26h3m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

type page string

func (p page) Name() string      { return string(p) }
func (p page) Hints() []MenuHint { return nil }

func TestCrumbsRender(t *testing.T) {
	c := NewCrumbs(DefaultTheme())
	tests := []struct {
		trail    []string
		want     []string
		wantNot  []string
		wantText string
	}{
		{trail: nil, wantText: ""},
		{trail: []string{"Chats"}, want: []string{" Chats "}, wantNot: []string{"deep", "›"}},
		{trail: []string{"Chats", "Ana"}, want: []string{" Chats ", " › ", " Ana ", "2 deep"}},
		{
			trail:   []string{"Chats", "Ana", "Details", "Search", "Tools", "Help"},
			want:    []string{" Chats ", " … ", " Tools ", " Help ", "6 deep"},
			wantNot: []string{"Ana", "Details", "Search"},
		},
		{trail: []string{"[red]"}, want: []string{"[red[]"}},
	}
	for _, tt := range tests {
		got := c.render(tt.trail)
		if tt.want == nil && got != tt.wantText {
			t.Errorf("render(%v) = %q, want %q", tt.trail, got, tt.wantText)
		}
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("render(%v) = %q, missing %q", tt.trail, got, w)
			}
		}
		for _, w := range tt.wantNot {
			if strings.Contains(got, w) {
				t.Errorf("render(%v) = %q, should not contain %q", tt.trail, got, w)
			}
		}
	}

	c.Update([]Component{page("Chats"), page("Ana")})
	if got := c.GetText(true); !strings.Contains(got, "Chats") || !strings.Contains(got, "Ana") {
		t.Errorf("Update() text = %q", got)
	}
}

func TestBanner(t *testing.T) {
	th := DefaultTheme()
	if got := banner(th, "1.2.0"); strings.Count(got, "\n") != 2 || !strings.Contains(got, "1.2.0") || !strings.Contains(got, "mcp") {
		t.Errorf("banner() = %q", got)
	}
	if got := banner(th, ""); !strings.Contains(got, "dev") {
		t.Errorf("banner(\"\") = %q, want dev version", got)
	}
}

func TestColorName(t *testing.T) {
	tests := []struct {
		c    tcell.Color
		want string
	}{
		{tcell.ColorBlack, "#000000"},
		{tcell.ColorWhite, "#ffffff"},
		{tcell.ColorDefault, "-"},
	}
	for _, tt := range tests {
		if got := ColorName(tt.c); got != tt.want {
			t.Errorf("ColorName(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}
