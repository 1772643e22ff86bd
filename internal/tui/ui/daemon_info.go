package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// DaemonData holds what the header shows about the daemon and the bridge.
type DaemonData struct {
	Socket      string
	Bridge      string
	BridgeSince time.Time
	LastError   string
	Uptime      time.Duration
	Tools       int
	Chats       int
}

// DaemonInfo displays daemon metadata in the header.
type DaemonInfo struct {
	*tview.TextView
	theme *Theme
}

// NewDaemonInfo creates a new daemon info panel.
func NewDaemonInfo(theme *Theme) *DaemonInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &DaemonInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the daemon info.
func (di *DaemonInfo) Update(data *DaemonData) {
	di.Clear()
	if data == nil {
		return
	}
	_, _ = fmt.Fprint(di, di.render(data))
}

func (di *DaemonInfo) render(data *DaemonData) string {
	fg := ColorName(di.theme.FgColor)
	ct := ColorName(di.theme.CounterColor)
	bridge := ColorName(di.theme.BridgeColor(data.Bridge))

	state := data.Bridge
	if state == "" {
		state = "UNKNOWN"
	}
	if !data.BridgeSince.IsZero() {
		state += " since " + data.BridgeSince.Local().Format("15:04:05")
	}

	text := fmt.Sprintf(
		"[%s::b]Socket:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Bridge:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Tools:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Chats:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Uptime:[-:-:-] [%s]%s[-]",
		fg, ct, tview.Escape(data.Socket),
		fg, bridge, state,
		fg, ct, data.Tools,
		fg, ct, data.Chats,
		fg, ct, formatDuration(data.Uptime),
	)
	if data.LastError != "" {
		text += fmt.Sprintf("\n[%s]%s[-]", ColorName(di.theme.FlashErrColor), tview.Escape(data.LastError))
	}
	return text
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
