package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// maxCrumbs bounds the visible trail; deeper stacks keep the root and the
// newest pages and fold the rest into an ellipsis.
const maxCrumbs = 4

// Crumbs is the one-line trail of open pages under the main view.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &Crumbs{TextView: tv, theme: theme}
}

// Update redraws the trail for the page stack, bottom first.
func (c *Crumbs) Update(trail []Component) {
	c.SetText(c.render(names(trail)))
}

func (c *Crumbs) render(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	depth := len(labels)
	if depth > maxCrumbs {
		labels = append([]string{labels[0], "…"}, labels[depth-maxCrumbs+2:]...)
	}

	var b strings.Builder
	last := len(labels) - 1
	for i, label := range labels {
		if i > 0 {
			b.WriteString(" › ")
		}
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == last {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		_, _ = fmt.Fprintf(&b, "[%s:%s:%s] %s [-:-:-]", ColorName(fg), ColorName(bg), attr, tview.Escape(label))
	}
	if depth > 1 {
		_, _ = fmt.Fprintf(&b, " [%s]%d deep[-]", ColorName(c.theme.CounterColor), depth)
	}
	return b.String()
}
