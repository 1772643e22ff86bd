package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppmcp/internal/tui/client"
	"github.com/matheus3301/wppmcp/internal/tui/ui"
	"github.com/rivo/tview"
)

// ToolsView lists the registered tools with their parameters.
type ToolsView struct {
	*tview.Flex
	theme  *ui.Theme
	table  *tview.Table
	detail *tview.TextView
	tools  []client.Tool
}

// NewToolsView creates a table of tools with a detail pane for the selection.
func NewToolsView(theme *ui.Theme) *ToolsView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitle(" Tools ")
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	detail := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	detail.SetBorder(true)
	detail.SetBorderColor(theme.BorderColor)
	detail.SetBackgroundColor(theme.BgColor)
	detail.SetTextColor(theme.FgColor)
	detail.SetTitle(" Parameters ")
	detail.SetTitleColor(theme.TitleColor)

	tv := &ToolsView{
		Flex: tview.NewFlex().
			AddItem(table, 0, 1, true).
			AddItem(detail, 0, 1, false),
		theme:  theme,
		table:  table,
		detail: detail,
	}
	table.SetSelectionChangedFunc(func(row, _ int) {
		tv.showDetail(row - 1)
	})
	return tv
}

// Name implements Component.
func (tv *ToolsView) Name() string { return "Tools" }

// Hints implements Component.
func (tv *ToolsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "j/k", Description: "Select"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
	}
}

// Update renders the tool list.
func (tv *ToolsView) Update(tools []client.Tool) {
	tv.tools = tools
	tv.table.Clear()
	for col, h := range []string{" NAME", " DESCRIPTION"} {
		tv.table.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(tv.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}
	for i, t := range tools {
		tv.table.SetCell(i+1, 0, tview.NewTableCell(" "+t.Name).SetTextColor(tv.theme.FgColor))
		tv.table.SetCell(i+1, 1, tview.NewTableCell(" "+tview.Escape(t.Description)).SetExpansion(1).SetTextColor(tv.theme.FgColor))
	}
	tv.table.SetTitle(fmt.Sprintf(" Tools (%d) ", len(tools)))
	tv.table.Select(1, 0)
	tv.showDetail(0)
}

func (tv *ToolsView) showDetail(i int) {
	tv.detail.Clear()
	if i < 0 || i >= len(tv.tools) {
		return
	}
	_, _ = fmt.Fprint(tv.detail, describeTool(tv.tools[i], ui.ColorName(tv.theme.MenuKeyColor)))
}

func describeTool(t client.Tool, keyColor string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]%s[-:-:-]\n%s\n\n", t.Name, tview.Escape(t.Description))
	if len(t.Params) == 0 {
		b.WriteString("No parameters.\n")
		return b.String()
	}
	for _, p := range t.Params {
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-] %s", keyColor, p.Name, p.Type)
		if p.Required {
			b.WriteString(" (required)")
		}
		if p.Default != nil {
			fmt.Fprintf(&b, " default=%v", p.Default)
		}
		if len(p.Enum) > 0 {
			fmt.Fprintf(&b, " one of %s", strings.Join(p.Enum, "|"))
		}
		if p.Description != "" {
			fmt.Fprintf(&b, "\n  %s", tview.Escape(p.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}
