package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppmcp/internal/tui/keys"
	"github.com/matheus3301/wppmcp/internal/tui/model"
	"github.com/matheus3301/wppmcp/internal/tui/ui"
	"github.com/matheus3301/wppmcp/internal/tui/views"
	"github.com/rivo/tview"
)

const (
	pageChats     = "chats"
	pageChat      = "chat"
	pageDetails   = "details"
	pageSearch    = "search"
	pageContacts  = "contacts"
	pageNicknames = "nicknames"
	pageTools     = "tools"
	pageHelp      = "help"
)

// sidePages are leaves of the navigation; they never stack on each other.
var sidePages = map[string]bool{
	pageDetails:   true,
	pageContacts:  true,
	pageNicknames: true,
	pageTools:     true,
	pageHelp:      true,
}

const (
	refreshInterval = 5 * time.Second
	requestTimeout  = 10 * time.Second
	headerHeight    = 5
	promptHeight    = 3
)

// App is the main TUI application shell.
type App struct {
	app    *tview.Application
	theme  *ui.Theme
	vm     *model.ViewModel
	keys   *keys.Registry
	flash  *ui.FlashModel
	socket string

	main     *tview.Flex
	pages    *ui.Pages
	info     *ui.DaemonInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	flashBar *ui.FlashBar
	prompt   *ui.Prompt

	chats     *views.ConversationList
	thread    *views.MessageThread
	details   *views.ConversationInfo
	search    *views.SearchView
	contacts  *views.TextPane
	nicknames *views.TextPane
	tools     *views.ToolsView
	help      *views.HelpView

	components map[string]ui.Component

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application on top of a daemon connection.
func NewApp(d model.Daemon, socket, version string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		vm:        model.NewViewModel(d),
		keys:      keys.NewRegistry(),
		flash:     ui.NewFlashModel(),
		socket:    socket,
		pages:     ui.NewPages(),
		info:      ui.NewDaemonInfo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		flashBar:  ui.NewFlashBar(theme),
		prompt:    ui.NewPrompt(theme),
		chats:     views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		details:   views.NewConversationInfo(theme),
		search:    views.NewSearchView(theme),
		contacts:  views.NewTextPane(theme, "Contacts"),
		nicknames: views.NewTextPane(theme, "Nicknames"),
		tools:     views.NewToolsView(theme),
		help:      views.NewHelpView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.setupLayout(version)
	a.setupBindings()
	a.setupCallbacks()
	return a
}

func (a *App) setupLayout(version string) {
	a.components = map[string]ui.Component{
		pageChats:     a.chats,
		pageChat:      a.thread,
		pageDetails:   a.details,
		pageSearch:    a.search,
		pageContacts:  a.contacts,
		pageNicknames: a.nicknames,
		pageTools:     a.tools,
		pageHelp:      a.help,
	}
	for name, c := range a.components {
		a.pages.AddPage(name, c.(tview.Primitive), true, false)
	}

	header := tview.NewFlex().
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 3, false).
		AddItem(ui.NewLogo(a.theme, version), 16, 0, false)

	a.main = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.pages.SetOnChange(func(stack []string) {
		trail := make([]ui.Component, len(stack))
		for i, p := range stack {
			trail[i] = a.components[p]
		}
		a.crumbs.Update(trail)
		if len(stack) > 0 {
			a.menu.Update(a.components[stack[len(stack)-1]].Hints())
		}
	})
	a.pages.Reset(pageChats)

	a.app.SetRoot(a.main, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) setupBindings() {
	a.keys.AddGlobal(
		keys.Rune('q', func() {
			if a.pages.Depth() > 1 {
				a.back()
				return
			}
			a.Stop()
		}),
		keys.Rune('?', func() { a.show(pageHelp) }),
		keys.Rune(':', func() { a.activatePrompt(ui.PromptCommand) }),
		keys.Rune('/', func() {
			a.pages.Reset(pageChats)
			a.activatePrompt(ui.PromptFilter)
		}),
	)

	a.keys.AddView(pageChats,
		keys.Key(tcell.KeyEnter, func() {
			if jid := a.chats.SelectedChat(); jid != "" {
				a.openChat(jid)
			}
		}),
		keys.Rune('d', func() {
			if jid := a.chats.SelectedChat(); jid != "" {
				a.showDetails(jid)
			}
		}),
		keys.Rune('r', a.reloadChats),
		keys.Rune('0', func() { a.chats.SetFilter("") }),
	)
	for n := 1; n <= 9; n++ {
		a.keys.AddView(pageChats, keys.Rune(rune('0'+n), func() {
			if jid := a.chats.ChatByIndex(n); jid != "" {
				a.openChat(jid)
			}
		}))
	}

	a.keys.AddView(pageChat,
		keys.Rune('i', func() { a.app.SetFocus(a.thread.Composer()) }),
		keys.Rune('d', func() { a.showDetails(a.thread.ChatJID()) }),
		keys.Rune('r', func() { a.loadThread(a.thread.ChatJID()) }),
	)

	a.keys.AddView(pageSearch,
		keys.Key(tcell.KeyEnter, func() {
			if jid, _ := a.search.SelectedResult(); jid != "" {
				a.openChat(jid)
			}
		}),
		keys.Key(tcell.KeyTab, func() { a.app.SetFocus(a.search.Input()) }),
	)

	scroll := func(tv *views.TextPane) []*keys.Action {
		return []*keys.Action{
			keys.Rune('j', func() {
				row, col := tv.GetScrollOffset()
				tv.ScrollTo(row+1, col)
			}),
			keys.Rune('k', func() {
				row, col := tv.GetScrollOffset()
				tv.ScrollTo(max(row-1, 0), col)
			}),
		}
	}
	a.keys.AddView(pageContacts, scroll(a.contacts)...)
	a.keys.AddView(pageNicknames, scroll(a.nicknames)...)
}

func (a *App) setupCallbacks() {
	a.thread.SetOnSend(func(text string) {
		jid := a.thread.ChatJID()
		if jid == "" {
			return
		}
		a.async("send", func(ctx context.Context) error {
			return a.vm.SendText(ctx, jid, text)
		}, func() {
			a.flash.Info("Message sent")
			a.loadThread(jid)
		})
	})

	a.search.SetOnQuery(a.runSearch)

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptFilter:
			a.chats.SetFilter(text)
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}

	// Text inputs get every key; Esc and Tab leave them.
	if focused, ok := a.app.GetFocus().(*tview.InputField); ok {
		if focused == a.prompt.InputField {
			return ev
		}
		switch {
		case ev.Key() == tcell.KeyEscape && focused == a.thread.Composer():
			a.app.SetFocus(a.thread.Messages())
			return nil
		case ev.Key() == tcell.KeyEscape:
			a.back()
			return nil
		case ev.Key() == tcell.KeyTab && focused == a.search.Input():
			a.app.SetFocus(a.search.Results())
			return nil
		}
		return ev
	}

	if ev.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}
	if a.keys.HandleEvent(a.pages.Current(), ev) {
		return nil
	}
	return ev
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "q", "quit":
		a.Stop()
	case "h", "help":
		a.show(pageHelp)
	case "chats":
		a.pages.Reset(pageChats)
		a.focusCurrent()
		a.reloadChats()
	case "chat":
		chat, ok := a.vm.FindChat(cmd.Args)
		if cmd.Args == "" || !ok {
			a.flash.Warn(fmt.Sprintf("No chat matching %q", cmd.Args))
			return
		}
		a.openChat(chat.JID)
	case "search", "s":
		a.show(pageSearch)
		if cmd.Args != "" {
			a.search.SetQuery(cmd.Args)
			a.runSearch(cmd.Args)
		}
	case "contacts":
		a.showText(pageContacts, a.contacts, a.vm.Contacts)
	case "nicknames":
		a.showText(pageNicknames, a.nicknames, a.vm.Nicknames)
	case "nick":
		jid, name, err := cmd.Nickname()
		if err != nil {
			a.flash.Warn(err.Error())
			return
		}
		a.async("set nickname", func(ctx context.Context) error {
			return a.vm.SetNickname(ctx, jid, name)
		}, func() { a.flash.Info(fmt.Sprintf("Nickname for %s set to %s", jid, name)) })
	case "unnick":
		if cmd.Args == "" {
			a.flash.Warn("usage: :unnick <jid>")
			return
		}
		a.async("remove nickname", func(ctx context.Context) error {
			return a.vm.RemoveNickname(ctx, cmd.Args)
		}, func() { a.flash.Info("Nickname removed for " + cmd.Args) })
	case "tools":
		a.tools.Update(a.vm.Tools())
		a.show(pageTools)
	default:
		a.flash.Warn(fmt.Sprintf("Unknown command %q, try :help", cmd.Name))
	}
}

// show brings page to the top of the stack. A page already on the stack is
// popped back to, and one side page replaces another instead of stacking.
func (a *App) show(page string) {
	switch {
	case a.pages.Current() == page:
	case a.pages.Contains(page):
		for a.pages.Current() != page {
			a.pages.Pop()
		}
	case sidePages[a.pages.Current()] && sidePages[page]:
		a.pages.Replace(page)
	default:
		a.pages.Push(page)
	}
	a.focusCurrent()
}

func (a *App) back() {
	if a.pages.Depth() <= 1 {
		return
	}
	if a.pages.Pop() == pageChat && !a.pages.Contains(pageChat) {
		a.vm.CloseChat()
	}
	a.focusCurrent()
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case pageChat:
		a.app.SetFocus(a.thread.Messages())
	case pageSearch:
		a.app.SetFocus(a.search.Input())
	default:
		if p, ok := a.components[a.pages.Current()].(tview.Primitive); ok {
			a.app.SetFocus(p)
		}
	}
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.main.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.main.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

func (a *App) openChat(jid string) {
	a.thread.SetChat(jid, a.vm.ChatName(jid))
	a.show(pageChat)
	a.loadThread(jid)
}

func (a *App) loadThread(jid string) {
	if jid == "" {
		return
	}
	a.async("load messages", func(ctx context.Context) error {
		return a.vm.LoadMessages(ctx, jid)
	}, func() {
		if a.thread.ChatJID() == jid {
			a.thread.Update(a.vm.Messages())
		}
	})
}

func (a *App) showDetails(jid string) {
	if jid == "" {
		return
	}
	chat, ok := a.vm.FindChat(jid)
	if !ok {
		chat = model.Chat{JID: jid}
	}
	var stats map[string]any
	a.async("chat statistics", func(ctx context.Context) (err error) {
		stats, err = a.vm.ChatStatistics(ctx, jid)
		return err
	}, func() {
		a.details.Update(chat, stats)
		a.show(pageDetails)
	})
}

func (a *App) runSearch(query string) {
	var results []model.Message
	a.async("search", func(ctx context.Context) (err error) {
		results, err = a.vm.SearchMessages(ctx, query)
		return err
	}, func() {
		a.search.Update(results)
		if len(results) > 0 {
			a.app.SetFocus(a.search.Results())
		} else {
			a.flash.Info(fmt.Sprintf("No messages match %q", query))
		}
	})
}

func (a *App) showText(page string, pane *views.TextPane, load func(context.Context) (string, error)) {
	var text string
	a.async("load "+page, func(ctx context.Context) (err error) {
		text, err = load(ctx)
		return err
	}, func() {
		pane.SetContent(text)
		a.show(page)
	})
}

func (a *App) reloadChats() {
	a.async("load chats", a.vm.LoadChats, func() {
		a.chats.Update(a.vm.Chats())
		a.renderInfo()
	})
}

// async runs load off the UI goroutine and applies then on it. Failures land
// in the flash bar.
func (a *App) async(what string, load func(context.Context) error, then func()) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
		defer cancel()
		err := load(ctx)
		if a.ctx.Err() != nil {
			return
		}
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.flash.Err(fmt.Errorf("%s: %w", what, err))
				return
			}
			if then != nil {
				then()
			}
		})
	}()
}

func (a *App) renderInfo() {
	data := &ui.DaemonData{
		Socket: a.socket,
		Tools:  len(a.vm.Tools()),
		Chats:  len(a.vm.Chats()),
	}
	if st := a.vm.Status(); st != nil {
		data.Bridge = st.Bridge
		data.LastError = st.LastError
		data.Uptime = time.Duration(st.UptimeMS) * time.Millisecond
		if since, err := time.Parse(time.RFC3339, st.BridgeSince); err == nil {
			data.BridgeSince = since
		}
		if data.Tools == 0 {
			data.Tools = st.Tools
		}
	}
	a.info.Update(data)
}

// Run loads the initial state and blocks until the UI exits.
func (a *App) Run() error {
	go a.bootstrap()
	go a.watchFlash()
	go a.watchRefresh()
	go func() {
		if err := a.vm.Watch(a.ctx); err != nil && a.ctx.Err() == nil {
			a.flash.Warn("Event stream closed: " + err.Error())
		}
	}()
	defer a.cancel()
	return a.app.Run()
}

func (a *App) bootstrap() {
	ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
	defer cancel()
	errs := []error{
		a.vm.LoadStatus(ctx),
		a.vm.LoadTools(ctx),
		a.vm.LoadChats(ctx),
	}
	a.app.QueueUpdateDraw(func() {
		for _, err := range errs {
			if err != nil {
				a.flash.Err(err)
				break
			}
		}
		a.chats.Update(a.vm.Chats())
		a.renderInfo()
		a.focusCurrent()
	})

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tickCtx, tickCancel := context.WithTimeout(a.ctx, requestTimeout)
			statusErr := a.vm.LoadStatus(tickCtx)
			chatsErr := a.vm.LoadChats(tickCtx)
			tickCancel()
			a.app.QueueUpdateDraw(func() {
				if chatsErr == nil {
					a.chats.Update(a.vm.Chats())
				}
				if statusErr == nil {
					a.renderInfo()
				}
				a.flashBar.Update(a.flash.GetMessage())
			})
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) watchFlash() {
	for {
		select {
		case msg := <-a.flash.Watch():
			a.app.QueueUpdateDraw(func() { a.flashBar.Update(&msg) })
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) watchRefresh() {
	for {
		select {
		case r := <-a.vm.RefreshCh():
			a.app.QueueUpdateDraw(func() {
				switch r {
				case model.RefreshStatus:
					a.renderInfo()
				case model.RefreshChats:
					a.chats.Update(a.vm.Chats())
				case model.RefreshMessages:
					if a.thread.ChatJID() == a.vm.ActiveChat() {
						a.thread.Update(a.vm.Messages())
					}
				}
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
