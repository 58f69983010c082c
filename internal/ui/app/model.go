// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/config"
	"github.com/nvakumar/ssfrontend/internal/logging"
	"github.com/nvakumar/ssfrontend/internal/model"
	"github.com/nvakumar/ssfrontend/internal/session"
	"github.com/nvakumar/ssfrontend/internal/ui/components"
	"github.com/nvakumar/ssfrontend/internal/ui/styles"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// =============================================================================
// TABS AND SCREENS
// =============================================================================

type tab int

const (
	tabFeed tab = iota
	tabGroups
	tabMessages
	tabPeople
	tabLeaderboard
	tabCasting
	tabCount
)

var tabNames = []string{"Feed", "Groups", "Messages", "People", "Leaderboard", "Casting"}

func (t tab) String() string { return tabNames[t] }

// screen is what the body shows. Detail screens sit on top of the tabs.
type screen int

const (
	screenTabs screen = iota
	screenPost
	screenGroup
	screenChat
)

// =============================================================================
// MODEL
// =============================================================================

// Deps are the services the TUI drives.
type Deps struct {
	Config  *config.Config
	API     *api.Client
	Session *session.Manager
	Connect views.Connector
	Log     *zap.SugaredLogger
}

// Model is the root bubbletea model.
type Model struct {
	deps        Deps
	log         *zap.SugaredLogger
	ctx         context.Context
	cancel      context.CancelFunc
	done        bool
	events      bridge
	unsubscribe func()
	now         func() time.Time

	theme        *styles.Theme
	keys         KeyMap
	help         help.Model
	spinner      spinner.Model
	spinning     bool
	toasts       *components.ToastManager
	toastTicking bool
	md           *components.Markdown
	showTimes    bool
	width        int
	height       int

	session  model.Session
	loggedIn bool
	login    loginForm

	tab    tab
	screen screen

	feed       *views.Feed
	feedCursor components.Cursor
	cards      map[string]*views.PostCard
	post       postScreen

	groups      *views.ListView[model.Group]
	groupCursor components.Cursor
	group       groupScreen

	convs      *views.ListView[model.Conversation]
	convCursor components.Cursor
	chat       chatScreen

	search       *views.Search
	searchInput  textinput.Model
	searching    bool
	searchCursor components.Cursor

	board       *views.Leaderboard
	roleIndex   int
	boardCursor components.Cursor

	casting       *views.ListView[model.CastingCall]
	castingCursor components.Cursor
}

// New builds the TUI. The model owns a context derived from ctx that is
// cancelled when the program quits.
func New(ctx context.Context, deps Deps) Model {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	log := logging.OrNop(deps.Log).Named("tui")
	ctx, cancel := context.WithCancel(ctx)
	events := make(bridge, eventBuffer)

	theme := styles.NewTheme()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		deps:      deps,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		events:    events,
		now:       time.Now,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		toasts:    components.NewToastManager(),
		md:        components.NewMarkdown(deps.Config.UI.RenderMarkdown),
		showTimes: deps.Config.UI.ShowTimestamps,
		login:     newLoginForm(),

		feed:    views.NewFeed(deps.API, deps.Session, log),
		cards:   make(map[string]*views.PostCard),
		groups:  views.NewGroupList(deps.API, log),
		convs:   views.NewConversations(deps.API, deps.Session, log),
		search:  views.NewSearch(deps.API, log),
		board:   views.NewLeaderboard(deps.API, deps.Config.UI.DefaultRole, log),
		casting: views.NewCastingBoard(deps.API, log),
	}

	m.feed.OnChange(changed[views.ListState[model.Post]](events, viewFeed))
	m.groups.OnChange(changed[views.ListState[model.Group]](events, viewGroups))
	m.convs.OnChange(changed[views.ListState[model.Conversation]](events, viewConversations))
	m.search.OnChange(changed[views.ListState[model.User]](events, viewSearch))
	m.board.OnChange(changed[views.ListState[model.LeaderboardEntry]](events, viewLeaderboard))
	m.casting.OnChange(changed[views.ListState[model.CastingCall]](events, viewCasting))

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "search people by name"
	m.searchInput.Prompt = "/ "
	m.searchInput.CharLimit = 100

	m.roleIndex = roleIndexOf(m.board.Role())
	m.post.input = newCommentInput()
	m.chat.input = newChatInput()

	m.unsubscribe = deps.Session.Subscribe(func(s model.Session, active bool) {
		events.post(sessionChangedMsg{session: s, active: active})
	})
	if s, ok := deps.Session.Current(); ok {
		m.session, m.loggedIn = s, true
	} else {
		m.login.focusField(0)
	}
	return m
}

// roleIndexOf returns the position of role in the filter cycle, where 0 is
// model.AllRoles.
func roleIndexOf(role string) int {
	for i, r := range model.Roles {
		if r == role {
			return i + 1
		}
	}
	return 0
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts listening for view changes and mounts the first tab when a
// session was restored.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.events.listen(), textinput.Blink}
	if m.loggedIn {
		cmds = append(cmds, m.activate())
	}
	return tea.Batch(cmds...)
}

// Update routes a message and keeps the spinner and toast timers running
// while they have work.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if _, ok := msg.(bridged); ok {
		cmds = append(cmds, m.events.listen())
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.layout()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			cmd = m.quit()
			return m, cmd
		}
		cmd = m.handleKey(msg)
		if m.done {
			return m, cmd
		}

	case viewChangedMsg:
		m.handleViewChanged(msg.view)

	case sessionChangedMsg:
		cmd = m.handleSession(msg)

	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = api.Message(msg.err)
		} else {
			m.login.password.Reset()
		}

	case actionDoneMsg:
		m.handleActionDone(msg)

	case postDeletedMsg:
		m.handlePostDeleted(msg)

	case groupMountedMsg:
		m.handleGroupMounted(msg)

	case chatMountedMsg:
		m.handleChatMounted(msg)

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, cmd = m.spinner.Update(msg)
		} else {
			m.spinning = false
		}

	case components.ToastTickMsg:
		if m.toasts.Tick() {
			cmd = components.ToastTickCmd()
		} else {
			m.toastTicking = false
		}

	default:
		cmd = m.updateInputs(msg)
	}
	cmds = append(cmds, cmd, m.ensureTicking())
	m.syncViewports()
	return m, tea.Batch(cmds...)
}

// quit unmounts every view, closes the chat connection and ends the program.
func (m *Model) quit() tea.Cmd {
	m.teardown()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.cancel()
	m.done = true
	return tea.Quit
}

// ensureTicking starts the spinner or toast timer if needed. Each timer
// re-arms itself while it has work and stops on its own.
func (m *Model) ensureTicking() tea.Cmd {
	var cmds []tea.Cmd
	if !m.toastTicking && len(m.toasts.Toasts()) > 0 {
		m.toastTicking = true
		cmds = append(cmds, components.ToastTickCmd())
	}
	if !m.spinning && m.busy() {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// updateInputs forwards non-key messages such as cursor blinks to the
// focused text input.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case !m.loggedIn:
		cmd = m.login.update(msg)
	case m.screen == screenChat:
		m.chat.input, cmd = m.chat.input.Update(msg)
	case m.screen == screenPost && m.post.typing:
		m.post.input, cmd = m.post.input.Update(msg)
	case m.screen == screenTabs && m.searching:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !m.loggedIn {
		return m.handleLoginKey(msg)
	}

	// Screens with a focused text input take every key but Esc and Enter.
	switch {
	case m.screen == screenChat:
		return m.handleChatKey(msg)
	case m.screen == screenPost && m.post.typing:
		return m.handleCommentKey(msg)
	case m.screen == screenTabs && m.searching:
		return m.handleSearchKey(msg)
	case m.post.confirm || m.group.confirm:
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
		return nil
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] < '1'+byte(tabCount) {
		return m.switchTab(tab(s[0] - '1'))
	}

	switch m.screen {
	case screenPost:
		return m.handlePostKey(msg)
	case screenGroup:
		return m.handleGroupKey(msg)
	}
	return m.handleTabKey(msg)
}

// handleTabKey handles keys on the list screens.
func (m *Model) handleTabKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Refresh) {
		return m.refreshTab()
	}
	switch m.tab {
	case tabFeed:
		return m.handleFeedKey(msg)
	case tabGroups:
		return m.handleGroupsKey(msg)
	case tabMessages:
		return m.handleInboxKey(msg)
	case tabPeople:
		return m.handlePeopleKey(msg)
	case tabLeaderboard:
		return m.handleLeaderboardKey(msg)
	case tabCasting:
		m.moveCursor(msg, &m.castingCursor, len(m.casting.Items()))
	}
	return nil
}

// moveCursor applies the navigation keys to c. It reports whether msg was
// one of them.
func (m *Model) moveCursor(msg tea.KeyMsg, c *components.Cursor, n int) bool {
	page := max(1, m.bodyHeight()/2)
	switch {
	case key.Matches(msg, m.keys.Up):
		c.Move(-1, n)
	case key.Matches(msg, m.keys.Down):
		c.Move(1, n)
	case key.Matches(msg, m.keys.PageUp):
		c.Move(-page, n)
	case key.Matches(msg, m.keys.PageDown):
		c.Move(page, n)
	default:
		return false
	}
	return true
}

func (m *Model) handleViewChanged(v viewID) {
	switch v {
	case viewFeed:
		m.feedCursor.Clamp(len(m.feed.Items()))
	case viewGroups:
		m.groupCursor.Clamp(len(m.groups.Items()))
	case viewConversations:
		m.convCursor.Clamp(len(m.convs.Items()))
	case viewSearch:
		m.searchCursor.Clamp(len(m.search.Items()))
	case viewLeaderboard:
		m.boardCursor.Clamp(len(m.board.Items()))
	case viewCasting:
		m.castingCursor.Clamp(len(m.casting.Items()))
	case viewGroup:
		m.groupChanged()
	case viewChat:
		m.chat.dirty = true
	case viewPost:
		m.post.dirty = true
	}
}

func (m *Model) handleSession(msg sessionChangedMsg) tea.Cmd {
	switch {
	case msg.active && m.loggedIn && msg.session.UserID == m.session.UserID:
		m.session = msg.session
		return nil
	case msg.active:
		if m.loggedIn {
			m.teardown()
		}
		m.session, m.loggedIn = msg.session, true
		m.login = newLoginForm()
		m.toasts.AddSuccess("Signed in as " + msg.session.DisplayName)
		m.log.Infow("signed in", "user", msg.session.UserID)
		return m.activate()
	case m.loggedIn:
		m.teardown()
		m.session, m.loggedIn = model.Session{}, false
		m.login.focusField(0)
		m.toasts.AddStatus("Signed out")
		m.log.Infow("signed out")
	}
	return nil
}

func (m *Model) handleActionDone(msg actionDoneMsg) {
	if msg.err == nil {
		switch msg.action {
		case actionComment:
			m.post.input.Reset()
			m.post.typing = false
			m.post.input.Blur()
		case actionSend:
			m.chat.input.Reset()
			m.chat.sending = false
		}
		if msg.done != "" {
			m.toasts.AddSuccess(msg.done)
		}
		return
	}
	if msg.action == actionSend {
		m.chat.sending = false
	}
	if errors.Is(msg.err, context.Canceled) || errors.Is(msg.err, views.ErrNotMounted) {
		return
	}
	m.log.Warnw("action failed", "action", msg.action, "error", msg.err)
	switch {
	case errors.Is(msg.err, views.ErrInFlight):
		m.toasts.AddStatus("Still working on the last request")
	case errors.Is(msg.err, views.ErrNotLoggedIn), errors.Is(msg.err, session.ErrNoSession):
		m.toasts.AddWarning("Please sign in again")
	default:
		m.toasts.AddError(api.Message(msg.err))
	}
}

// do runs fn in the background and reports the result as an actionDoneMsg.
func (m *Model) do(action, done string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, done: done, err: fn(ctx)}
	}
}

// =============================================================================
// MOUNTING
// =============================================================================

// mountOnce opens l and fetches its items unless it is already mounted.
func mountOnce[T any](m *Model, action string, l *views.ListView[T]) tea.Cmd {
	if l.Mounted() {
		return nil
	}
	l.Open(m.ctx)
	return m.do(action, "", l.Refresh)
}

// activate mounts the current tab's view.
func (m *Model) activate() tea.Cmd {
	if !m.loggedIn {
		return nil
	}
	switch m.tab {
	case tabFeed:
		return mountOnce(m, "load feed", m.feed.ListView)
	case tabGroups:
		return mountOnce(m, "load groups", m.groups)
	case tabMessages:
		return mountOnce(m, "load conversations", m.convs)
	case tabPeople:
		if !m.search.Mounted() {
			return m.do("search", "", m.search.Mount)
		}
	case tabLeaderboard:
		return mountOnce(m, "load leaderboard", m.board.ListView)
	case tabCasting:
		return mountOnce(m, "load casting calls", m.casting)
	}
	return nil
}

// refreshTab refetches the current tab.
func (m *Model) refreshTab() tea.Cmd {
	switch m.tab {
	case tabFeed:
		return m.do("refresh feed", "", m.feed.Refresh)
	case tabGroups:
		return m.do("refresh groups", "", m.groups.Refresh)
	case tabMessages:
		return m.do("refresh conversations", "", m.convs.Refresh)
	case tabPeople:
		if m.search.Query() == "" {
			return nil
		}
		return m.do("search", "", m.search.Refresh)
	case tabLeaderboard:
		return m.do("refresh leaderboard", "", m.board.Refresh)
	case tabCasting:
		return m.do("refresh casting calls", "", m.casting.Refresh)
	}
	return nil
}

// switchTab closes any detail screen and shows t.
func (m *Model) switchTab(t tab) tea.Cmd {
	m.closeDetail()
	m.tab = t
	m.searching = false
	m.searchInput.Blur()
	return m.activate()
}

// closeDetail leaves the post, group or chat screen.
func (m *Model) closeDetail() {
	m.closeChat()
	m.closeGroup()
	m.closePost()
	m.screen = screenTabs
}

// teardown unmounts every view. Used on logout and quit.
func (m *Model) teardown() {
	m.closeDetail()
	m.feed.Unmount()
	m.groups.Unmount()
	m.convs.Unmount()
	m.search.Unmount()
	m.board.Unmount()
	m.casting.Unmount()
	m.feed.Clear()
	m.groups.Clear()
	m.convs.Clear()
	m.search.Clear()
	m.board.Clear()
	m.casting.Clear()
	m.searchInput.Reset()
	m.searching = false
	clear(m.cards)
}

func (m *Model) logout() tea.Cmd {
	mgr := m.deps.Session
	return m.do("logout", "", func(ctx context.Context) error {
		return mgr.Logout(ctx)
	})
}

// busy reports whether something visible is loading.
func (m *Model) busy() bool {
	if !m.loggedIn {
		return m.login.busy
	}
	switch m.screen {
	case screenPost:
		return m.post.card != nil && m.post.card.Busy()
	case screenGroup:
		return m.group.detail != nil && (!m.group.detail.State().Loaded || m.group.detail.Posts.State().Loading)
	case screenChat:
		return m.chat.mounting || m.chat.sending
	}
	switch m.tab {
	case tabFeed:
		return m.feed.State().Loading
	case tabGroups:
		return m.groups.State().Loading
	case tabMessages:
		return m.convs.State().Loading
	case tabPeople:
		return m.search.State().Loading
	case tabLeaderboard:
		return m.board.State().Loading
	case tabCasting:
		return m.casting.State().Loading
	}
	return false
}

// =============================================================================
// LAYOUT
// =============================================================================

// bodyHeight is the number of lines between the tab row and the status bar.
func (m *Model) bodyHeight() int {
	h := m.height - 2 - lipgloss.Height(m.help.View(m.keys))
	return max(3, h)
}

// layout resizes the viewports and inputs after a resize or help toggle.
func (m *Model) layout() {
	w := max(20, m.width)
	m.post.viewport.Width = w
	m.post.viewport.Height = max(1, m.bodyHeight()-inputHeight)
	m.post.input.Width = w - 6
	m.chat.viewport.Width = w
	m.chat.viewport.Height = max(1, m.bodyHeight()-inputHeight-1)
	m.chat.input.Width = w - 6
	m.searchInput.Width = w - 6
	m.post.dirty = true
	m.chat.dirty = true
}

// syncViewports re-renders viewport content that changed.
func (m *Model) syncViewports() {
	if m.screen == screenPost && m.post.dirty {
		m.post.dirty = false
		m.renderPost()
	}
	if m.screen == screenChat && m.chat.dirty {
		m.chat.dirty = false
		m.renderChat()
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.done {
		return ""
	}
	if !m.loggedIn {
		return m.viewLogin()
	}

	header := m.viewHeader()
	status := m.viewStatus()
	helpView := m.theme.Help.Render(m.help.View(m.keys))
	height := m.bodyHeight()

	body := m.viewBody(height)
	if toasts := components.RenderToastStack(m.toasts.Toasts(), m.width); toasts != "" {
		room := height - lipgloss.Height(toasts)
		body = lipgloss.NewStyle().MaxHeight(max(0, room)).Render(body)
		body = lipgloss.JoinVertical(lipgloss.Left, body, toasts)
	}
	body = lipgloss.NewStyle().Width(m.width).Height(height).MaxHeight(height).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, helpView)
}

func (m Model) viewHeader() string {
	brand := m.theme.HeaderBrand.Render("ssfrontend")
	tabs := components.RenderTabs(m.theme, tabNames, int(m.tab))
	return m.theme.Header.Width(m.width).MaxWidth(m.width).Render(brand + " " + tabs)
}

func (m Model) viewBody(height int) string {
	switch m.screen {
	case screenPost:
		return m.viewPost()
	case screenGroup:
		return m.viewGroup(height)
	case screenChat:
		return m.viewChat()
	}
	switch m.tab {
	case tabFeed:
		return m.viewFeed(height)
	case tabGroups:
		return m.viewGroups(height)
	case tabMessages:
		return m.viewInbox(height)
	case tabPeople:
		return m.viewPeople(height)
	case tabLeaderboard:
		return m.viewLeaderboard(height)
	case tabCasting:
		return m.viewCasting(height)
	}
	return ""
}

func (m Model) viewStatus() string {
	bar := components.StatusBar{
		User:   m.session.DisplayName,
		Screen: m.tab.String(),
		Hint:   "? help  q quit",
	}
	switch m.screen {
	case screenPost:
		bar.Screen = "Post"
	case screenGroup:
		bar.Screen = "Group"
		if m.group.detail != nil {
			if g := m.group.detail.State().Group; g.Name != "" {
				bar.Screen = "Group · " + g.Name
			}
		}
	case screenChat:
		bar.Screen = "Chat"
		bar.Connection = m.chatConnection()
	}
	if m.busy() {
		bar.Activity = m.spinner.View() + " loading"
	}
	return bar.Render(m.theme, m.width)
}

// viewListState renders the placeholder for a list without rows: a
// spinner, an error or the empty text. ok is false when rows should be drawn.
func (m Model) viewListState(loading, loaded bool, err error, n int, empty string) (string, bool) {
	switch {
	case n > 0:
		return "", false
	case err != nil:
		return m.theme.Error.Render("Could not load: "+api.Message(err)) + "\n" + m.theme.Muted.Render("Press r to retry."), true
	case loading || !loaded:
		return m.spinner.View() + " Loading...", true
	default:
		return m.theme.Muted.Render(empty), true
	}
}

// listError renders a stale-data warning above rows that failed to refresh.
func (m Model) listError(err error) string {
	if err == nil {
		return ""
	}
	return m.theme.Warning.Render("Refresh failed: "+api.Message(err)) + "\n"
}
