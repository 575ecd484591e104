// Package tui is the interactive dashboard: a login form while no session
// is stored, and one table per resource once the operator is signed in.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/guard"
	"github.com/felixgeelhaar/skilladmin/internal/screen"
)

// defaultNoticeTTL is how long a notice stays on screen.
const defaultNoticeTTL = 4 * time.Second

const (
	defaultWidth  = 100
	tableHeight   = 12
	minColumnSize = 8
)

type transitionMsg struct {
	t guard.Transition
}

type loginResultMsg struct {
	err error
}

type logoutMsg struct {
	err error
}

// lookupMsg carries form reference data, or the notice to show when it
// could not be loaded.
type lookupMsg struct {
	lk     *lookup
	err    error
	failed string
	open   func(*lookup) *editor
}

type dismissMsg struct {
	gen int
}

// App is the root bubbletea model. It shows whatever route the guard
// reports and re-checks it after every message.
type App struct {
	ctx    context.Context
	guard  *guard.Guard
	client *api.Client

	tabs   []tab
	active int
	table  table.Model
	spin   spinner.Model
	help   help.Model
	styles Styles

	route      guard.Route
	login      *loginForm
	loginErr   string
	loggingIn  bool
	loggingOut bool

	editor    *editor
	noticeGen int
	noticeTTL time.Duration

	width    int
	quitting bool
}

// New creates the dashboard model. The guard must already be started.
func New(ctx context.Context, g *guard.Guard, c *api.Client) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	tbl := table.New(
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	tbl.SetStyles(tableStyles())

	a := &App{
		ctx:    ctx,
		guard:  g,
		client: c,
		tabs:   newTabs(c),
		table:  tbl,
		spin:   sp,
		help:   help.New(),
		styles: DefaultStyles(),
		width:  defaultWidth,

		noticeTTL: defaultNoticeTTL,
	}
	a.route = g.Route()
	if a.route == guard.RouteLogin {
		a.login = newLoginForm("")
	}
	a.syncTable()
	return a
}

// Run starts the dashboard in the alternate screen and blocks until the
// operator quits or ctx is cancelled.
func Run(ctx context.Context, g *guard.Guard, c *api.Client, opts ...tea.ProgramOption) error {
	app := New(ctx, g, c)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(app, opts...)
	g.OnTransition(func(t guard.Transition) {
		p.Send(transitionMsg{t: t})
	})
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// Init starts the spinner and either the login form or the first fetch.
func (a *App) Init() tea.Cmd {
	if a.route == guard.RouteLogin {
		return tea.Batch(a.spin.Tick, a.login.form.Init())
	}
	return tea.Batch(a.spin.Tick, a.current().Fetch(a.ctx))
}

func (a *App) current() tab {
	return a.tabs[a.active]
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if a.quitting {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.syncRoute())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width
		a.syncTable()
		return a.forward(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return cmd

	case transitionMsg:
		// syncRoute does the work; the message only wakes the loop.
		return nil

	case loginResultMsg:
		a.loggingIn = false
		if msg.err != nil {
			a.loginErr = loginMessage(msg.err)
			a.login = newLoginForm(a.login.email)
			return a.login.form.Init()
		}
		a.loginErr = ""
		return nil

	case logoutMsg:
		if msg.err != nil {
			a.loggingOut = false
			a.current().SetNotice(screen.NoticeError, api.Message(msg.err, "Failed to log out."))
			return a.scheduleDismiss()
		}
		return nil

	case fetchedMsg:
		if msg.apply() {
			a.syncTable()
		}
		return a.scheduleDismiss()

	case mutatedMsg:
		a.syncTable()
		return a.scheduleDismiss()

	case lookupMsg:
		if msg.err != nil {
			a.current().SetNotice(screen.NoticeError, api.Message(msg.err, msg.failed))
			return a.scheduleDismiss()
		}
		return a.openEditor(msg.open(msg.lk))

	case dismissMsg:
		if msg.gen == a.noticeGen {
			for _, t := range a.tabs {
				t.DismissNotice()
			}
		}
		return nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.quitting = true
			return tea.Quit
		}
	}

	return a.forward(msg)
}

// forward hands msg to whatever has focus: the login form, an open
// editor, or the table.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	switch {
	case a.route == guard.RouteLogin:
		return a.updateLogin(msg)
	case a.editor != nil:
		return a.updateEditor(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		return a.handleKey(k)
	}
	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return cmd
}

func (a *App) updateLogin(msg tea.Msg) tea.Cmd {
	if a.loggingIn {
		return nil
	}
	form, cmd := a.login.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.login.form = f
	}
	switch a.login.form.State {
	case huh.StateCompleted:
		a.loggingIn = true
		email, password := a.login.email, a.login.password
		return func() tea.Msg {
			_, err := a.guard.Login(a.ctx, email, password)
			return loginResultMsg{err: err}
		}
	case huh.StateAborted:
		a.quitting = true
		return tea.Quit
	}
	return cmd
}

func (a *App) updateEditor(msg tea.Msg) tea.Cmd {
	form, cmd := a.editor.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.editor.form = f
	}
	switch a.editor.form.State {
	case huh.StateCompleted:
		submit := a.editor.submit
		a.editor = nil
		return func() tea.Msg {
			return mutatedMsg{err: submit(a.ctx)}
		}
	case huh.StateAborted:
		a.editor = nil
		return nil
	}
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	t := a.current()
	switch {
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, keys.NextTab):
		return a.switchTab(1)

	case key.Matches(msg, keys.PrevTab):
		return a.switchTab(-1)

	case key.Matches(msg, keys.New):
		return a.withLookup(t, t.NewEditor)

	case key.Matches(msg, keys.Edit):
		row := a.table.Cursor()
		return a.withLookup(t, func(lk *lookup) *editor { return t.EditEditor(row, lk) })

	case key.Matches(msg, keys.Delete):
		return a.openEditor(t.DeleteEditor(a.table.Cursor()))

	case key.Matches(msg, keys.PrevPage):
		if t.PrevPage() {
			return t.Fetch(a.ctx)
		}
		return nil

	case key.Matches(msg, keys.NextPage):
		if t.NextPage() {
			return t.Fetch(a.ctx)
		}
		return nil

	case key.Matches(msg, keys.Size):
		t.CycleSize()
		return t.Fetch(a.ctx)

	case key.Matches(msg, keys.Refresh):
		return t.Fetch(a.ctx)

	case key.Matches(msg, keys.Logout):
		a.loggingOut = true
		return func() tea.Msg {
			return logoutMsg{err: a.guard.Logout(a.ctx)}
		}
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return cmd
}

func (a *App) switchTab(delta int) tea.Cmd {
	n := len(a.tabs)
	a.active = (a.active + delta + n) % n
	a.table.SetCursor(0)
	a.syncTable()
	return a.current().Fetch(a.ctx)
}

// withLookup opens the editor built by open, first loading whatever
// reference data t's forms pick from.
func (a *App) withLookup(t tab, open func(*lookup) *editor) tea.Cmd {
	if !t.NeedsCatalog() && !t.NeedsUsers() {
		return a.openEditor(open(&lookup{}))
	}
	return func() tea.Msg {
		lk := &lookup{}
		if t.NeedsCatalog() {
			cat, err := a.client.Catalog().SkillsAndSubSkills(a.ctx)
			if err != nil {
				return lookupMsg{err: err, failed: "Failed to load skills."}
			}
			lk.cat = cat
		}
		if t.NeedsUsers() {
			page, err := a.client.Users().List(a.ctx, 0, api.MaxPageSize)
			if err != nil {
				return lookupMsg{err: err, failed: "Failed to load users."}
			}
			lk.users = page.Items
		}
		return lookupMsg{lk: lk, open: open}
	}
}

// openEditor shows e over the table. A nil editor means there was nothing
// to act on; any notice it left is scheduled for dismissal.
func (a *App) openEditor(e *editor) tea.Cmd {
	if e == nil {
		return a.scheduleDismiss()
	}
	a.editor = e
	return e.form.Init()
}

func (a *App) scheduleDismiss() tea.Cmd {
	if a.current().Notice() == nil {
		return nil
	}
	a.noticeGen++
	gen := a.noticeGen
	return tea.Tick(a.noticeTTL, func(time.Time) tea.Msg {
		return dismissMsg{gen: gen}
	})
}

// syncRoute switches between the login form and the tables when the guard
// changed state since the last message.
func (a *App) syncRoute() tea.Cmd {
	r := a.guard.Route()
	if r == a.route {
		return nil
	}
	a.route = r
	a.editor = nil

	if r == guard.RouteLogin {
		if !a.loggingOut {
			a.loginErr = "Session expired. Please log in again."
		}
		a.loggingOut = false
		a.login = newLoginForm("")
		return a.login.form.Init()
	}

	a.loginErr = ""
	a.login = nil
	a.active = 0
	a.table.SetCursor(0)
	a.syncTable()
	return a.current().Fetch(a.ctx)
}

func (a *App) syncTable() {
	t := a.current()
	rows := t.Rows()
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}
	// Columns and rows must agree in length; clear rows before swapping columns.
	// Clearing drops the cursor to -1, so restore it clamped to the new rows.
	cursor := a.table.Cursor()
	a.table.SetRows(nil)
	a.table.SetColumns(columns(t.Headers(), a.width))
	a.table.SetRows(trows)
	a.table.SetCursor(max(cursor, 0))
}

func columns(headers []string, width int) []table.Column {
	if len(headers) == 0 {
		return nil
	}
	w := (width - 2*len(headers)) / len(headers)
	if w < minColumnSize {
		w = minColumnSize
	}
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: w}
	}
	return cols
}

func loginMessage(err error) string {
	if errors.Is(err, guard.ErrMalformedLogin) {
		return "Login failed: Invalid response from server."
	}
	return api.Message(err, "Invalid email or password")
}

// View renders the dashboard (required by Bubble Tea)
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if a.route == guard.RouteLogin {
		return a.viewLogin()
	}
	return a.viewDashboard()
}

func (a *App) viewLogin() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("SkillsWorth Admin"))
	b.WriteString("\n")
	b.WriteString(a.styles.Subtitle.Render("Sign in with an admin account"))
	b.WriteString("\n\n")
	if a.loginErr != "" {
		b.WriteString(a.styles.Error.Render("✗ " + a.loginErr))
		b.WriteString("\n\n")
	}
	if a.loggingIn {
		b.WriteString(a.spin.View() + " Signing in...")
		return a.styles.Border.Render(b.String())
	}
	b.WriteString(a.login.form.View())
	return a.styles.Border.Render(b.String())
}

func (a *App) viewDashboard() string {
	var b strings.Builder

	header := a.styles.Title.Render("SkillsWorth Admin")
	if admin, ok := a.guard.Admin(); ok {
		name := admin.FullName
		if name == "" {
			name = admin.Email
		}
		header += "  " + a.styles.Muted.Render(name)
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(a.viewTabs())
	b.WriteString("\n\n")

	t := a.current()
	if n := t.Notice(); n != nil {
		b.WriteString(a.styles.Notice(n))
		b.WriteString("\n\n")
	}

	if a.editor != nil {
		b.WriteString(a.styles.Status.Render(a.editor.title))
		b.WriteString("\n\n")
		b.WriteString(a.editor.form.View())
		return b.String()
	}

	b.WriteString(a.table.View())
	b.WriteString("\n")
	b.WriteString(a.viewStatus(t.Status()))
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render(a.help.View(keys)))
	return b.String()
}

func (a *App) viewTabs() string {
	parts := make([]string, len(a.tabs))
	for i, t := range a.tabs {
		if i == a.active {
			parts[i] = a.styles.ActiveTab.Render(t.Title())
		} else {
			parts[i] = a.styles.Tab.Render(t.Title())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) viewStatus(st status) string {
	pages := max(st.Pages, 1)
	line := fmt.Sprintf("Page %d of %d · %d total · %d per page", st.Page+1, pages, st.Total, st.Size)
	if st.Loading {
		line = a.spin.View() + " " + line
	}
	return a.styles.Muted.Render(line)
}
